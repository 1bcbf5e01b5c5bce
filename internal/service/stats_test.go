package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWilsonInterval(t *testing.T) {
	t.Run("zero trials", func(t *testing.T) {
		lower, upper := wilsonInterval(0, 0, 0.95)
		assert.Zero(t, lower)
		assert.Zero(t, upper)
	})

	t.Run("known value 80 of 100", func(t *testing.T) {
		lower, upper := wilsonInterval(80, 100, 0.95)
		assert.InDelta(t, 0.711, lower, 0.005)
		assert.InDelta(t, 0.867, upper, 0.005)
	})

	t.Run("bounds stay in unit interval", func(t *testing.T) {
		lower, upper := wilsonInterval(10, 10, 0.99)
		assert.GreaterOrEqual(t, lower, 0.0)
		assert.Equal(t, 1.0, upper)
		assert.Less(t, lower, upper)

		// 全败时下界必须恰好为 0，不能带浮点残差
		lower, upper = wilsonInterval(0, 10, 0.99)
		assert.Equal(t, 0.0, lower)
		assert.Greater(t, upper, 0.0)
	})

	t.Run("interval narrows with more trials", func(t *testing.T) {
		l1, u1 := wilsonInterval(8, 10, 0.95)
		l2, u2 := wilsonInterval(800, 1000, 0.95)
		assert.Less(t, u2-l2, u1-l1)
	})

	t.Run("interval widens with higher confidence", func(t *testing.T) {
		l95, u95 := wilsonInterval(60, 100, 0.95)
		l99, u99 := wilsonInterval(60, 100, 0.99)
		assert.Greater(t, u99-l99, u95-l95)
		assert.Less(t, l99, l95)
	})
}

func TestTwoProportionTest(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, 0.5, twoProportionTest(0, 0, 0, 0))
	})

	t.Run("equal proportions", func(t *testing.T) {
		assert.InDelta(t, 0.5, twoProportionTest(25, 50, 25, 50), 1e-9)
	})

	t.Run("strong preference is near certain", func(t *testing.T) {
		c := twoProportionTest(45, 50, 5, 50)
		assert.Greater(t, c, 0.99)
	})

	t.Run("complementary", func(t *testing.T) {
		forward := twoProportionTest(30, 40, 10, 40)
		backward := twoProportionTest(10, 40, 30, 40)
		assert.InDelta(t, 1.0, forward+backward, 1e-6)
	})

	t.Run("degenerate pooled proportions", func(t *testing.T) {
		// 双方全胜或全败时标准误为 0
		assert.Equal(t, 0.5, twoProportionTest(10, 10, 10, 10))
		assert.Equal(t, 0.5, twoProportionTest(0, 10, 0, 10))
	})

	t.Run("one sided sweep", func(t *testing.T) {
		assert.Greater(t, twoProportionTest(10, 10, 0, 10), 0.999)
	})
}

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, normalCDF(0), 1e-9)
	assert.InDelta(t, 0.975, normalCDF(1.96), 0.001)
	assert.InDelta(t, 0.025, normalCDF(-1.96), 0.001)
	// 对称性
	assert.InDelta(t, 1.0, normalCDF(1.3)+normalCDF(-1.3), 1e-6)
	// 单调性
	assert.Greater(t, normalCDF(2.0), normalCDF(1.0))
}

func TestZScore(t *testing.T) {
	assert.Equal(t, 2.576, zScore(0.99))
	assert.Equal(t, 1.96, zScore(0.95))
	assert.Equal(t, 1.645, zScore(0.90))
	assert.Equal(t, 1.28, zScore(0.5))
}
