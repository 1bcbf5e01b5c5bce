package service

import (
	"testing"

	"pairjudge_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBuildWinnerShare(t *testing.T) {
	t.Run("no responses", func(t *testing.T) {
		share := buildWinnerShare(model.WinnerCounts{QuestionID: 7})
		assert.Equal(t, uint(7), share.QuestionID)
		assert.Zero(t, share.Total)
		assert.Zero(t, share.ShareA)
		assert.Empty(t, share.LeadingWinner)
	})

	t.Run("clear A preference", func(t *testing.T) {
		share := buildWinnerShare(model.WinnerCounts{QuestionID: 1, WinsA: 45, WinsB: 5, Ties: 10})
		assert.Equal(t, int64(60), share.Total)
		assert.InDelta(t, 0.75, share.ShareA, 1e-9)
		assert.InDelta(t, float64(5)/60, share.ShareB, 1e-9)
		assert.Equal(t, "a", share.LeadingWinner)
		assert.True(t, share.Confident)
		assert.Greater(t, share.Confidence, 0.95)
		assert.Greater(t, share.CIUpperA, share.CILowerA)
	})

	t.Run("B preference mirrors A", func(t *testing.T) {
		share := buildWinnerShare(model.WinnerCounts{QuestionID: 2, WinsA: 5, WinsB: 45})
		assert.Equal(t, "b", share.LeadingWinner)
		assert.Greater(t, share.Confidence, 0.95)
	})

	t.Run("even split is a tie", func(t *testing.T) {
		share := buildWinnerShare(model.WinnerCounts{QuestionID: 3, WinsA: 20, WinsB: 20, Ties: 4})
		assert.Equal(t, "tie", share.LeadingWinner)
		assert.InDelta(t, 0.5, share.Confidence, 1e-9)
		assert.False(t, share.Confident)
	})

	t.Run("ties do not dilute significance", func(t *testing.T) {
		// 平局只影响份额，不参与显著性比较
		withTies := buildWinnerShare(model.WinnerCounts{WinsA: 30, WinsB: 10, Ties: 100})
		withoutTies := buildWinnerShare(model.WinnerCounts{WinsA: 30, WinsB: 10})
		assert.InDelta(t, withoutTies.Confidence, withTies.Confidence, 1e-9)
		assert.Less(t, withTies.ShareA, withoutTies.ShareA)
	})

	t.Run("small samples stay unconfident", func(t *testing.T) {
		share := buildWinnerShare(model.WinnerCounts{WinsA: 2, WinsB: 1})
		assert.Equal(t, "a", share.LeadingWinner)
		assert.False(t, share.Confident)
	})
}
