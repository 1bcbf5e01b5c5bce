package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func straightTrajectory(points int, step int) []TrajectoryPoint {
	traj := make([]TrajectoryPoint, points)
	for i := range traj {
		traj[i] = TrajectoryPoint{X: i * step, Y: 0, T: i * 30}
	}
	return traj
}

func TestAnalyzeTrajectory(t *testing.T) {
	s := &CaptchaService{}

	tests := []struct {
		name       string
		trajectory []TrajectoryPoint
		duration   int
		want       bool
	}{
		{"normal drag", straightTrajectory(20, 10), 600, true},
		{"too fast", straightTrajectory(20, 10), 100, false},
		{"too slow", straightTrajectory(20, 10), 15000, false},
		{"barely moved", straightTrajectory(20, 1), 600, false},
		{"exact minimum duration", straightTrajectory(20, 10), 200, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.analyzeTrajectory(tt.trajectory, tt.duration))
		})
	}
}

func TestVerifyTrajectoryRejectsShortInput(t *testing.T) {
	s := &CaptchaService{}

	// 不足 10 个采样点直接拒绝，不会生成 token
	_, err := s.VerifyTrajectory(straightTrajectory(5, 20), 600)
	assert.Error(t, err)

	_, err = s.VerifyTrajectory(straightTrajectory(20, 1), 600)
	assert.Error(t, err)
}
