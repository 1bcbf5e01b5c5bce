package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"pairjudge_backend/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	captchaKeyPrefix = "captcha:"
	trustKeyPrefix   = "trust_device:"

	captchaTokenTTL = 2 * time.Minute
	trustTokenTTL   = 15 * 24 * time.Hour

	minTrajectoryPoints = 10
	minDragDurationMs   = 200
	maxDragDurationMs   = 10000
	minDragDistancePx   = 50
)

var ErrTrajectoryRejected = errors.New("trajectory verification failed")

// CaptchaService 提交前的人机校验。滑动轨迹通过启发式检查后签发
// 一次性 Token；提交成功且勾选"记住设备"时另发 15 天免验证 Token。
type CaptchaService struct {
	Redis *redis.Client
	Cfg   *config.Config
}

func NewCaptchaService(rdb *redis.Client, cfg *config.Config) *CaptchaService {
	return &CaptchaService{Redis: rdb, Cfg: cfg}
}

type TrajectoryPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	T int `json:"t"`
}

// VerifyTrajectory 校验滑动轨迹，通过后签发一次性 Token
func (s *CaptchaService) VerifyTrajectory(trajectory []TrajectoryPoint, duration int) (string, error) {
	if len(trajectory) < minTrajectoryPoints {
		return "", ErrTrajectoryRejected
	}
	if !s.analyzeTrajectory(trajectory, duration) {
		return "", ErrTrajectoryRejected
	}

	token := uuid.New().String()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.Redis.Set(ctx, captchaKeyPrefix+token, "verified", captchaTokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateToken 消费一次性 Token。GETDEL 保证并发提交下同一 Token 只能用一次。
func (s *CaptchaService) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	val, err := s.Redis.GetDel(ctx, captchaKeyPrefix+token).Result()
	return err == nil && val == "verified"
}

// GenerateTrustDeviceToken 签发免验证设备 Token，Redis 中只存哈希后的值
func (s *CaptchaService) GenerateTrustDeviceToken(userID uint) (string, error) {
	raw := fmt.Sprintf("trust:%d:%d:%s", userID, time.Now().UnixNano(), uuid.New().String())
	token := hashToken(raw)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.Redis.Set(ctx, trustKeyPrefix+token, userID, trustTokenTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyTrustDeviceToken 校验免验证 Token，返回其绑定的用户
func (s *CaptchaService) VerifyTrustDeviceToken(token string) (uint, bool) {
	if token == "" {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	userID, err := s.Redis.Get(ctx, trustKeyPrefix+token).Uint64()
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// analyzeTrajectory 轨迹启发式：时长在人类拖动区间内，且产生了足够位移。
// 脚本直接 setValue 不产生轨迹，录制回放通常时长异常。
func (s *CaptchaService) analyzeTrajectory(trajectory []TrajectoryPoint, duration int) bool {
	if duration < minDragDurationMs || duration > maxDragDurationMs {
		return false
	}

	var distance float64
	for i := 1; i < len(trajectory); i++ {
		dx := float64(trajectory[i].X - trajectory[i-1].X)
		dy := float64(trajectory[i].Y - trajectory[i-1].Y)
		distance += math.Hypot(dx, dy)
	}
	return distance >= minDragDistancePx
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
