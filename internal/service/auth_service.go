package service

import (
	"errors"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/util"
	"pairjudge_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, Cfg: cfg}
}

// Register 注册标注者。邮箱唯一，密码只存 bcrypt 哈希。
func (s *AuthService) Register(user *model.User) error {
	if _, err := s.UserRepo.FindByEmail(user.Email); err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	return s.UserRepo.Create(user)
}

// Login 校验凭据并签发 JWT。被禁用的账号和错误密码返回同样对外不可区分的 401。
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if user.Disabled {
		return "", ErrAccountDisabled
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("Failed to record last login", zap.Uint("userId", user.ID), zap.Error(err))
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// GetCurrentUser 按令牌里的用户 ID 取完整用户记录
func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
