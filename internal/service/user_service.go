package service

import (
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/util"

	"gorm.io/gorm"
)

// UserService 管理端的标注者账号管理
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) ListAnnotators(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.ListAnnotators(page, limit)
}

func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.UserRepo.SetDisabled(userID, disabled)
}
