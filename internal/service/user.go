package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"doma/internal/domain"
	"doma/internal/repository"
	"doma/pkg/auth"
)

const backupCodeCount = 10

type UserServiceImpl struct {
	repo     repository.UserRepository
	authRepo repository.AuthRepository
	logger   *zap.Logger
}

func NewUserService(repo repository.UserRepository, authRepo repository.AuthRepository, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		repo:     repo,
		authRepo: authRepo,
		logger:   logger,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	existingUser, err := s.repo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return 0, errors.New("пользователь с таким email уже существует")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}
	dto.Password = string(hashedPassword)

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка при создании пользователя", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}

	return id, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("пользователь не найден")
	}
	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	if dto.Email != nil {
		existingUser, err := s.repo.GetByEmail(ctx, *dto.Email)
		if err == nil && existingUser != nil && existingUser.ID != id {
			return errors.New("пользователь с таким email уже существует")
		}
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления пользователя", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка обновления пользователя")
	}

	return nil
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("пользователь не найден")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.OldPassword))
	if err != nil {
		return errors.New("неверный текущий пароль")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return errors.New("ошибка смены пароля")
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hashedPassword)); err != nil {
		s.logger.Error("ошибка смены пароля", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка смены пароля")
	}

	// Смена пароля завершает все активные сессии.
	if err := s.authRepo.DeleteSessionsByUserID(ctx, id); err != nil {
		s.logger.Warn("ошибка удаления сессий после смены пароля", zap.Int64("id", id), zap.Error(err))
	}

	return nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка деактивации пользователя", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка деактивации пользователя")
	}

	if err := s.authRepo.DeleteSessionsByUserID(ctx, id); err != nil {
		s.logger.Warn("ошибка удаления сессий пользователя", zap.Int64("id", id), zap.Error(err))
	}

	return nil
}

func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("ошибка получения списка пользователей", zap.Error(err))
		return nil, errors.New("ошибка получения списка пользователей")
	}

	return users, nil
}

// EnableTwoFactor включает 2FA и возвращает резервные коды в открытом
// виде. Коды показываются один раз, в базе хранятся только их хеши.
func (s *UserServiceImpl) EnableTwoFactor(ctx context.Context, id int64) ([]string, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("пользователь не найден")
	}

	if user.TwoFactorEnabled {
		return nil, errors.New("двухфакторная аутентификация уже включена")
	}

	codes := make([]string, 0, backupCodeCount)
	hashes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		code, err := auth.GenerateRandomToken(6)
		if err != nil {
			s.logger.Error("ошибка генерации резервного кода", zap.Error(err))
			return nil, errors.New("ошибка включения двухфакторной аутентификации")
		}

		hash, err := auth.HashSecret(code)
		if err != nil {
			s.logger.Error("ошибка хеширования резервного кода", zap.Error(err))
			return nil, errors.New("ошибка включения двухфакторной аутентификации")
		}

		codes = append(codes, code)
		hashes = append(hashes, hash)
	}

	if err := s.authRepo.ReplaceBackupCodes(ctx, id, hashes); err != nil {
		s.logger.Error("ошибка сохранения резервных кодов", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка включения двухфакторной аутентификации")
	}

	if err := s.repo.SetTwoFactorEnabled(ctx, id, true); err != nil {
		s.logger.Error("ошибка включения 2FA", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка включения двухфакторной аутентификации")
	}

	return codes, nil
}

func (s *UserServiceImpl) DisableTwoFactor(ctx context.Context, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("id", id), zap.Error(err))
		return errors.New("пользователь не найден")
	}

	if !user.TwoFactorEnabled {
		return nil
	}

	if err := s.repo.SetTwoFactorEnabled(ctx, id, false); err != nil {
		s.logger.Error("ошибка отключения 2FA", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка отключения двухфакторной аутентификации")
	}

	if err := s.authRepo.DeleteBackupCodes(ctx, id); err != nil {
		s.logger.Warn("ошибка удаления резервных кодов", zap.Int64("id", id), zap.Error(err))
	}

	return nil
}
