package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"doma/config"
	"doma/internal/domain"
	"doma/internal/repository"
	"doma/pkg/auth"
)

const (
	tokenKindAccess    = "access"
	tokenKindTwoFactor = "2fa"

	twoFactorTokenTTL = 5 * time.Minute
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
	Kind   string          `json:"kind,omitempty"`
}

type AuthServiceImpl struct {
	authRepo  repository.AuthRepository
	userRepo  repository.UserRepository
	jwtConfig config.JWTConfig
	logger    *zap.Logger
}

func NewAuthService(authRepo repository.AuthRepository, userRepo repository.UserRepository, jwtConfig config.JWTConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		authRepo:  authRepo,
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, dto domain.RegisterRequest) (int64, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, dto.Email)
	if err == nil && existingUser != nil {
		return 0, errors.New("пользователь с таким email уже существует")
	}

	existingUser, err = s.userRepo.GetByPhone(ctx, dto.Phone)
	if err == nil && existingUser != nil {
		return 0, errors.New("пользователь с таким телефоном уже существует")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("ошибка при хешировании пароля", zap.Error(err))
		return 0, errors.New("ошибка при регистрации пользователя")
	}

	createUserDTO := domain.CreateUserDTO{
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Email:     dto.Email,
		Phone:     dto.Phone,
		Password:  string(hashedPassword),
		Role:      dto.Role,
	}

	userID, err := s.userRepo.Create(ctx, createUserDTO)
	if err != nil {
		s.logger.Error("ошибка при создании пользователя", zap.Error(err))
		return 0, errors.New("ошибка при регистрации пользователя")
	}

	return userID, nil
}

// Login проверяет пароль и либо сразу выдает токены, либо, если у
// пользователя включена 2FA, возвращает промежуточный токен для
// подтверждения входа резервным кодом.
func (s *AuthServiceImpl) Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.LoginResult, error) {
	var user *domain.User
	var err error

	user, err = s.userRepo.GetByEmail(ctx, dto.Login)
	if err != nil {
		user, err = s.userRepo.GetByPhone(ctx, dto.Login)
		if err != nil {
			s.logger.Error("пользователь не найден", zap.String("login", dto.Login), zap.Error(err))
			return nil, errors.New("неверный логин или пароль")
		}
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password))
	if err != nil {
		s.logger.Error("неверный пароль", zap.Error(err))
		return nil, errors.New("неверный логин или пароль")
	}

	if !user.IsActive {
		return nil, errors.New("аккаунт деактивирован")
	}

	if user.TwoFactorEnabled {
		twoFactorToken, err := s.signToken(user.ID, user.Role, tokenKindTwoFactor, twoFactorTokenTTL)
		if err != nil {
			s.logger.Error("ошибка генерации токена 2FA", zap.Error(err))
			return nil, errors.New("ошибка при аутентификации")
		}

		return &domain.LoginResult{
			RequiresTwoFactor: true,
			TwoFactorToken:    twoFactorToken,
		}, nil
	}

	tokens, err := s.issueSession(ctx, user, userAgent, ip)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResult{Tokens: tokens}, nil
}

// VerifyTwoFactor завершает вход по резервному коду. Каждый код
// одноразовый: после успешной проверки он помечается использованным.
func (s *AuthServiceImpl) VerifyTwoFactor(ctx context.Context, dto domain.TwoFactorVerifyRequest, userAgent, ip string) (*domain.Tokens, error) {
	userID, _, kind, err := s.parseTokenClaims(dto.TwoFactorToken)
	if err != nil || kind != tokenKindTwoFactor {
		s.logger.Error("недействительный токен 2FA", zap.Error(err))
		return nil, errors.New("недействительный токен подтверждения")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("userId", userID), zap.Error(err))
		return nil, errors.New("недействительный токен подтверждения")
	}

	if !user.TwoFactorEnabled {
		return nil, errors.New("двухфакторная аутентификация не включена")
	}

	codes, err := s.authRepo.GetUnusedBackupCodes(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения резервных кодов", zap.Int64("userId", userID), zap.Error(err))
		return nil, errors.New("ошибка при аутентификации")
	}

	var matched *domain.TwoFactorBackupCode
	for i := range codes {
		ok, verifyErr := auth.VerifySecret(dto.Code, codes[i].CodeHash)
		if verifyErr != nil {
			s.logger.Warn("поврежденный хеш резервного кода", zap.Int64("codeId", codes[i].ID), zap.Error(verifyErr))
			continue
		}
		if ok {
			matched = &codes[i]
			break
		}
	}

	if matched == nil {
		s.logger.Warn("неверный резервный код", zap.Int64("userId", userID))
		return nil, errors.New("неверный резервный код")
	}

	if err := s.authRepo.MarkBackupCodeUsed(ctx, matched.ID); err != nil {
		s.logger.Error("ошибка отметки резервного кода", zap.Int64("codeId", matched.ID), zap.Error(err))
		return nil, errors.New("ошибка при аутентификации")
	}

	return s.issueSession(ctx, user, userAgent, ip)
}

func (s *AuthServiceImpl) RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error) {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Error("ошибка получения сессии", zap.Error(err))
		return nil, errors.New("недействительный refresh token")
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.authRepo.DeleteSession(ctx, session.ID)
		return nil, errors.New("refresh token истек")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("пользователь не найден", zap.Int64("userId", session.UserID), zap.Error(err))
		return nil, errors.New("пользователь не найден")
	}

	if !user.IsActive {
		return nil, errors.New("аккаунт деактивирован")
	}

	err = s.authRepo.DeleteSession(ctx, session.ID)
	if err != nil {
		s.logger.Warn("ошибка удаления старой сессии", zap.Error(err))
	}

	return s.issueSession(ctx, user, userAgent, ip)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.authRepo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("сессия не найдена при выходе", zap.Error(err))
		return nil
	}

	err = s.authRepo.DeleteSession(ctx, session.ID)
	if err != nil {
		s.logger.Error("ошибка удаления сессии", zap.Error(err))
		return errors.New("ошибка при выходе")
	}

	return nil
}

func (s *AuthServiceImpl) ParseToken(ctx context.Context, tokenString string) (int64, domain.UserRole, error) {
	userID, role, kind, err := s.parseTokenClaims(tokenString)
	if err != nil {
		return 0, "", err
	}

	// Промежуточный токен 2FA не дает доступа к API.
	if kind != tokenKindAccess {
		return 0, "", errors.New("недействительный токен")
	}

	return userID, role, nil
}

func (s *AuthServiceImpl) parseTokenClaims(tokenString string) (int64, domain.UserRole, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SigningKey), nil
	})

	if err != nil {
		return 0, "", "", fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return 0, "", "", errors.New("недействительный токен")
	}

	return claims.UserID, claims.Role, claims.Kind, nil
}

func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, userAgent, ip string) (*domain.Tokens, error) {
	tokens, err := s.generateTokens(user.ID, user.Role)
	if err != nil {
		s.logger.Error("ошибка генерации токенов", zap.Error(err))
		return nil, errors.New("ошибка при аутентификации")
	}

	session := domain.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		UserAgent:    userAgent,
		IP:           ip,
		ExpiresAt:    time.Now().Add(s.jwtConfig.RefreshTokenTTL),
		CreatedAt:    time.Now(),
	}

	err = s.authRepo.CreateSession(ctx, session)
	if err != nil {
		s.logger.Error("ошибка сохранения сессии", zap.Error(err))
		return nil, errors.New("ошибка при аутентификации")
	}

	return tokens, nil
}

func (s *AuthServiceImpl) generateTokens(userID int64, role domain.UserRole) (*domain.Tokens, error) {
	accessTokenString, err := s.signToken(userID, role, tokenKindAccess, s.jwtConfig.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи access token: %w", err)
	}

	refreshTokenString, err := s.signToken(userID, role, tokenKindAccess, s.jwtConfig.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи refresh token: %w", err)
	}

	return &domain.Tokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
	}, nil
}

func (s *AuthServiceImpl) signToken(userID int64, role domain.UserRole, kind string, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Role:   role,
		Kind:   kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.SigningKey))
}
