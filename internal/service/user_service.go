package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/aspirehq/loan-engine/internal/config"
	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/internal/repository"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
)

// UserService handles registration and login for the user directory.
type UserService struct {
	UserRepo repository.UserRepository
	log      *logrus.Logger
	config   *config.Config
}

func NewUserService(userRepo repository.UserRepository, log *logrus.Logger, cfg *config.Config) *UserService {
	if log == nil {
		log = logrus.New()
	}
	return &UserService{
		UserRepo: userRepo,
		log:      log,
		config:   cfg,
	}
}

// Register creates a BORROWER user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	_, err := s.UserRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, customError.WrapUserAlreadyExists(email)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.UserRoleBorrower,
		CreatedAt:    time.Now(),
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")

	return user, nil
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", customError.WrapBadCredentials()
		}
		return "", customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", customError.WrapBadCredentials()
	}

	ttl := 24 * time.Hour
	secret := ""
	if s.config != nil {
		ttl = s.config.GetTokenTTL()
		secret = s.config.Auth.JWTSecret
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")

	return signed, nil
}
