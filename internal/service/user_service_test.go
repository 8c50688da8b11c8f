package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/aspirehq/loan-engine/internal/domain"
	"github.com/aspirehq/loan-engine/internal/service"
	customError "github.com/aspirehq/loan-engine/pkg/errors"
	"github.com/aspirehq/loan-engine/tests/mocks"
)

func TestRegister(t *testing.T) {
	t.Run("new users are stored as borrowers with a hashed password", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows)
		userRepo.On("Create", mock.Anything, mock.MatchedBy(func(user *domain.User) bool {
			return user.Email == "new@example.com" && user.Role == domain.UserRoleBorrower
		})).Return(nil)

		svc := service.NewUserService(userRepo, nil, nil)

		user, err := svc.Register(context.Background(), "new@example.com", "s3cret-pass")

		assert.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
		userRepo.AssertExpectations(t)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		existing := borrower()
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetByEmail", mock.Anything, existing.Email).Return(existing, nil)

		svc := service.NewUserService(userRepo, nil, nil)

		_, err := svc.Register(context.Background(), existing.Email, "whatever123")

		assert.True(t, errors.Is(err, customError.ErrUserAlreadyExists))
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := borrower()
	user.PasswordHash = string(hash)

	t.Run("valid credentials yield a token for the user", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		svc := service.NewUserService(userRepo, nil, nil)

		token, err := svc.Login(context.Background(), user.Email, "right-password")

		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims := &jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(""), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

		svc := service.NewUserService(userRepo, nil, nil)

		_, err := svc.Login(context.Background(), user.Email, "wrong-password")

		assert.True(t, errors.Is(err, customError.ErrBadCredentials))
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		userRepo := &mocks.MockUserRepository{}
		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)

		svc := service.NewUserService(userRepo, nil, nil)

		_, err := svc.Login(context.Background(), "ghost@example.com", "right-password")

		assert.True(t, errors.Is(err, customError.ErrBadCredentials))
	})
}
