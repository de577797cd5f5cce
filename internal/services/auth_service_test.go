package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/repository"
)

func TestAuthService_SignupCreatesPerson(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(repository.NewUserRepository(db))

	user, err := service.Signup(context.Background(), SignupInput{
		Username: "2021010001",
		Password: "supersecret",
		Name:     "Li Hua",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	var person models.Person
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&person).Error)
	assert.Equal(t, "Li Hua", person.Name)
	assert.Equal(t, models.PersonStudying, person.Status)
}

func TestAuthService_SignupDefaultsNameToUsername(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(repository.NewUserRepository(db))

	user, err := service.Signup(context.Background(), SignupInput{Username: "newcomer", Password: "supersecret"})
	require.NoError(t, err)

	var person models.Person
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&person).Error)
	assert.Equal(t, "newcomer", person.Name)
}

func TestAuthService_SignupValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupInput{Username: " ", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = service.Signup(ctx, SignupInput{Username: "short", Password: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = service.Signup(ctx, SignupInput{Username: "taken", Password: "supersecret"})
	require.NoError(t, err)
	_, err = service.Signup(ctx, SignupInput{Username: "taken", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Login(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupInput{Username: "existing", Password: "supersecret"})
	require.NoError(t, err)

	user, err := service.Login(ctx, LoginInput{Username: "existing", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "existing", user.Username)

	_, err = service.Login(ctx, LoginInput{Username: "existing", Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, LoginInput{Username: "missing", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
