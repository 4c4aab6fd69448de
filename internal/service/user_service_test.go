package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	errorvalues "github.com/collabspace/pulse/internal/error_values"
	"github.com/collabspace/pulse/internal/repository/mocks"
	"github.com/collabspace/pulse/internal/service"
	"github.com/collabspace/pulse/pkg/entity"
)

var (
	testUsername = "test_name"
	testPassword = "test_password"
)

func storedUser(t *testing.T) *entity.User {
	t.Helper()
	hash, err := service.Hash(testPassword)
	require.NoError(t, err)
	return &entity.User{
		ID:           uuid.New(),
		Name:         testUsername,
		PasswordHash: hash,
	}
}

func TestRegisterUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUsersRepositoryI(ctrl)
	us := service.NewUserService(repo)
	user := storedUser(t)

	testCases := []struct {
		Desc          string
		Req           *service.RegisterRequest
		MockPrepFunc  func()
		ExpectedError error
	}{
		{
			Desc: "registered",
			Req: &service.RegisterRequest{
				Name:     testUsername,
				Password: testPassword,
			},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().FindByName(gomock.Any(), testUsername).Return(user, nil)
			},
			ExpectedError: nil,
		},
		{
			Desc: "existed user",
			Req: &service.RegisterRequest{
				Name:     testUsername,
				Password: testPassword,
			},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errorvalues.ErrUserExists)
			},
			ExpectedError: errorvalues.ErrUserExists,
		},
		{
			Desc: "short password rejected before repo",
			Req: &service.RegisterRequest{
				Name:     testUsername,
				Password: "short",
			},
			MockPrepFunc:  func() {},
			ExpectedError: errors.New("validation error"),
		},
		{
			Desc: "name with forbidden characters",
			Req: &service.RegisterRequest{
				Name:     "bad name!",
				Password: testPassword,
			},
			MockPrepFunc:  func() {},
			ExpectedError: errors.New("validation error"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			got, err := us.Register(context.Background(), tc.Req)
			if tc.ExpectedError == nil {
				require.NoError(t, err)
				assert.Equal(t, user, got)
			} else {
				require.Error(t, err)
				assert.Nil(t, got)
				if errors.Is(tc.ExpectedError, errorvalues.ErrUserExists) {
					assert.ErrorIs(t, err, errorvalues.ErrUserExists)
				}
			}
		})
	}
}

func TestLoginUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUsersRepositoryI(ctrl)
	us := service.NewUserService(repo)
	user := storedUser(t)

	t.Run("logged in", func(t *testing.T) {
		repo.EXPECT().FindByName(gomock.Any(), testUsername).Return(user, nil)
		got, err := us.Login(context.Background(), testUsername, testPassword)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})
	t.Run("unexist user", func(t *testing.T) {
		repo.EXPECT().FindByName(gomock.Any(), testUsername).Return(nil, errorvalues.ErrUserNotFound)
		_, err := us.Login(context.Background(), testUsername, testPassword)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
	t.Run("wrong password", func(t *testing.T) {
		repo.EXPECT().FindByName(gomock.Any(), testUsername).Return(user, nil)
		_, err := us.Login(context.Background(), testUsername, "not_the_password")
		assert.ErrorIs(t, err, errorvalues.ErrWrongCredentials)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUsersRepositoryI(ctrl)
	us := service.NewUserService(repo)
	user := storedUser(t)

	t.Run("deleted", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		repo.EXPECT().Delete(gomock.Any(), user.ID).Return(nil)
		err := us.DeleteAccount(context.Background(), user.ID, testPassword)
		assert.NoError(t, err)
	})
	t.Run("wrong password", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), user.ID).Return(user, nil)
		err := us.DeleteAccount(context.Background(), user.ID, "not_the_password")
		assert.ErrorIs(t, err, errorvalues.ErrWrongCredentials)
	})
	t.Run("unexist user", func(t *testing.T) {
		repo.EXPECT().FindByID(gomock.Any(), user.ID).Return(nil, errorvalues.ErrUserNotFound)
		err := us.DeleteAccount(context.Background(), user.ID, testPassword)
		assert.ErrorIs(t, err, errorvalues.ErrUserNotFound)
	})
}

func TestPasswordHash(t *testing.T) {
	hash, err := service.Hash(testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(testPassword)))
}
