package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stablecoin-ledger/internal/core/domain"
	"stablecoin-ledger/internal/core/ports/mocks"
	"stablecoin-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testOperators = []domain.Operator{
	{Username: "treasury", PasswordHash: "$argon2id$treasury"},
	{Username: "compliance", PasswordHash: "$argon2id$compliance"},
}

func setupAuthService(t *testing.T) (*AuthServiceImpl, *mocks.MockHashService, *mocks.MockTokenService) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	return NewAuthService(testOperators, hashSvc, tokenSvc), hashSvc, tokenSvc
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, hashSvc, tokenSvc := setupAuthService(t)
	expiry := time.Now().Add(time.Hour)

	hashSvc.EXPECT().Verify("s3cret", "$argon2id$compliance").Return(true, nil)
	tokenSvc.EXPECT().Generate("compliance").Return("jwt-token", expiry, nil)

	token, exp, err := svc.Login(context.Background(), "compliance", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_UnknownOperator(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, hashSvc, _ := setupAuthService(t)

	hashSvc.EXPECT().Verify("wrong", "$argon2id$treasury").Return(false, nil)

	_, _, err := svc.Login(context.Background(), "treasury", "wrong")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials))
}

func TestAuthService_Login_MalformedHash(t *testing.T) {
	svc, hashSvc, _ := setupAuthService(t)

	hashSvc.EXPECT().Verify("pw", "$argon2id$treasury").Return(false, errors.New("invalid hash format"))

	_, _, err := svc.Login(context.Background(), "treasury", "pw")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestAuthService_Login_TokenFailure(t *testing.T) {
	svc, hashSvc, tokenSvc := setupAuthService(t)

	hashSvc.EXPECT().Verify("pw", "$argon2id$treasury").Return(true, nil)
	tokenSvc.EXPECT().Generate("treasury").Return("", time.Time{}, errors.New("signing failed"))

	_, _, err := svc.Login(context.Background(), "treasury", "pw")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestAuthService_Login_RealHash(t *testing.T) {
	hashSvc := NewArgon2HashServiceWithParams(Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	hash, err := hashSvc.Hash("correct horse")
	require.NoError(t, err)

	svc := NewAuthService(
		[]domain.Operator{{Username: "ops", PasswordHash: hash}},
		hashSvc,
		NewJWTTokenService(testJWTSecret, time.Hour, "test-issuer"),
	)

	token, _, err := svc.Login(context.Background(), "ops", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), "ops", "battery staple")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidCredentials))
}
