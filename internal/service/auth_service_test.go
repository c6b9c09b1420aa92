package service

import (
	"context"
	"testing"
	"time"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc      *AuthServiceImpl
	userRepo *mocks.MockUserRepository
	hashSvc  *mocks.MockHashService
	tokenSvc *mocks.MockTokenService
	ctrl     *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo: mocks.NewMockUserRepository(ctrl),
		hashSvc:  mocks.NewMockHashService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.hashSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.userRepo.EXPECT().GetByWallet(ctx, testBorrower).Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cretpass").Return("$argon2id$hash", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "alice", u.Username)
			assert.Equal(t, testBorrower, u.PrimaryWallet)
			assert.Equal(t, domain.UserStatusActive, u.Status)
			return nil
		})

	user, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "alice",
		Password: "s3cretpass",
		// Lowercase input must land canonicalized.
		Wallet: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	})
	require.NoError(t, err)
	assert.Equal(t, testBorrower, user.PrimaryWallet)
}

func TestAuthService_Register_UsernameExists(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "alice", Password: "s3cretpass", Wallet: testBorrower,
	})
	assert.Equal(t, "AUTH_002", appCode(t, err))
}

func TestAuthService_Register_WalletTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.userRepo.EXPECT().GetByWallet(ctx, testBorrower).Return(&domain.User{}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "alice", Password: "s3cretpass", Wallet: testBorrower,
	})
	assert.Equal(t, "AUTH_003", appCode(t, err))
}

func TestAuthService_Register_InvalidWallet(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), ports.RegisterRequest{
		Username: "alice", Password: "s3cretpass", Wallet: "nope",
	})
	assert.Equal(t, "VAL_002", appCode(t, err))
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	user := &domain.User{
		ID:            userID,
		Username:      "alice",
		PasswordHash:  "$argon2id$hash",
		PrimaryWallet: testBorrower,
		Status:        domain.UserStatusActive,
	}
	expiry := time.Now().Add(time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("s3cretpass", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(userID, testBorrower).Return("token123", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "token123", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{Username: "alice", PasswordHash: "$argon2id$hash", Status: domain.UserStatusActive}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, "alice", "wrong")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "ghost", "whatever")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_SuspendedUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{Username: "alice", PasswordHash: "$argon2id$hash", Status: domain.UserStatusSuspended}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("s3cretpass", "$argon2id$hash").Return(true, nil)

	_, _, err := d.svc.Login(ctx, "alice", "s3cretpass")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}
