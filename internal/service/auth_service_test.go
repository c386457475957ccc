package service

import (
	"context"
	"testing"

	"paypilot/internal/config"
	"paypilot/internal/dto"
	"paypilot/internal/model"
	"paypilot/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	users  map[uuid.UUID]*model.User
	byName map[string]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:  make(map[uuid.UUID]*model.User),
		byName: make(map[string]*model.User),
	}
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	r.byName[u.Username] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errStubNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.byName[username]
	if !ok {
		return nil, errStubNotFound
	}
	return u, nil
}

func authFixture(t *testing.T) (AuthService, *model.User, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	repo := newStubUserRepo()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	storeID := uuid.New()
	user := &model.User{
		Username:     "clerk",
		Name:         "Store Clerk",
		PasswordHash: string(hash),
		Role:         model.RoleEmployee,
		StoreID:      &storeID,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))

	return NewAuthService(repo, cfg), user, cfg
}

func TestLoginIssuesTokensWithStoreClaims(t *testing.T) {
	svc, user, cfg := authFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, string(model.RoleEmployee), resp.User.Role)
	require.NotNil(t, resp.User.StoreID)
	assert.Equal(t, user.StoreID.String(), *resp.User.StoreID)

	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.String(), claims["user_id"])
	assert.Equal(t, "employee", claims["role"])
	assert.Equal(t, user.StoreID.String(), claims["store_id"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk", Password: "wrong"})
	assert.Error(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.Error(t, err)
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	svc, _, _ := authFixture(t)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.Error(t, err)
}
