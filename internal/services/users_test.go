package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"khosta-backend-go/internal/models"
)

func newUserService(t *testing.T) (*UserService, *clock) {
	c := &clock{now: fixedNow}
	tokens := TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "khosta-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Now:        c.Now,
	}
	return &UserService{Store: newMemoryStore(t), Tokens: tokens, Now: c.Now, Logger: zap.NewNop()}, c
}

func TestUserCreateAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	user, err := svc.Create(ctx, UserInput{FullName: "Ana Admin", Email: " Ana@Example.com ", Password: "s3cret-pass", Role: "direct"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleDirector, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	_, err = svc.Create(ctx, UserInput{FullName: "Dup", Email: "ANA@example.com", Password: "another-pass", Role: "agent"})
	assert.Equal(t, 409, statusOf(t, err))

	result, err := svc.Login(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := svc.Tokens.ParseAccess(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleDirector, claims.Role)

	_, err = svc.Tokens.ParseAccess(result.RefreshToken)
	assert.Error(t, err)

	_, err = svc.Login(ctx, "ana@example.com", "wrong-pass")
	assert.Equal(t, 401, statusOf(t, err))
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.Equal(t, 401, statusOf(t, err))
}

func TestUserValidation(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Create(context.Background(), UserInput{Email: "not-an-email", Password: "short", Role: "warden"})
	violations := violationsOf(t, err)
	fields := []string{}
	for _, v := range violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"fullName", "email", "password", "role"}, fields)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)
	admin, err := svc.Create(ctx, UserInput{FullName: "Admin", Email: "admin@example.com", Password: "admin-pass", Role: "admin"})
	require.NoError(t, err)
	agent, err := svc.Create(ctx, UserInput{FullName: "Agent", Email: "agent@example.com", Password: "agent-pass", Role: "agent"})
	require.NoError(t, err)

	login, err := svc.Login(ctx, "agent@example.com", "agent-pass")
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, admin.ID, agent.ID, false)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "agent@example.com", "agent-pass")
	assert.Equal(t, 403, statusOf(t, err))
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.Equal(t, 403, statusOf(t, err))

	_, err = svc.SetActive(ctx, admin.ID, admin.ID, false)
	assert.Equal(t, 403, statusOf(t, err))
	assert.Equal(t, 403, statusOf(t, svc.Delete(ctx, admin.ID, admin.ID)))
}

func TestUserUpdateKeepsPasswordWhenBlank(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)
	user, err := svc.Create(ctx, UserInput{FullName: "Agent", Email: "agent@example.com", Password: "agent-pass", Role: "agent"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, UserInput{FullName: "Agent Smith", Email: "agent@example.com", Role: "agent"})
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	_, err = svc.Login(ctx, "agent@example.com", "agent-pass")
	assert.NoError(t, err)
}

func TestTokensExpire(t *testing.T) {
	ctx := context.Background()
	svc, c := newUserService(t)
	_, err := svc.Create(ctx, UserInput{FullName: "Agent", Email: "agent@example.com", Password: "agent-pass", Role: "agent"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "agent@example.com", "agent-pass")
	require.NoError(t, err)

	c.advance(2 * time.Hour)
	_, err = svc.Tokens.ParseAccess(login.AccessToken)
	assert.Error(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Tokens.ParseAccess(refreshed.AccessToken)
	assert.NoError(t, err)
}

func TestVerifyPasswordAcceptsBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	tokens := TokenService{}
	assert.True(t, tokens.VerifyPassword("legacy-pass", string(hash)))
	assert.False(t, tokens.VerifyPassword("other", string(hash)))
	assert.False(t, tokens.VerifyPassword("x", "$argon2id$broken"))
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	created, err := svc.EnsureBootstrapAdmin(ctx, "Root", "root@example.com", "root-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureBootstrapAdmin(ctx, "Root", "root2@example.com", "root-password")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
}
