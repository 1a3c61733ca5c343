package services

import (
	"context"
	"errors"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/store"
)

const (
	MinPasswordLength = 8
	duplicateEmail    = "A user with this email already exists"
	authFailed        = "Authentication failed"
)

type UserService struct {
	Store  store.Store
	Tokens TokenService
	Now    func() time.Time
	Logger *zap.Logger
}

// UserInput is a create or edit request. An empty Password on edit keeps
// the current credential.
type UserInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	TokenPair
	User models.User
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *UserService) validate(in UserInput, creating bool) (UserInput, models.Role, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	var violations Violations
	if in.FullName == "" {
		violations.add("fullName", "Full name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || in.Email == "" {
		violations.add("email", "Email is invalid")
	}
	if creating || in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			violations.add("password", "Password must have at least 8 characters")
		}
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		violations.add("role", "Role is invalid")
	}
	if !violations.OK() {
		return in, "", ErrInvalid("User is invalid", violations)
	}
	return in, role, nil
}

func (s *UserService) emailTaken(ctx context.Context, email, selfID string) (bool, error) {
	existing, err := s.Store.Users().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	case err != nil:
		return false, WrapError(err, "lookup user email")
	default:
		return existing.ID != selfID, nil
	}
}

func (s *UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	in, role, err := s.validate(in, true)
	if err != nil {
		return models.User{}, err
	}
	taken, err := s.emailTaken(ctx, in.Email, "")
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrConflict(duplicateEmail)
	}
	hash, err := s.Tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, WrapError(err, "hash password")
	}
	now := s.now()
	user := models.User{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		return models.User{}, storeError(err, "", duplicateEmail, "create user")
	}
	s.Logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.Store.Users().Get(ctx, id)
	if err != nil {
		return models.User{}, storeError(err, "User not found", "", "get user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UserInput) (models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	in, role, err := s.validate(in, false)
	if err != nil {
		return models.User{}, err
	}
	taken, err := s.emailTaken(ctx, in.Email, user.ID)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrConflict(duplicateEmail)
	}
	if in.Password != "" {
		hash, err := s.Tokens.HashPassword(in.Password)
		if err != nil {
			return models.User{}, WrapError(err, "hash password")
		}
		user.PasswordHash = hash
	}
	user.FullName = in.FullName
	user.Email = in.Email
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.Store.Users().Update(ctx, user); err != nil {
		return models.User{}, storeError(err, "User not found", duplicateEmail, "update user")
	}
	return user, nil
}

// SetActive toggles a user. Operators cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actorID, id string, active bool) (models.User, error) {
	if !active && actorID == id {
		return models.User{}, ErrForbidden("You cannot deactivate your own account")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.Active == active {
		return user, nil
	}
	user.Active = active
	user.UpdatedAt = s.now()
	if err := s.Store.Users().Update(ctx, user); err != nil {
		return models.User{}, storeError(err, "User not found", "", "update user")
	}
	s.Logger.Info("user activation changed", zap.String("user_id", id), zap.Bool("active", active))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrForbidden("You cannot delete your own account")
	}
	if err := s.Store.Users().Delete(ctx, id); err != nil {
		return storeError(err, "User not found", "", "delete user")
	}
	return nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return nil, WrapError(err, "list users")
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].FullName) < strings.ToLower(users[j].FullName)
	})
	return users, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable; inactive accounts are refused even with the right
// password.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrUnauthorized(authFailed)
	}
	user, err := s.Store.Users().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrUnauthorized(authFailed)
	}
	if err != nil {
		return LoginResult{}, WrapError(err, "lookup user")
	}
	if !s.Tokens.VerifyPassword(password, user.PasswordHash) {
		loginFailures.Inc()
		return LoginResult{}, ErrUnauthorized(authFailed)
	}
	if !user.Active {
		return LoginResult{}, ErrForbidden("Account is inactive")
	}
	tokens, err := s.Tokens.Issue(user)
	if err != nil {
		return LoginResult{}, WrapError(err, "issue tokens")
	}
	s.Logger.Info("user logged in", zap.String("user_id", user.ID))
	return LoginResult{TokenPair: tokens, User: user}, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	userID, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return LoginResult{}, err
	}
	user, err := s.Store.Users().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrUnauthorized(authFailed)
	}
	if err != nil {
		return LoginResult{}, WrapError(err, "lookup user")
	}
	if !user.Active {
		return LoginResult{}, ErrForbidden("Account is inactive")
	}
	tokens, err := s.Tokens.Issue(user)
	if err != nil {
		return LoginResult{}, WrapError(err, "issue tokens")
	}
	return LoginResult{TokenPair: tokens, User: user}, nil
}

// EnsureBootstrapAdmin creates the first admin when no user exists yet.
// It reports whether an account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, fullName, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	users, err := s.Store.Users().List(ctx)
	if err != nil {
		return false, WrapError(err, "list users")
	}
	if len(users) > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, UserInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     string(models.RoleAdmin),
	}); err != nil {
		return false, err
	}
	return true, nil
}
