package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"habit-battle-system/logger"
	"habit-battle-system/models"
	"habit-battle-system/repository"

	"github.com/google/uuid"
)

const MinPasswordLength = 6

type UserService struct {
	Repo   repository.Repository
	Hasher Hasher
	Clock  Clock
	Codes  CodeSource // nil draws random codes
}

func NewUserService(repo repository.Repository, hasher Hasher, clock Clock) *UserService {
	return &UserService{Repo: repo, Hasher: hasher, Clock: clockOrReal(clock)}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return validationError("username is required")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return validationError("email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return validationError("email is invalid")
	}
	if len(in.Password) < MinPasswordLength {
		return validationError("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Register creates a level 1 user with a hashed password and a fresh friend code.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	if _, err := s.Repo.FindUserByEmail(ctx, email); err == nil {
		return nil, conflictError("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("failed to check email", err)
	}

	hashed, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}
	code, err := generateUniqueFriendCode(ctx, s.Repo, s.Codes)
	if err != nil {
		return nil, passThrough("failed to generate friend code", err)
	}

	u := &models.User{
		ID:             uuid.NewString(),
		Username:       strings.TrimSpace(in.Username),
		Email:          email,
		Password:       hashed,
		PlatformXP:     0,
		Level:          1,
		MonsterType:    models.DefaultMonsterType,
		FriendCode:     &code,
		Friends:        []string{},
		FriendRequests: []models.FriendRequest{},
	}
	if err := s.Repo.InsertUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflictError("email or friend code already in use")
		}
		return nil, internalError("failed to create user", err)
	}

	logger.Info("[USER] registered", "user_id", u.ID, "friend_code", code)
	return u, nil
}

// Login checks credentials. A stored value that is not a hash is treated as a legacy
// plaintext password: when it matches, it is rehashed and saved before returning.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	u, err := s.Repo.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorizedError("invalid email or password")
	}
	if err != nil {
		return nil, internalError("failed to load user", err)
	}

	if s.Hasher.IsHashed(u.Password) {
		if !s.Hasher.Compare(password, u.Password) {
			return nil, unauthorizedError("invalid email or password")
		}
		return u, nil
	}

	if u.Password != password {
		return nil, unauthorizedError("invalid email or password")
	}
	hashed, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}
	u.Password = hashed
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, internalError("failed to migrate password", err)
	}
	logger.Info("[USER] migrated legacy plaintext password", "user_id", u.ID)
	return u, nil
}

// GetUser is a plain read with no side effects.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, lookupError("user", err)
	}
	return u, nil
}

// Repair backfills a missing friend code and raises the level to match XP.
// It is idempotent and saves only when something changed.
func (s *UserService) Repair(ctx context.Context, u *models.User) (bool, error) {
	changed := false
	if u.FriendCode == nil || *u.FriendCode == "" {
		code, err := generateUniqueFriendCode(ctx, s.Repo, s.Codes)
		if err != nil {
			return false, passThrough("failed to generate friend code", err)
		}
		u.FriendCode = &code
		changed = true
	}
	if u.Level < 1 {
		u.Level = 1
		changed = true
	}
	if raiseLevel(u) {
		changed = true
	}
	if u.MonsterType == "" {
		u.MonsterType = models.DefaultMonsterType
		changed = true
	}
	if !changed {
		return false, nil
	}
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return false, internalError("failed to save repaired user", err)
	}
	logger.Debug("[REPAIR] user repaired", "user_id", u.ID, "level", u.Level)
	return true, nil
}

// SetMonsterType changes the cosmetic monster tag.
func (s *UserService) SetMonsterType(ctx context.Context, userID, monster string) (*models.User, error) {
	monster = strings.ToLower(strings.TrimSpace(monster))
	if !models.IsMonsterType(monster) {
		return nil, validationError("monster_type must be one of %s", strings.Join(models.MonsterTypes, ", "))
	}
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.MonsterType = monster
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, internalError("failed to save user", err)
	}
	return u, nil
}
