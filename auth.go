package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"adminpanel/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errUserExists         = errors.New("user already exists")
	errTokenNotFound      = errors.New("refresh token not found")
)

// accounts stores users and their refresh tokens.
type accounts interface {
	UserByName(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id uint) (models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error
	RefreshTokenByHash(ctx context.Context, hash string) (models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uint) error
}

// registerUser creates a user with a bcrypt password hash.
func registerUser(ctx context.Context, acc accounts, username, password, role string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return models.User{}, fmt.Errorf("password too short (min 6)")
	}
	if _, err := acc.UserByName(ctx, username); err == nil {
		return models.User{}, errUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{Username: username, HashedPassword: hashed, Role: role}
	if err := acc.CreateUser(ctx, &u); err != nil {
		if isUniqueConstraintError(err) { // race after the pre-check
			return models.User{}, errUserExists
		}
		return models.User{}, err
	}
	return u, nil
}

func authenticate(ctx context.Context, acc accounts, username, password string) (models.User, error) {
	u, err := acc.UserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		return models.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return u, nil
}

// seedAdmin makes sure an administrator account exists.
func seedAdmin(ctx context.Context, acc accounts, password string) (bool, error) {
	if _, err := acc.UserByName(ctx, "admin"); err == nil {
		return false, nil
	}
	if _, err := registerUser(ctx, acc, "admin", password, models.RoleAdministrator); err != nil {
		if errors.Is(err, errUserExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// gormAccounts keeps users and refresh tokens in Postgres.
type gormAccounts struct {
	db *gorm.DB
}

func (g gormAccounts) UserByName(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return u, err
}

func (g gormAccounts) UserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).First(&u, id).Error
	return u, err
}

func (g gormAccounts) CreateUser(ctx context.Context, u *models.User) error {
	return g.db.WithContext(ctx).Create(u).Error
}

func (g gormAccounts) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return g.db.WithContext(ctx).Create(t).Error
}

func (g gormAccounts) RefreshTokenByHash(ctx context.Context, hash string) (models.RefreshToken, error) {
	var t models.RefreshToken
	if err := g.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, errTokenNotFound
		}
		return t, err
	}
	return t, nil
}

func (g gormAccounts) RevokeRefreshToken(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("id = ?", id).Update("revoked", true).Error
}

// memoryAccounts backs RECORD_STORE=memory and the tests.
type memoryAccounts struct {
	mu     sync.Mutex
	users  []models.User
	tokens []models.RefreshToken
}

func (m *memoryAccounts) UserByName(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryAccounts) UserByID(_ context.Context, id uint) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryAccounts) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Username == u.Username {
			return fmt.Errorf("duplicate key username")
		}
	}
	u.ID = uint(len(m.users) + 1)
	u.CreatedAt = time.Now()
	m.users = append(m.users, *u)
	return nil
}

func (m *memoryAccounts) SaveRefreshToken(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uint(len(m.tokens) + 1)
	m.tokens = append(m.tokens, *t)
	return nil
}

func (m *memoryAccounts) RefreshTokenByHash(_ context.Context, hash string) (models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return models.RefreshToken{}, errTokenNotFound
}

func (m *memoryAccounts) RevokeRefreshToken(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tokens {
		if m.tokens[i].ID == id {
			m.tokens[i].Revoked = true
		}
	}
	return nil
}
