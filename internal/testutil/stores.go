// Package testutil holds in-memory stand-ins for the GORM repositories. They
// follow the same contracts: copies in and out, repository.ErrNotFound for
// missing rows and repository.ErrDuplicate for unique violations.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/studymate/auth-backend/internal/models"
	"github.com/studymate/auth-backend/internal/repository"
)

type UserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
	// Err, when set, is returned by every method.
	Err error
	// UpdateErr, when set, is returned by the Set* methods only.
	UpdateErr error
}

func NewUserStore() *UserStore {
	return &UserStore{nextID: 1, users: make(map[uint]models.User)}
}

func (s *UserStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return s.first(func(u *models.User) bool { return u.Username == username })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.first(func(u *models.User) bool { return u.Email == email })
}

func (s *UserStore) FindBySocial(_ context.Context, provider, socialID string) (*models.User, error) {
	return s.first(func(u *models.User) bool {
		return u.SocialProvider != nil && u.SocialID != nil &&
			*u.SocialProvider == provider && *u.SocialID == socialID
	})
}

func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
		if sameSocial(&u, user) {
			return repository.ErrDuplicate
		}
	}

	user.ID = s.nextID
	s.nextID++
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) SetRefreshToken(_ context.Context, id uint, hash *string) error {
	return s.update(id, func(u *models.User) { u.RefreshToken = cloneString(hash) })
}

func (s *UserStore) SetPassword(_ context.Context, id uint, hash string) error {
	return s.update(id, func(u *models.User) {
		u.PasswordHash = &hash
		u.RefreshToken = nil
	})
}

func (s *UserStore) SetEmail(_ context.Context, id uint, email string) error {
	return s.update(id, func(u *models.User) { u.Email = email })
}

func (s *UserStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Put stores u as is, assigning an ID when it has none.
func (s *UserStore) Put(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	} else if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	s.users[u.ID] = u
	return &u
}

func (s *UserStore) first(match func(u *models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var found *models.User
	for _, u := range s.users {
		if match(&u) && (found == nil || u.ID < found.ID) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *UserStore) update(id uint, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

func sameSocial(a, b *models.User) bool {
	return a.SocialProvider != nil && b.SocialProvider != nil &&
		a.SocialID != nil && b.SocialID != nil &&
		*a.SocialProvider == *b.SocialProvider && *a.SocialID == *b.SocialID
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type SocialAccountStore struct {
	mu       sync.Mutex
	nextID   uint
	accounts []models.SocialAccount
}

func NewSocialAccountStore() *SocialAccountStore {
	return &SocialAccountStore{nextID: 1}
}

func (s *SocialAccountStore) Upsert(_ context.Context, account *models.SocialAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for i, a := range s.accounts {
		if a.UserID == account.UserID && a.Provider == account.Provider {
			a.ProviderID = account.ProviderID
			a.ProfileImageURL = cloneString(account.ProfileImageURL)
			a.UpdatedAt = now
			s.accounts[i] = a
			account.ID = a.ID
			return nil
		}
	}
	account.ID = s.nextID
	s.nextID++
	account.CreatedAt, account.UpdatedAt = now, now
	stored := *account
	stored.ProfileImageURL = cloneString(account.ProfileImageURL)
	s.accounts = append(s.accounts, stored)
	return nil
}

func (s *SocialAccountStore) All() []models.SocialAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SocialAccount(nil), s.accounts...)
}

type VerificationCodeStore struct {
	mu     sync.Mutex
	nextID uint
	codes  map[uint]models.VerificationCode
}

func NewVerificationCodeStore() *VerificationCodeStore {
	return &VerificationCodeStore{nextID: 1, codes: make(map[uint]models.VerificationCode)}
}

func (s *VerificationCodeStore) Create(_ context.Context, code *models.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code.ID = s.nextID
	s.nextID++
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	s.codes[code.ID] = *code
	return nil
}

func (s *VerificationCodeStore) FindValid(_ context.Context, email, code string, now time.Time) (*models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.VerificationCode
	for _, vc := range s.codes {
		if vc.Email != email || vc.Code != code || !now.Before(vc.ExpiresAt) {
			continue
		}
		if found == nil || vc.ID > found.ID {
			vc := vc
			found = &vc
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *VerificationCodeStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, id)
	return nil
}

func (s *VerificationCodeStore) All() []models.VerificationCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.VerificationCode, 0, len(s.codes))
	for _, vc := range s.codes {
		out = append(out, vc)
	}
	return out
}

type InvalidTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.InvalidToken
	Err    error
}

func NewInvalidTokenStore() *InvalidTokenStore {
	return &InvalidTokenStore{tokens: make(map[string]models.InvalidToken)}
}

func (s *InvalidTokenStore) Create(_ context.Context, token *models.InvalidToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.tokens[token.TokenID]; !ok {
		s.tokens[token.TokenID] = *token
	}
	return nil
}

func (s *InvalidTokenStore) Exists(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.tokens[tokenID]
	return ok, nil
}

func (s *InvalidTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
