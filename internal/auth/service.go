// Package auth owns accounts: signup, credential checks, promotion to
// admin, and the signed session tokens the HTTP layer hands out.
package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/models"
	"github.com/matthieukhl/axoshard/internal/store"
	"github.com/matthieukhl/axoshard/internal/validation"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "invalid credentials")
	ErrDuplicateAccount   = store.ErrDuplicateEmail
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "user not found")
)

// SignupInput is the account form.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Name     string `json:"name" validate:"required"`
}

// LoginInput carries credentials only; checks beyond presence happen in Verify.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Service struct {
	users  store.UserStore
	hasher Hasher
}

func NewService(users store.UserStore, hasher Hasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Signup creates an account. The first account ever created is an admin.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.PublicUser, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateAccount
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The store decides both email uniqueness and the first-admin flag.
	u, err := s.users.CreateAccount(ctx, models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
	})
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// Verify checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Verify(ctx context.Context, email, password string) (*models.PublicUser, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		log.Printf("auth: unusable password hash for user %s: %v", u.ID, err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	pub := u.Public()
	return &pub, nil
}

// User loads the current state of an account, e.g. for a session check.
func (s *Service) User(ctx context.Context, id string) (*models.PublicUser, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, userNotFound(err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *Service) Promote(ctx context.Context, userID string) (*models.PublicUser, error) {
	u, err := s.users.SetAdmin(ctx, userID, true)
	if err != nil {
		return nil, userNotFound(err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *Service) PromoteByEmail(ctx context.Context, email string) (*models.PublicUser, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, userNotFound(err)
	}
	return s.Promote(ctx, u.ID)
}

func userNotFound(err error) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return ErrUserNotFound
	}
	return err
}
