package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/store"
)

func newTestService() (*Service, *store.MemoryStore) {
	s := store.NewMemoryStore()
	return NewService(s, NewBcryptHasher(MinBcryptCost)), s
}

func TestSignupFirstAccountIsAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Signup(ctx, SignupInput{Email: "owner@axoshard.shop", Password: "secret1", Name: "Owner"})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	second, err := svc.Signup(ctx, SignupInput{Email: "shopper@example.com", Password: "secret2", Name: "Shopper"})
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
}

func TestSignupValidation(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		input   SignupInput
		message string
	}{
		{"bad email", SignupInput{Email: "not-an-email", Password: "secret1", Name: "A"}, "email must be a valid email address"},
		{"short password", SignupInput{Email: "a@example.com", Password: "12345", Name: "A"}, "password must be at least 6 characters"},
		{"missing name", SignupInput{Email: "a@example.com", Password: "secret1", Name: "   "}, "name is required"},
		{"long password", SignupInput{Email: "a@example.com", Password: strings.Repeat("x", 80), Name: "A"}, "password must be at most 72 bytes"},
		{"long multibyte password", SignupInput{Email: "a@example.com", Password: strings.Repeat("é", 40), Name: "A"}, "password must be at most 72 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.EqualError(t, err, tt.message)
		})
	}

	n, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSignupDuplicateIgnoresCase(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "Ada@Example.com", Password: "secret1", Name: "Ada"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Email: " ada@example.COM ", Password: "secret1", Name: "Ada again"})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSignupStoresHashNotPassword(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	pub, err := svc.Signup(ctx, SignupInput{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	u, err := users.GetUser(ctx, pub.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2a$10$"), u.PasswordHash)
}

func TestVerify(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Email: "ada@example.com", Password: "secret1", Name: "Ada"})
	require.NoError(t, err)

	got, err := svc.Verify(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, wrongPassword := svc.Verify(ctx, "ada@example.com", "secret2")
	_, unknownEmail := svc.Verify(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, 401, apperr.HTTPStatus(wrongPassword))
}

func TestPromote(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "owner@example.com", Password: "secret1", Name: "Owner"})
	require.NoError(t, err)
	shopper, err := svc.Signup(ctx, SignupInput{Email: "shopper@example.com", Password: "secret1", Name: "Shopper"})
	require.NoError(t, err)
	require.False(t, shopper.IsAdmin)

	promoted, err := svc.Promote(ctx, shopper.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	current, err := svc.User(ctx, shopper.ID)
	require.NoError(t, err)
	assert.True(t, current.IsAdmin)

	_, err = svc.Promote(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.PromoteByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	byEmail, err := svc.PromoteByEmail(ctx, "SHOPPER@example.com")
	require.NoError(t, err)
	assert.Equal(t, shopper.ID, byEmail.ID)
}

func TestBcryptCostFloor(t *testing.T) {
	assert.Equal(t, MinBcryptCost, NewBcryptHasher(4).Cost())
	assert.Equal(t, 12, NewBcryptHasher(12).Cost())

	h := NewBcryptHasher(0)
	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	ok, err := h.Compare(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.Compare(hash, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = h.Compare("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestTokens(t *testing.T) {
	issuer, err := NewTokenIssuer("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	_, err = issuer.Parse(token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, err := NewTokenIssuer("another-secret-of-length", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestNewTokenIssuerRejectsWeakSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenIssuer("0123456789abcdef", 0)
	assert.Error(t, err)
}

func TestSignupAcceptsPasswordAtByteLimit(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Signup(context.Background(), SignupInput{Email: "a@example.com", Password: strings.Repeat("x", 72), Name: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	_, err := NewBcryptHasher(MinBcryptCost).Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

func TestConcurrentSignupsYieldOneAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admins := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.Signup(ctx, SignupInput{Email: fmt.Sprintf("user%d@example.com", i), Password: "secret1", Name: "User"})
			if !assert.NoError(t, err) {
				return
			}
			if u.IsAdmin {
				mu.Lock()
				admins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, admins)
}
