// internal/verification/service_test.go

package verification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/finlove/finlove-backend/internal/auth"
	"github.com/finlove/finlove-backend/internal/profile"
)

// fakeCodeRepository keeps verification codes in memory
type fakeCodeRepository struct {
	codes  []*VerificationCode
	nextID int64
}

func (f *fakeCodeRepository) CreateCode(ctx context.Context, code *VerificationCode) error {
	f.nextID++
	code.ID = f.nextID
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeCodeRepository) GetLatestCode(ctx context.Context, email string) (*VerificationCode, error) {
	for i := len(f.codes) - 1; i >= 0; i-- {
		if f.codes[i].Email == email {
			return f.codes[i], nil
		}
	}
	return nil, ErrCodeNotFound
}

func (f *fakeCodeRepository) IncrementAttempts(ctx context.Context, id int64) error {
	for _, c := range f.codes {
		if c.ID == id {
			c.Attempts++
		}
	}
	return nil
}

func (f *fakeCodeRepository) MarkVerified(ctx context.Context, id int64) error {
	now := time.Now()
	for _, c := range f.codes {
		if c.ID == id {
			c.Verified = true
			c.VerifiedAt = &now
		}
	}
	return nil
}

func (f *fakeCodeRepository) InvalidateCodes(ctx context.Context, email string) error {
	now := time.Now()
	for _, c := range f.codes {
		if c.Email == email && !c.Verified && c.ExpiresAt.After(now) {
			c.ExpiresAt = now
		}
	}
	return nil
}

func (f *fakeCodeRepository) DeleteExpiredCodes(ctx context.Context, before time.Time) error {
	kept := f.codes[:0]
	for _, c := range f.codes {
		if c.Verified || !c.ExpiresAt.Before(before) {
			kept = append(kept, c)
		}
	}
	f.codes = kept
	return nil
}

// fakeUserRepository implements profile.Repository in memory, only the
// methods the verification flow touches do real work
type fakeUserRepository struct {
	users  map[string]*profile.User
	nextID int64
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*profile.User)}
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id int64) (*profile.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, profile.ErrUserNotFound
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*profile.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, profile.ErrUserNotFound
}

func (f *fakeUserRepository) CreateOrTouch(ctx context.Context, email string) (*profile.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	f.nextID++
	u := &profile.User{ID: f.nextID, Email: email}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserRepository) UpdateProfile(ctx context.Context, id int64, req *profile.UpdateProfileRequest) (*profile.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) UpdatePhotoURL(ctx context.Context, id int64, url *string) error {
	return nil
}

func (f *fakeUserRepository) SetVerified(ctx context.Context, id int64) error {
	for _, u := range f.users {
		if u.ID == id {
			u.Verified = true
		}
	}
	return nil
}

func (f *fakeUserRepository) List(ctx context.Context, search string, limit, offset int) ([]*profile.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) UpdateFlags(ctx context.Context, id int64, admin, banned, whitelisted bool) error {
	return nil
}

func (f *fakeUserRepository) WhitelistByUsername(ctx context.Context, username string) (int64, error) {
	return 0, nil
}

func (f *fakeUserRepository) ListBroadcastRecipients(ctx context.Context) ([]*profile.BroadcastRecipient, error) {
	return nil, nil
}

func testConfig() *Config {
	return &Config{
		AllowedDomains: []string{"edu.fa.ru", "fa.ru"},
		CodeLength:     6,
		CodeExpiry:     10 * time.Minute,
		MaxAttempts:    5,
		ResendMax:      3,
		ResendWindow:   time.Hour,
		BCryptCost:     bcrypt.MinCost,
	}
}

func newTestService(t *testing.T) (Service, *fakeCodeRepository, *fakeUserRepository, *MockEmailProvider) {
	t.Helper()

	codes := &fakeCodeRepository{}
	users := newFakeUserRepository()
	email := NewMockEmailProvider()
	tokens := auth.NewService(&auth.Config{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
	})

	svc := NewService(codes, users, tokens, email, nil, testConfig())
	return svc, codes, users, email
}

// sentCode digs the plain code out of the last captured email
func sentCode(t *testing.T, email *MockEmailProvider) string {
	t.Helper()
	require.NotEmpty(t, email.SentEmails)
	last := email.SentEmails[len(email.SentEmails)-1]
	code, ok := last.Data["code"].(string)
	require.True(t, ok)
	return code
}

func TestRequestCode(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a code to an allowed domain", func(t *testing.T) {
		svc, codes, _, email := newTestService(t)

		resp, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)
		assert.True(t, resp.ExpiresAt.After(time.Now()))

		require.Len(t, codes.codes, 1)
		assert.Equal(t, "student@edu.fa.ru", codes.codes[0].Email)
		assert.Len(t, sentCode(t, email), 6)
	})

	t.Run("stores only a hash of the code", func(t *testing.T) {
		svc, codes, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@fa.ru")
		require.NoError(t, err)

		plain := sentCode(t, email)
		stored := codes.codes[0].CodeHash
		assert.NotEqual(t, plain, stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)))
	})

	t.Run("rejects an outside domain", func(t *testing.T) {
		svc, codes, _, _ := newTestService(t)

		_, err := svc.RequestCode(ctx, "someone@gmail.com")
		assert.ErrorIs(t, err, ErrDomainNotAllowed)
		assert.Empty(t, codes.codes)
	})

	t.Run("rejects a lookalike domain", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.RequestCode(ctx, "someone@edu.fa.ru.evil.com")
		assert.ErrorIs(t, err, ErrDomainNotAllowed)
	})

	t.Run("whitelisted user bypasses the domain check", func(t *testing.T) {
		svc, _, users, _ := newTestService(t)
		users.users["guest@gmail.com"] = &profile.User{ID: 1, Email: "guest@gmail.com", Whitelisted: true}

		_, err := svc.RequestCode(ctx, "guest@gmail.com")
		assert.NoError(t, err)
	})

	t.Run("invalidates earlier codes", func(t *testing.T) {
		svc, codes, _, _ := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)
		_, err = svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)

		require.Len(t, codes.codes, 2)
		assert.False(t, codes.codes[0].ExpiresAt.After(time.Now()), "first code must be expired")
		assert.True(t, codes.codes[1].ExpiresAt.After(time.Now()))
	})
}

func TestRequestCodeRateLimit(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	codes := &fakeCodeRepository{}
	users := newFakeUserRepository()
	tokens := auth.NewService(&auth.Config{JWTSecret: "test-secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour})
	svc := NewService(codes, users, tokens, NewMockEmailProvider(), client, testConfig())

	for i := 0; i < 3; i++ {
		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err, "request %d should pass", i+1)
	}

	_, err = svc.RequestCode(ctx, "student@edu.fa.ru")
	assert.ErrorIs(t, err, ErrRateLimited)

	// Other addresses are unaffected
	_, err = svc.RequestCode(ctx, "other@edu.fa.ru")
	assert.NoError(t, err)

	// The window eventually resets
	mr.FastForward(time.Hour + time.Minute)
	_, err = svc.RequestCode(ctx, "student@edu.fa.ru")
	assert.NoError(t, err)
}

func TestConfirmCode(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies user and issues tokens", func(t *testing.T) {
		svc, _, users, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)

		result, err := svc.ConfirmCode(ctx, "student@edu.fa.ru", sentCode(t, email))
		require.NoError(t, err)

		assert.True(t, result.User.Verified)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)

		stored, err := users.GetByEmail(ctx, "student@edu.fa.ru")
		require.NoError(t, err)
		assert.True(t, stored.Verified)
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		svc, _, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "Student@EDU.FA.RU")
		require.NoError(t, err)

		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", sentCode(t, email))
		assert.NoError(t, err)
	})

	t.Run("wrong code", func(t *testing.T) {
		svc, _, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)

		wrong := "000000"
		if sentCode(t, email) == wrong {
			wrong = "000001"
		}

		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", wrong)
		assert.ErrorIs(t, err, ErrCodeInvalid)
	})

	t.Run("no code requested", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.ConfirmCode(ctx, "student@edu.fa.ru", "123456")
		assert.ErrorIs(t, err, ErrCodeInvalid)
	})

	t.Run("expired code", func(t *testing.T) {
		svc, codes, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)
		codes.codes[0].ExpiresAt = time.Now().Add(-time.Minute)

		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", sentCode(t, email))
		assert.ErrorIs(t, err, ErrCodeExpired)
	})

	t.Run("code cannot be reused", func(t *testing.T) {
		svc, _, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)
		code := sentCode(t, email)

		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", code)
		require.NoError(t, err)

		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", code)
		assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
	})

	t.Run("attempts are capped", func(t *testing.T) {
		svc, _, _, email := newTestService(t)

		_, err := svc.RequestCode(ctx, "student@edu.fa.ru")
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", fmt.Sprintf("bad%03d", i))
			assert.ErrorIs(t, err, ErrCodeInvalid)
		}

		// Even the right code is refused once the cap is hit
		_, err = svc.ConfirmCode(ctx, "student@edu.fa.ru", sentCode(t, email))
		assert.ErrorIs(t, err, ErrCodeMaxAttempts)
	})
}

func TestCompileDomainPattern(t *testing.T) {
	re := compileDomainPattern([]string{"edu.fa.ru", "fa.ru"})

	assert.True(t, re.MatchString("a@edu.fa.ru"))
	assert.True(t, re.MatchString("b.c@fa.ru"))
	assert.False(t, re.MatchString("a@eduXfa.ru"), "dots must not act as wildcards")
	assert.False(t, re.MatchString("a@edu.fa.ru "))
	assert.False(t, re.MatchString("a@sub.fa.ru"))

	assert.Nil(t, compileDomainPattern(nil))
}
