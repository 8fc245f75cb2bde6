// internal/verification/service.go

package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/finlove/finlove-backend/internal/auth"
	"github.com/finlove/finlove-backend/internal/profile"
)

var (
	ErrDomainNotAllowed = errors.New("email domain is not allowed")
	ErrCodeExpired      = errors.New("verification code has expired")
	ErrCodeInvalid      = errors.New("invalid verification code")
	ErrCodeMaxAttempts  = errors.New("maximum verification attempts exceeded")
	ErrCodeAlreadyUsed  = errors.New("verification code has already been used")
	ErrRateLimited      = errors.New("too many code requests, please try again later")
)

// Config holds verification policy settings
type Config struct {
	AllowedDomains []string
	CodeLength     int
	CodeExpiry     time.Duration
	MaxAttempts    int
	ResendMax      int
	ResendWindow   time.Duration
	BCryptCost     int
}

// ConfirmResult carries the verified user and their session tokens
type ConfirmResult struct {
	User   *profile.User   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// Service defines the email verification interface
type Service interface {
	// RequestCode issues a fresh code to the given address. The address must
	// belong to an allowed domain unless the user is whitelisted.
	RequestCode(ctx context.Context, email string) (*RequestCodeResponse, error)

	// ConfirmCode checks the submitted code, marks the user verified and
	// issues a token pair.
	ConfirmCode(ctx context.Context, email, code string) (*ConfirmResult, error)

	// CleanupExpiredCodes removes stale unverified codes
	CleanupExpiredCodes(ctx context.Context) error
}

type service struct {
	repo        Repository
	users       profile.Repository
	tokens      auth.Service
	email       EmailProvider
	redisClient *redis.Client // optional resend limiter; nil disables
	config      *Config
	domainRe    *regexp.Regexp
}

// NewService creates a new verification service
func NewService(
	repo Repository,
	users profile.Repository,
	tokens auth.Service,
	email EmailProvider,
	redisClient *redis.Client,
	config *Config,
) Service {
	if config == nil {
		config = &Config{
			AllowedDomains: []string{"edu.fa.ru", "fa.ru"},
			CodeLength:     6,
			CodeExpiry:     10 * time.Minute,
			MaxAttempts:    5,
			ResendMax:      3,
			ResendWindow:   time.Hour,
			BCryptCost:     bcrypt.DefaultCost,
		}
	}

	return &service{
		repo:        repo,
		users:       users,
		tokens:      tokens,
		email:       email,
		redisClient: redisClient,
		config:      config,
		domainRe:    compileDomainPattern(config.AllowedDomains),
	}
}

// compileDomainPattern builds a matcher for addresses on the allowed domains
func compileDomainPattern(domains []string) *regexp.Regexp {
	if len(domains) == 0 {
		return nil
	}

	escaped := make([]string, len(domains))
	for i, d := range domains {
		escaped[i] = regexp.QuoteMeta(strings.ToLower(d))
	}

	return regexp.MustCompile(`^[^@\s]+@(` + strings.Join(escaped, "|") + `)$`)
}

func (s *service) RequestCode(ctx context.Context, email string) (*RequestCodeResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.domainAllowed(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrDomainNotAllowed
	}

	if err := s.checkResendLimit(ctx, email); err != nil {
		return nil, err
	}

	if err := s.repo.InvalidateCodes(ctx, email); err != nil {
		log.Printf("Failed to invalidate existing codes for %s: %v", email, err)
	}

	plainCode, err := generateCode(s.config.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainCode), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash code: %w", err)
	}

	code := &VerificationCode{
		Email:     email,
		CodeHash:  string(hash),
		Attempts:  0,
		Verified:  false,
		ExpiresAt: time.Now().Add(s.config.CodeExpiry),
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to save code: %w", err)
	}

	template := &EmailTemplate{
		To:           email,
		Subject:      "Your FinLove verification code",
		TemplateName: "verification_code",
		Data: map[string]interface{}{
			"code":      plainCode,
			"expiresIn": int(s.config.CodeExpiry.Minutes()),
		},
	}

	if err := s.email.SendEmail(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to send code: %w", err)
	}

	return &RequestCodeResponse{
		Message:   "Verification code sent",
		ExpiresAt: code.ExpiresAt,
	}, nil
}

func (s *service) ConfirmCode(ctx context.Context, email, submitted string) (*ConfirmResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	code, err := s.repo.GetLatestCode(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}

	if code.Verified {
		return nil, ErrCodeAlreadyUsed
	}

	if time.Now().After(code.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	if code.Attempts >= s.config.MaxAttempts {
		return nil, ErrCodeMaxAttempts
	}

	if err := s.repo.IncrementAttempts(ctx, code.ID); err != nil {
		log.Printf("Failed to bump attempt counter for code %d: %v", code.ID, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(code.CodeHash), []byte(submitted)) != nil {
		return nil, ErrCodeInvalid
	}

	if err := s.repo.MarkVerified(ctx, code.ID); err != nil {
		return nil, fmt.Errorf("failed to mark code verified: %w", err)
	}

	user, err := s.users.CreateOrTouch(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	if !user.Verified {
		if err := s.users.SetVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to flag user verified: %w", err)
		}
		user.Verified = true
	}

	tokens, err := s.tokens.IssueTokens(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &ConfirmResult{User: user, Tokens: tokens}, nil
}

func (s *service) CleanupExpiredCodes(ctx context.Context) error {
	return s.repo.DeleteExpiredCodes(ctx, time.Now())
}

// domainAllowed reports whether the address may receive a code. Whitelisted
// users registered by an admin bypass the domain restriction.
func (s *service) domainAllowed(ctx context.Context, email string) (bool, error) {
	if s.domainRe == nil || s.domainRe.MatchString(email) {
		return true, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.Whitelisted, nil
}

// checkResendLimit enforces the per-address request quota via Redis. When
// Redis is not configured the limiter is disabled.
func (s *service) checkResendLimit(ctx context.Context, email string) error {
	if s.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf("verify:rate:%s", email)
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("Resend limiter unavailable: %v", err)
		return nil
	}

	if count == 1 {
		s.redisClient.Expire(ctx, key, s.config.ResendWindow)
	}

	if count > int64(s.config.ResendMax) {
		return ErrRateLimited
	}

	return nil
}

// generateCode generates a random numeric code
func generateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
