// internal/verification/models.go

package verification

import (
	"time"
)

// VerificationCode represents a stored email verification code.
// Only the bcrypt hash of the code is persisted.
type VerificationCode struct {
	ID         int64      `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	CodeHash   string     `db:"code_hash" json:"-"`
	Attempts   int        `db:"attempts" json:"attempts"`
	Verified   bool       `db:"verified" json:"verified"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	VerifiedAt *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// RequestCodeRequest is the payload for requesting a verification code
type RequestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmCodeRequest is the payload for confirming a verification code
type ConfirmCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

// RequestCodeResponse reports when the issued code expires
type RequestCodeResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailTemplate holds the data for an outgoing email
type EmailTemplate struct {
	To           string
	Subject      string
	TemplateName string
	Data         map[string]interface{}
}
