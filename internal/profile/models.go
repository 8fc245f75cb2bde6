// internal/profile/models.go

package profile

import (
	"time"
)

// User represents a registered user and their profile fields
type User struct {
	ID          int64      `json:"id" db:"id"`
	Username    *string    `json:"username,omitempty" db:"username"`
	Email       string     `json:"email" db:"email"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	FirstName   *string    `json:"first_name,omitempty" db:"first_name"`
	LastName    *string    `json:"last_name,omitempty" db:"last_name"`
	Gender      *string    `json:"gender,omitempty" db:"gender"`
	Age         *int       `json:"age,omitempty" db:"age"`
	Faculty     *string    `json:"faculty,omitempty" db:"faculty"`
	Program     *string    `json:"program,omitempty" db:"program"`
	StudyYear   *int       `json:"study_year,omitempty" db:"study_year"`
	PhotoURL    *string    `json:"photo_url,omitempty" db:"photo_url"`
	About       *string    `json:"about,omitempty" db:"about"`
	Verified    bool       `json:"verified" db:"verified"`
	Banned      bool       `json:"banned" db:"is_banned"`
	Admin       bool       `json:"admin" db:"is_admin"`
	Whitelisted bool       `json:"whitelisted" db:"is_whitelisted"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the best human-readable name for the user
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.Username != nil:
		return "@" + *u.Username
	default:
		return u.Email
	}
}

// Card is the public projection of a profile shown to other users
type Card struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"first_name,omitempty"`
	Age       *int    `json:"age,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Faculty   *string `json:"faculty,omitempty"`
	Program   *string `json:"program,omitempty"`
	StudyYear *int    `json:"study_year,omitempty"`
	PhotoURL  *string `json:"photo_url,omitempty"`
	About     *string `json:"about,omitempty"`
}

// ToCard builds the public projection of a user
func (u *User) ToCard() *Card {
	return &Card{
		ID:        u.ID,
		FirstName: u.FirstName,
		Age:       u.Age,
		Gender:    u.Gender,
		Faculty:   u.Faculty,
		Program:   u.Program,
		StudyYear: u.StudyYear,
		PhotoURL:  u.PhotoURL,
		About:     u.About,
	}
}

// UpdateProfileRequest is a partial profile update; only set fields are applied
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=64"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Age       *int    `json:"age,omitempty" validate:"omitempty,min=16,max=100"`
	Faculty   *string `json:"faculty,omitempty" validate:"omitempty,max=255"`
	Program   *string `json:"program,omitempty" validate:"omitempty,max=255"`
	StudyYear *int    `json:"study_year,omitempty" validate:"omitempty,min=1,max=6"`
	About     *string `json:"about,omitempty" validate:"omitempty,max=2000"`
}

// BroadcastRecipient is the minimal contact projection used for announcements
type BroadcastRecipient struct {
	ID    int64   `db:"id"`
	Email string  `db:"email"`
	Phone *string `db:"phone"`
}
