package models

import "time"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID                int       `json:"id" db:"id"`
	FirstName         string    `json:"first_name" db:"first_name"`
	LastName          string    `json:"last_name" db:"last_name"`
	Nickname          *string   `json:"nickname,omitempty" db:"nickname"`
	Role              UserRole  `json:"role" db:"role"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	EmailConfirmed    bool      `json:"email_confirmed" db:"email_confirmed"`
	ConfirmationToken *string   `json:"-" db:"confirmation_token"`
	AvatarKey         *string   `json:"-" db:"avatar_key"`
	AvatarURL         *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is what leaderboards and scored brackets show for the user.
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
