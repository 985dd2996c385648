package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Roles        []Role    `gorm:"many2many:user_roles"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the names of the user's roles in declaration order.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role identity is its name, not its surrogate id.
type Role struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
}

func (r Role) Equal(other Role) bool {
	return r.Name == other.Name
}

// RefreshToken is the persisted, revocable half of the credential pair.
// The opaque Token value is the only thing the client ever sees.
type RefreshToken struct {
	ID         int64     `gorm:"primaryKey"`
	Token      string    `gorm:"uniqueIndex;not null"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	User       User      `gorm:"foreignKey:UserID"`
	ExpiryDate time.Time `gorm:"not null"`
	CreatedAt  time.Time
	Revoked    bool `gorm:"not null;default:false"`
}

func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiryDate) || now.Equal(t.ExpiryDate)
}

func (t RefreshToken) Valid(now time.Time) bool {
	return !t.Expired(now) && !t.Revoked
}

// TokenPair is the shape every issuing flow returns.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	Username     string        `json:"username"`
	Roles        []string      `json:"roles"`
	RefreshTTL   time.Duration `json:"-"`
}
