package domain

import (
	"context"
	"time"
)

type Status string

const (
	StatusOnline  Status = "Online"
	StatusOffline Status = "Offline"
)

type User struct {
	ID        string `bson:"_id" json:"id"`
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Avatar    string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	Email     string `bson:"email" json:"email"`

	Password             string    `bson:"password,omitempty" json:"-"`
	Verified             bool      `bson:"verified" json:"verified"`
	OTP                  string    `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt         time.Time `bson:"otp_expires_at,omitempty" json:"-"`
	PasswordResetToken   string    `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpires time.Time `bson:"password_reset_expires,omitempty" json:"-"`

	Status        Status   `bson:"status" json:"status"`
	Friends       []string `bson:"friends" json:"friends,omitempty"`
	Conversations []string `bson:"conversations" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"-"`
	UpdatedAt time.Time `bson:"updated_at" json:"-"`
}

// Profile is the projection shared with other users: never credentials.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Status    Status `json:"status,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Status:    u.Status,
	}
}

func (u *User) HasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

func (u *User) HasConversation(id string) bool {
	for _, c := range u.Conversations {
		if c == id {
			return true
		}
	}
	return false
}

type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	FindVerified(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*User, error)
	SetStatus(ctx context.Context, id string, status Status) error
	AddFriend(ctx context.Context, id, friendID string) error
	AddConversation(ctx context.Context, id, conversationID string) error
	RemoveConversation(ctx context.Context, id, conversationID string) error
}
