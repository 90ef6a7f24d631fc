package model

import "time"

type User struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Username         string    `json:"username" bson:"username"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     string    `json:"-" bson:"password_hash"`
	ScheduleRevision int64     `json:"-" bson:"schedule_revision"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// Token is the opaque bearer credential issued to a user. One per user.
type Token struct {
	Key       string    `json:"token" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   string
	Username string
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisteredUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
