package model

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"` // The bcrypt hash is never exposed in responses.
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
