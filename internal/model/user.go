package model

import "time"

// User is the only persisted entity. IsVerified is stored but no operation sets it.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	Created      time.Time `db:"created_at" json:"created_at"`
}
