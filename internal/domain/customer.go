package domain

import "time"

// Customer is a registered customer account.
type Customer struct {
	ID           int64     `json:"id_cliente"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"fecha_registro"`
}

// Session is the authenticated session returned by registro and login.
type Session struct {
	Token    string   `json:"token"`
	Customer Customer `json:"cliente"`
}
