package domain

import (
	"strings"
	"time"
)

// Identity is what the external auth platform asserts about a request.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Image   string
}

// User is the local account linked to an external identity.
type User struct {
	ID          string
	AuthSubject string
	Email       string
	Name        string
	Image       string
	CreatedAt   time.Time
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Valid reports whether the identity can be linked to an account.
func (i Identity) Valid() bool {
	return strings.TrimSpace(i.Subject) != "" || NormalizeEmail(i.Email) != ""
}

// Merge returns u refreshed with the values i asserts. Fields the identity
// leaves empty keep their stored value, so a provider that sends no email
// cannot unlink the account from its email.
func (u User) Merge(i Identity) User {
	if subject := strings.TrimSpace(i.Subject); subject != "" {
		u.AuthSubject = subject
	}
	if email := NormalizeEmail(i.Email); email != "" {
		u.Email = email
	}
	if i.Name != "" {
		u.Name = i.Name
	}
	if i.Image != "" {
		u.Image = i.Image
	}
	return u
}
