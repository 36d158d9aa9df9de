// Package user defines the signed-in identity and the user's preferences
package user

import (
	"errors"
	"strings"
)

// Identity is the user record returned by the hosted auth provider
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Credentials is what the sign-in and sign-up forms submit
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Normalize trims surrounding whitespace from the email
func (c Credentials) Normalize() Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

// Fallback failure reasons used when the provider gives none
const (
	ReasonSignIn  = "An error occurred during sign in"
	ReasonSignUp  = "An error occurred during sign up"
	ReasonSignOut = "An error occurred during sign out"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrSessionRevoked     = errors.New("session has been signed out")
	ErrUnknownGrocery     = errors.New("unknown grocery partner")
)
