// Package domain contains core concepts of the messaging system.
// No runtime, network, or UI logic should be added here.
package domain

// UserID is the stable identifier assigned by the user repository.
type UserID int64

// User is the identity a connection presents after authentication.
// Immutable from the core's point of view.
type User struct {
	ID       UserID
	Username string
	Email    string
}

// Summary is the contact-list projection of a user, including the
// live-presence flag computed from the session registry.
type Summary struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Online   bool   `json:"online"`
}
