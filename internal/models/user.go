package models

import "time"

// User is the internal profile row backing an externally-issued identity.
// Rows are created on first sign-in and patched on later sign-ins; they are
// never deleted.
type User struct {
	ID        int64     `db:"id" json:"id"`
	ClerkID   string    `db:"clerk_id" json:"clerk_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	ImageURL  *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PublicProfile is the subset of a user shared with other members.
type PublicProfile struct {
	ClerkID  string  `json:"clerk_id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Public strips a user down to the fields exposed in conversation listings.
func (u User) Public() PublicProfile {
	return PublicProfile{ClerkID: u.ClerkID, Name: u.Name, ImageURL: u.ImageURL}
}
