// Package models defines the core data structures used throughout the application.
package models

import (
	"context"
	"time"
)

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserKey).(*User)
	return user, ok
}

// User represents a registered account.
type User struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	PasswordHash     string   `json:"password,omitempty"`
	Collections      []string `json:"collections"`
	RegistrationDate string   `json:"registrationDate"`
}

// Sanitized returns a copy of the user with the password hash cleared.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// Collection is a user-owned set of items sharing a custom field schema.
type Collection struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	CustomFields map[string]string `json:"customFields"`
	Items        []Item            `json:"items"`
}

// Item lives inside exactly one collection and has no independent lifecycle.
type Item struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Tags              []string          `json:"tags"`
	CustomFieldValues map[string]string `json:"customFieldValues"`
	Comments          []Comment         `json:"comments"`
}

// Comment is an append-only note on an item. Clients send free-form
// fields ("text" by convention, but anything goes) and every one of them
// is stored as-is; the server injects "user" and "createdAt" on top at
// append time.
type Comment map[string]any

// Text returns the conventional "text" field, or "" when absent.
func (c Comment) Text() string {
	text, _ := c["text"].(string)
	return text
}

// Now returns the current time formatted the way timestamps are persisted.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserKey is the context key for the authenticated user.
	UserKey ContextKey = "user"
)
