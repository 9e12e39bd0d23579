package models

import "time"

// User is the signed-in account kept in the session slot
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Name returns the best display name for the user
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return "@" + u.Username
}

// Validate checks the fields required to open a session.
func (u *User) Validate() error {
	var errs []FieldError
	if u.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "required"})
	}
	if u.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "required"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
