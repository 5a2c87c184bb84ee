package models

import (
	"encoding/json"
	"time"
)

// User represents a dashboard user.
//
// Password is stored as entered unless the bcrypt password mode is enabled.
// Handlers respond with Public, so the password never leaves the server, but
// it is persisted in the users collection.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	Password  string    `json:"password,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) GetID() string { return u.ID }

// Public returns the user without its password, for API responses.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the API view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInput carries the caller-editable user fields. An empty Password on
// update keeps the stored one.
type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
	IsActive *bool  `json:"isActive"`
}

// Validate checks the fields required for a user record.
func (in UserInput) Validate(creating bool) error {
	if err := Required(
		[2]string{"name", in.Name},
		[2]string{"email", in.Email},
		[2]string{"role", string(in.Role)},
	); err != nil {
		return err
	}
	if !in.Role.Valid() {
		return Invalid("role", "unknown role %q", in.Role)
	}
	if creating && in.Password == "" {
		return Invalid("password", "is required")
	}
	return nil
}

// UnmarshalJSON accepts stored users written before isActive existed and
// treats them as active.
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	aux := struct {
		*alias
		IsActive *bool `json:"isActive"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	u.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}
