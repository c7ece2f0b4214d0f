// internal/domain/user/entity.go
package user

import (
	"encoding/json"
	"strings"
)

const (
	defaultName = "User"
	defaultRole = "user"
)

// User is the signed-in customer's profile as the backend reports it
type User struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
	Address   string `json:"address"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
	Verified  bool   `json:"isVerified"`
}

// profile is the loose shape the profile and verify endpoints return.
// Older backend builds use localized field names and "id" instead of "_id".
type profile struct {
	ID              string `json:"_id"`
	AltID           string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Telefono        string `json:"telefono"`
	BirthDate       string `json:"birthDate"`
	FechaNacimiento string `json:"fechaNacimiento"`
	Address         string `json:"address"`
	Direccion       string `json:"direccion"`
	Avatar          string `json:"avatar"`
	Role            string `json:"role"`
	Verified        bool   `json:"isVerified"`
}

// UnmarshalJSON accepts either field naming and fills display defaults
func (u *User) UnmarshalJSON(data []byte) error {
	var p profile
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = User{
		ID:        firstNonEmpty(p.ID, p.AltID),
		Name:      firstNonEmpty(p.Name, defaultName),
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:     firstNonEmpty(p.Telefono, p.Phone),
		BirthDate: firstNonEmpty(p.FechaNacimiento, p.BirthDate),
		Address:   firstNonEmpty(p.Direccion, p.Address),
		Avatar:    p.Avatar,
		Role:      firstNonEmpty(p.Role, defaultRole),
		Verified:  p.Verified,
	}
	return nil
}

// basicUser is used when the profile cannot be fetched right after login
func basicUser(email string) *User {
	return &User{
		Name:  defaultName,
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  defaultRole,
	}
}

// GetDisplayName returns the name, or the email when the name is the default
func (u *User) GetDisplayName() string {
	if u.Name != "" && u.Name != defaultName {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return defaultName
}

// ProfileResponse wraps the profile endpoint payload.
// Some backend builds nest the user under "user", others return it bare.
type ProfileResponse struct {
	User *User
}

func (r *ProfileResponse) UnmarshalJSON(data []byte) error {
	var nested struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	raw := []byte(nested.User)
	if len(raw) == 0 || string(raw) == "null" {
		raw = data
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return err
	}
	r.User = &u
	return nil
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PasswordResetRequest asks the backend to email a reset link
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// NewPasswordRequest carries the password chosen on the reset page
type NewPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// AuthResponse represents the login, register and verify payloads
type AuthResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
