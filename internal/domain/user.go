package domain

import (
	"context"
	"time"
)

// User is a platform profile. EmployeeID links platform usage to clinical records.
type User struct {
	UID         string     `json:"uid"`
	EmployeeID  string     `json:"employeeId"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func (u *User) StampServerTime(t time.Time) {
	u.CreatedAt = t
}

// EmployeeIDOrUnknown returns the snapshot value written onto events and attempts.
func (u *User) EmployeeIDOrUnknown() string {
	if u == nil || u.EmployeeID == "" {
		return UnknownEmployeeID
	}
	return u.EmployeeID
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.UID == "" {
		errs = append(errs, NewMissingFieldError("uid"))
	}
	if u.Email == "" {
		errs = append(errs, NewMissingFieldError("email"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (u *User) ToDocument() Document {
	return Document{
		"uid":         u.UID,
		"employeeId":  u.EmployeeID,
		"email":       u.Email,
		"role":        u.Role,
		"createdAt":   u.CreatedAt,
		"lastLoginAt": optionalTime(u.LastLoginAt),
	}
}

// UserRepository defines the interface for user profile reads.
// GetUser returns (nil, nil) when the user does not exist.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}
