package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/baharkarakas/librarium/internal/validate"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleLibrarian Role = "Librarian"
	RoleMember    Role = "Member"
)

// ParseRole accepts the role name in any letter case.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleAdmin, RoleLibrarian, RoleMember} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type UserProfile struct {
	UserID int64 `json:"user"`
	Role   Role  `json:"role"`
}

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PasswordHash string     `json:"-"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	ProfilePhoto *string    `json:"profile_photo"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Profile is nil only for rows written before profiles existed.
	Profile *UserProfile `json:"profile,omitempty"`
}

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

func (u *User) Validate(now time.Time) validate.Errs {
	var errs validate.Errs
	if fe := validate.Required("username", u.Username); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.MaxLen("username", u.Username, 150, ""))
		if !usernameRe.MatchString(u.Username) {
			errs.Addf("username", "enter a valid username: letters, digits and @/./+/-/_ only")
		}
	}
	if fe := validate.Required("email", u.Email); fe != nil {
		errs.Add(fe)
	} else {
		errs.Add(validate.Email("email", u.Email))
	}
	errs.Add(
		validate.MaxLen("first_name", u.FirstName, 150, ""),
		validate.MaxLen("last_name", u.LastName, 150, ""),
	)
	if u.DateOfBirth != nil && u.DateOfBirth.After(now) {
		errs.Addf("date_of_birth", "date of birth cannot be in the future")
	}
	return errs
}

// RoleOf returns the profile role, if the user has a profile.
func (u User) RoleOf() (Role, bool) {
	if u.Profile == nil {
		return "", false
	}
	return u.Profile.Role, true
}

const DateLayout = "2006-01-02"
