package users

import "unicode"

// RoleType is the dashboard role carried on the user profile
type RoleType string

const (
	RoleAdmin  RoleType = "admin"  // Holds every permission
	RoleStaff  RoleType = "staff"  // Holds only the permissions listed on the staff profile
	RoleMember RoleType = "member" // Gym member, holds no dashboard permissions
)

// StaffProfile is the nested staff record returned for staff users.
// A nil Permissions list means the staff user holds no permissions.
type StaffProfile struct {
	Permissions []string `json:"permissions,omitempty"`
}

// User is the profile returned by the backend on login and OTP verification
// and persisted, as JSON, in the credential store.
type User struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone,omitempty"`
	Role    RoleType      `json:"role"`
	GymName string        `json:"gym_name,omitempty"`
	Country string        `json:"country,omitempty"`
	GymID   string        `json:"gym_id"`
	Staff   *StaffProfile `json:"staff,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

// StaffPermissions returns the literal staff permission list, or nil when there is none.
func (u *User) StaffPermissions() []string {
	if u == nil || u.Staff == nil {
		return nil
	}
	return u.Staff.Permissions
}

// DisplayGymName falls back to a generic name when the profile carries none.
func (u *User) DisplayGymName() string {
	if u == nil || u.GymName == "" {
		return "Fitness Center"
	}
	return u.GymName
}

// Initial is the upper-cased first letter of the user's name, used for the avatar.
func (u *User) Initial() string {
	if u == nil {
		return ""
	}
	for _, r := range u.Name {
		return string(unicode.ToUpper(r))
	}
	return ""
}
