package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleAdvisor RoleType = "advisor"
	RoleStudent RoleType = "student"
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleAdvisor, RoleStudent:
		return true
	}
	return false
}

// In reports whether r is contained in roles.
func (r RoleType) In(roles ...RoleType) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}
