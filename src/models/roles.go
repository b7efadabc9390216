package models

import "fmt"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleUser, RoleAdmin:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// RoleRecord is a row of the roles table.
type RoleRecord struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

// RoleRegistry maps role ids from the roles table to Role values. It is built
// once at startup.
type RoleRegistry struct {
	byID map[int]Role
}

func NewRoleRegistry(records []RoleRecord) (*RoleRegistry, error) {
	registry := &RoleRegistry{byID: make(map[int]Role, len(records))}
	for _, r := range records {
		role, err := ParseRole(r.Name)
		if err != nil {
			return nil, err
		}
		registry.byID[r.ID] = role
	}
	return registry, nil
}

// Resolve returns the role for id. Unknown ids resolve to RoleUser.
func (r *RoleRegistry) Resolve(id int) Role {
	if role, ok := r.byID[id]; ok {
		return role
	}
	return RoleUser
}
