package domain

import "time"

// Role enumerates the closed set of principal kinds. Authorization decisions
// go through the capability methods below rather than comparing role strings
// at call sites.
type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleAgent      Role = "AGENT"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Valid reports whether the role is a member of the enumerated set.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAgent, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanFileTickets reports whether the principal may open tickets.
func (r Role) CanFileTickets() bool {
	return r == RoleClient
}

// CanBeAssigned reports whether the principal is eligible for ticket assignment.
func (r Role) CanBeAssigned() bool {
	return r == RoleAgent
}

// CanViewGlobalStats reports whether the principal may read admin reporting.
func (r Role) CanViewGlobalStats() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanManageRole reports whether the principal may create or delete accounts
// holding the target role. Superadmins manage everyone; admins manage agents
// and clients but never another admin.
func (r Role) CanManageRole(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return target == RoleAgent || target == RoleClient
	}
	return false
}

// User is the single account model: clients who file tickets, agents who
// work them, and administrators.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
