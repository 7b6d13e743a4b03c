// Package policy decides who may do what. It sits in front of the services
// and is never consulted by the repositories.
package policy

import (
	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
)

type Capability string

const (
	CreateTables   Capability = "tables:create"
	RemoveTables   Capability = "tables:remove"
	CreateProducts Capability = "products:create"
)

// Authorizer maps capabilities to the roles holding them. Capabilities not
// listed are open to every authenticated role.
type Authorizer struct {
	grants map[Capability]map[models.UserRole]bool
}

func NewAuthorizer() *Authorizer {
	managers := map[models.UserRole]bool{models.RoleAdmin: true, models.RoleManager: true}
	return &Authorizer{grants: map[Capability]map[models.UserRole]bool{
		CreateTables:   managers,
		RemoveTables:   managers,
		CreateProducts: managers,
	}}
}

func (a *Authorizer) Can(role models.UserRole, capability Capability) bool {
	if _, ok := models.ParseUserRole(string(role)); !ok {
		return false
	}
	roles, restricted := a.grants[capability]
	if !restricted {
		return true
	}
	return roles[role]
}

// Authorize returns a Forbidden error when role lacks capability.
func (a *Authorizer) Authorize(role models.UserRole, capability Capability) error {
	if a.Can(role, capability) {
		return nil
	}
	return apperrors.NewForbidden("role %q may not %s", role, capability)
}
