// Package authz holds the access rules shared by the handlers.
package authz

import "github.com/harentsoaR/hospital-staff-api/internal/models"

// Principal is the authenticated caller, taken from the session token.
type Principal struct {
	ID    string
	Email string
	Role  string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanModify reports whether the requester may change a record owned by
// ownerID: admins may change anything, everyone else only their own record.
func CanModify(requesterRole, requesterID, ownerID string) bool {
	if requesterRole == models.RoleAdmin {
		return true
	}
	return requesterID != "" && requesterID == ownerID
}

// CanView reports whether a doctor record with the given status is visible to
// the requester. Unapproved doctors are only visible to admins and themselves.
func CanView(requesterRole, requesterID, ownerID, status string) bool {
	return status == models.StatusApproved || CanModify(requesterRole, requesterID, ownerID)
}

// HasRole reports whether role is one of allowed.
func HasRole(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
