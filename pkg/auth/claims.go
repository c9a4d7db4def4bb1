package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims accepted by the ledger. UserID is the
// lender account that owns clients, loans and payments.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// OwnerID returns the owning account identifier as a string.
func (c Claims) OwnerID() string {
	if c.UserID == uuid.Nil {
		return ""
	}
	return c.UserID.String()
}

// Role constants
const (
	RoleLender   = "lender"
	RoleOperator = "operator"
	RoleAuditor  = "auditor"
)
