package model

import "github.com/google/uuid"

// Role is the marketplace role carried by an authenticated user.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is a marketplace account.
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Role           Role      `json:"role" db:"role"`
	PhoneNumber    string    `json:"phoneNumber" db:"phone_number"`
	DefaultAddress string    `json:"defaultAddress" db:"default_address"`
	Location       *Point    `json:"location,omitempty" db:"-"`
}

// Principal identifies the caller of a request. The zero value is an
// anonymous caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// Anonymous is the principal used when no credentials were presented.
var Anonymous = Principal{}

// Authenticated reports whether the principal carries a user identity.
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// IsSeller reports whether the principal is an authenticated seller.
func (p Principal) IsSeller() bool {
	return p.Authenticated() && p.Role == RoleSeller
}

// IsAdmin reports whether the principal is an authenticated administrator.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}

// ProfileRequest replaces the caller's contact details and store location.
// SellerLat and SellerLng are kept raw; a malformed, out-of-range or
// half-present pair clears the stored location.
type ProfileRequest struct {
	PhoneNumber    string        `json:"phoneNumber"`
	DefaultAddress string        `json:"defaultAddress"`
	SellerLat      RawCoordinate `json:"sellerLat,omitempty"`
	SellerLng      RawCoordinate `json:"sellerLng,omitempty"`
}
