package domain

// Role is the coarse permission class supplied by the auth layer.
type Role string

const (
	RoleBusiness Role = "BUSINESS"
	RoleDriver   Role = "DRIVER"
	RoleAdmin    Role = "ADMIN"
)

// Actor identifies who is performing an operation. The engine does not own
// identities; it only checks capabilities against the trip.
type Actor struct {
	ID   string
	Role Role
}
