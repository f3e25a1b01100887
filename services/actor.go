package services

type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleSystem   Role = "system"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleManager || r == RoleSystem
}

// Actor is the verified identity behind an operation. HotelID scopes a manager
// to one hotel; zero means every hotel.
type Actor struct {
	UserID  uint
	Role    Role
	HotelID uint
}

// SystemActor is used by the gateway path and the expiry sweep.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// ManagesHotel reports whether a manager actor may act on the given hotel.
func (a Actor) ManagesHotel(hotelID uint) bool {
	return a.Role == RoleManager && (a.HotelID == 0 || a.HotelID == hotelID)
}
