package domain

// Caller is the identity of the account behind one request. It is built from
// the access token by the auth middleware and handed to every service call.
type Caller struct {
	UserID     uint
	Role       string
	FacilityID *uint
}

func (c Caller) IsFamily() bool { return c.Role == RoleFamily }
func (c Caller) IsStaff() bool  { return IsStaff(c.Role) }

// InFacility reports whether the caller is a member of facilityID.
func (c Caller) InFacility(facilityID uint) bool {
	return c.FacilityID != nil && *c.FacilityID == facilityID
}
