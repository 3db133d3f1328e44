package constants

// Organization permissions
const (
	PermAdminFull     = "event-ticketing.admin.full-permit"
	PermOrganizerFull = "event-ticketing.organizer.full-permit"
	PermGateFull      = "event-ticketing.gate.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	StaffPermissions = []string{
		PermAdminFull,
		PermOrganizerFull,
	}
)
