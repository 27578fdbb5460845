package users

// RoleType represents a user's role within the marketplace
type RoleType string

const (
	RoleConsumer   RoleType = "consumer"    // Books spaces
	RoleBrandOwner RoleType = "brand_owner" // Lists and manages spaces
	RoleStaff      RoleType = "staff"       // Operates spaces on behalf of a brand
)

// Dashboard routes per role. An unrecognised role lands on home.
const (
	RouteHome              = "/"
	RouteLogin             = "/login"
	RouteConsumerDashboard = "/dashboard/consumer"
	RouteBrandDashboard    = "/dashboard/brand"
	RouteStaffDashboard    = "/dashboard/staff"
)

type User struct {
	ID       string   `json:"id,omitempty"`     // Unique identifier for the user
	Email    string   `json:"email,omitempty"`  // User's email address
	Name     string   `json:"name,omitempty"`   // Display name
	Role     RoleType `json:"role,omitempty"`   // One of the closed role set
	Avatar   string   `json:"avatar,omitempty"` // Optional avatar URL
	Phone    string   `json:"phone,omitempty"`  // Optional phone number
	Verified bool     `json:"verified,omitempty"`
	Active   bool     `json:"active,omitempty"`
}

// Known reports whether the role belongs to the closed set.
func (r RoleType) Known() bool {
	switch r {
	case RoleConsumer, RoleBrandOwner, RoleStaff:
		return true
	}
	return false
}

// DashboardRoute returns the dashboard path a user of the given role is sent
// to after login. Unrecognised roles are sent home rather than rejected - the
// backend may introduce roles this client does not know about yet.
func DashboardRoute(role RoleType) string {
	switch role {
	case RoleConsumer:
		return RouteConsumerDashboard
	case RoleBrandOwner:
		return RouteBrandDashboard
	case RoleStaff:
		return RouteStaffDashboard
	default:
		return RouteHome
	}
}

// HasRole reports whether role is contained in allowed. An empty allowed set
// means no role restriction.
func HasRole(role RoleType, allowed []RoleType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
