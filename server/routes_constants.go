package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Auth routes, mirroring the backend surface
	RouteAuthLogin          = "/auth/login"
	RouteAuthRegister       = "/auth/register"
	RouteAuthLogout         = "/auth/logout"
	RouteAuthRefresh        = "/auth/refresh"
	RouteAuthProfile        = "/auth/profile"
	RouteAuthForgotPassword = "/auth/forgot-password"
	RouteAuthResetPassword  = "/auth/reset-password"

	// Session routes
	RouteSession = "/session"

	// Dashboard routes (role-guarded)
	RouteDashboardConsumer = "/dashboard/consumer"
	RouteDashboardBrand    = "/dashboard/brand"
	RouteDashboardStaff    = "/dashboard/staff"

	// Booking wizard routes
	RouteBooking        = "/booking"
	RouteBookingByID    = "/booking/{id}"
	RouteBookingSlot    = "/booking/{id}/slot"
	RouteBookingDetails = "/booking/{id}/details"
	RouteBookingPay     = "/booking/{id}/pay"
	RouteBookingAbandon = "/booking/{id}/abandon"

	// Operational routes
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)
