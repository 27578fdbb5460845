package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spotdesk/spotdesk-go/guard"
	"github.com/spotdesk/spotdesk-go/users"
)

func (s *Server) initRoutes() {
	// Auth
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.chain(s.LoginHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, s.chain(s.RegisterHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.chain(s.LogoutHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, s.chain(s.RefreshHandler()))
	s.RegisterRouteFunc("GET "+RouteSession, s.chain(s.SessionHandler()))
	s.RegisterRouteFunc("PUT "+RouteAuthProfile, s.chain(s.UpdateProfileHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthForgotPassword, s.chain(s.ForgotPasswordHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthResetPassword, s.chain(s.ResetPasswordHandler()))

	// Dashboards, each restricted to its role
	s.RegisterRouteFunc("GET "+RouteDashboardConsumer, s.chain(s.DashboardHandler("consumer"), guard.Middleware(s.session, users.RoleConsumer)))
	s.RegisterRouteFunc("GET "+RouteDashboardBrand, s.chain(s.DashboardHandler("brand"), guard.Middleware(s.session, users.RoleBrandOwner)))
	s.RegisterRouteFunc("GET "+RouteDashboardStaff, s.chain(s.DashboardHandler("staff"), guard.Middleware(s.session, users.RoleStaff)))

	// Booking wizard (any authenticated user)
	authed := guard.Middleware(s.session)
	s.RegisterRouteFunc("POST "+RouteBooking, s.chain(s.CreateWizardHandler(), authed))
	s.RegisterRouteFunc("GET "+RouteBookingByID, s.chain(s.WizardStateHandler(), authed))
	s.RegisterRouteFunc("POST "+RouteBookingSlot, s.chain(s.SelectSlotHandler(), authed))
	s.RegisterRouteFunc("POST "+RouteBookingDetails, s.chain(s.EnterDetailsHandler(), authed))
	s.RegisterRouteFunc("POST "+RouteBookingPay, s.chain(s.PayHandler(), authed))
	s.RegisterRouteFunc("POST "+RouteBookingAbandon, s.chain(s.AbandonHandler(), authed))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}

// chain applies the standard middleware plus any route-specific middleware.
func (s *Server) chain(handler http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	all := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
	all = append(all, mw...)
	return ChainMiddleware(handler, all...)
}
