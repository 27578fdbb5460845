// Package server is the local companion gateway: a localhost HTTP surface
// over the session manager and booking wizard so local tools and a dev
// dashboard can drive the marketplace without re-implementing the auth flow.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spotdesk/spotdesk-go/booking"
	"github.com/spotdesk/spotdesk-go/internal/config"
	"github.com/spotdesk/spotdesk-go/session"
)

type Server struct {
	env     string // Environment (e.g. "DEV", "production")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	session *session.Manager
	booking booking.BookingAPI
	logger  zerolog.Logger
	metrics *metrics

	wizardLock sync.RWMutex
	wizards    map[string]*booking.Wizard
}

func New(cfg config.Config, sessionManager *session.Manager, bookingAPI booking.BookingAPI) (*Server, error) {
	if sessionManager == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if bookingAPI == nil {
		return nil, errors.New("[Server New] booking API is required")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		config:  cfg,
		session: sessionManager,
		booking: bookingAPI,
		logger:  log.Logger,
		metrics: newMetrics(),
		wizards: make(map[string]*booking.Wizard),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	fmt.Printf("[%-19s] %s\n", displayMethod, path)
}
