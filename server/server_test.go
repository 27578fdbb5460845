package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spotdesk/spotdesk-go/backend"
	"github.com/spotdesk/spotdesk-go/server"
	"github.com/spotdesk/spotdesk-go/session"
	"github.com/spotdesk/spotdesk-go/session/storage/storagefakes"
	"github.com/spotdesk/spotdesk-go/users"
)

const (
	testUserEmail    = "test@example.com"
	testUserPassword = "password123"
	testAccessToken  = "tok"
	testRefreshToken = "rtok"
	testSpaceID      = "space-42"
	testDate         = "2026-09-01"
)

// testConfig satisfies config.Config without touching the environment.
type testConfig struct {
	backendURL string
}

func (c testConfig) GetBackendBaseURL() string     { return c.backendURL }
func (c testConfig) GetHTTPTimeout() time.Duration { return 2 * time.Second }
func (c testConfig) GetCredentialsPath() string    { return "" }
func (c testConfig) GetCredentialsSecret() string  { return "" }
func (c testConfig) GetPort() string               { return ":0" }
func (c testConfig) GetAppName() string            { return "Spotdesk" }
func (c testConfig) GetEnv() string                { return "TEST" }

type gatewayFixture struct {
	store   *storagefakes.FakeTokenStore
	manager *session.Manager
	gateway *server.Server
}

// setupGatewayFixture wires the real session manager and backend client
// against a stub marketplace API, the way the serve command does.
func setupGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	stub := newStubBackend(t)
	client := backend.NewClient(stub.URL, 2*time.Second)
	store := storagefakes.NewFakeTokenStore()

	manager, err := session.NewManager(client, store)
	require.NoError(t, err)
	manager.Initialize(context.Background())

	gateway, err := server.New(testConfig{backendURL: stub.URL}, manager, client)
	require.NoError(t, err)

	return &gatewayFixture{store: store, manager: manager, gateway: gateway}
}

// newStubBackend serves just enough of the marketplace API for the gateway
// flows under test.
func newStubBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Email != testUserEmail || creds.Password != testUserPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":         users.User{ID: "1", Email: testUserEmail, Name: "Test User", Role: users.RoleConsumer},
			"accessToken":  testAccessToken,
			"refreshToken": testRefreshToken,
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(users.User{ID: "1", Email: testUserEmail, Role: users.RoleConsumer})
	})
	mux.HandleFunc("GET /spaces/{id}/availability", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]backend.Slot{{
			SpaceID:   r.PathValue("id"),
			Date:      r.URL.Query().Get("date"),
			Start:     "09:00",
			End:       "11:00",
			Available: true,
		}})
	})
	mux.HandleFunc("POST /bookings/quote", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(backend.RateCard{HourlyRateCents: 5000, ServiceFeePct: 10})
	})
	mux.HandleFunc("POST /bookings", func(w http.ResponseWriter, r *http.Request) {
		var req backend.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(backend.Booking{ID: "bk-1", SpaceID: req.SpaceID, Status: "confirmed", TotalCents: req.TotalCents})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *gatewayFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.gateway.ServeHTTP(rec, req)
	return rec
}

func (f *gatewayFixture) login(t *testing.T) {
	t.Helper()

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin,
		`{"email":"`+testUserEmail+`","password":"`+testUserPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLoginEndpoint(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin,
		`{"email":"`+testUserEmail+`","password":"`+testUserPassword+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, users.RouteConsumerDashboard, body["redirect"])
	user := body["user"].(map[string]any)
	require.Equal(t, testUserEmail, user["email"])

	pair, has := f.store.Stored()
	require.True(t, has)
	require.Equal(t, testAccessToken, pair.AccessToken)
	require.Equal(t, testRefreshToken, pair.RefreshToken)
}

func TestLoginEndpointPassesBackendStatusThrough(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin,
		`{"email":"`+testUserEmail+`","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid credentials", decodeBody(t, rec)["error"])
}

func TestSessionEndpoint(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteSession, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["isAuthenticated"])
	require.Equal(t, false, body["isLoading"])

	f.login(t)

	rec = f.do(t, http.MethodGet, server.RouteSession, "")
	body = decodeBody(t, rec)
	require.Equal(t, true, body["isAuthenticated"])
}

func TestLogoutEndpointRedirectsHome(t *testing.T) {
	f := setupGatewayFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogout, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteHome, rec.Header().Get("Location"))

	_, has := f.store.Stored()
	require.False(t, has)
}

func TestRefreshEndpointWithoutTokens(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthRefresh, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "no refresh token available")
}

func TestGuardedDashboard(t *testing.T) {
	f := setupGatewayFixture(t)

	// Anonymous: bounced to login.
	rec := f.do(t, http.MethodGet, server.RouteDashboardConsumer, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteLogin, rec.Header().Get("Location"))

	f.login(t)

	// Own dashboard: allowed.
	rec = f.do(t, http.MethodGet, server.RouteDashboardConsumer, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Someone else's dashboard: bounced to own.
	rec = f.do(t, http.MethodGet, server.RouteDashboardStaff, "")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteConsumerDashboard, rec.Header().Get("Location"))
}

func TestBookingWizardFlow(t *testing.T) {
	f := setupGatewayFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteBooking, `{"spaceId":"`+testSpaceID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	wizardRoute := func(suffix string) string {
		return "/booking/" + id + suffix
	}

	rec = f.do(t, http.MethodPost, wizardRoute("/slot"),
		`{"date":"`+testDate+`","start":"09:00","end":"11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, wizardRoute("/details"), `{"guests":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, wizardRoute("/pay"), `{}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, "confirmed", body["step"])
	booked := body["booking"].(map[string]any)
	require.Equal(t, testSpaceID, booked["spaceId"])
	price := body["price"].(map[string]any)
	// 2h at $50/h with a 10% fee.
	require.EqualValues(t, 11000, price["totalCents"])

	rec = f.do(t, http.MethodGet, wizardRoute(""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "confirmed", decodeBody(t, rec)["step"])
}

func TestBookingWizardOutOfOrder(t *testing.T) {
	f := setupGatewayFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteBooking, `{"spaceId":"`+testSpaceID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	rec = f.do(t, http.MethodPost, "/booking/"+id+"/pay", `{}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingWizardUnknownID(t *testing.T) {
	f := setupGatewayFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, "/booking/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingRequiresAuthentication(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodPost, server.RouteBooking, `{"spaceId":"`+testSpaceID+`"}`)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteLogin, rec.Header().Get("Location"))
}

func TestHealthz(t *testing.T) {
	f := setupGatewayFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteHealthz, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupGatewayFixture(t)
	f.login(t)

	rec := f.do(t, http.MethodGet, server.RouteMetrics, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "spotdesk_auth_operations_total")
}
