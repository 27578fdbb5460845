package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spotdesk/spotdesk-go/backend"
	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
)

const (
	testAccessToken  = "tok"
	testRefreshToken = "rtok"
	testTimeout      = 2 * time.Second
)

type clientFixture struct {
	handler http.HandlerFunc
	server  *httptest.Server
	client  *backend.Client
}

func setupClientFixture(t *testing.T) *clientFixture {
	t.Helper()

	f := &clientFixture{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.handler == nil {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	f.client = backend.NewClient(f.server.URL, testTimeout)
	return f
}

func writeResponse(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestLoginDecodesTokenPair(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var creds backend.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "test@example.com", creds.Email)
		require.Equal(t, "password123", creds.Password)

		writeResponse(t, w, http.StatusOK, map[string]any{
			"user":         map[string]any{"id": "1", "email": creds.Email, "name": "Test User", "role": "consumer"},
			"accessToken":  testAccessToken,
			"refreshToken": testRefreshToken,
		})
	}

	resp, err := f.client.Login(context.Background(), backend.Credentials{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, testAccessToken, resp.AccessToken)
	require.Equal(t, testRefreshToken, resp.RefreshToken)
	require.Equal(t, "1", resp.User.ID)
}

func TestLoginRejectsIncompleteTokenPair(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, http.StatusOK, map[string]any{
			"user":        map[string]any{"id": "1"},
			"accessToken": testAccessToken,
		})
	}

	_, err := f.client.Login(context.Background(), backend.Credentials{Email: "test@example.com", Password: "password123"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "incomplete token pair")
}

func TestServerMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body any
		want string
	}{
		{"message field", map[string]string{"message": "invalid credentials"}, "invalid credentials"},
		{"error field", map[string]string{"error": "account locked"}, "account locked"},
		{"no recognised field", map[string]string{"detail": "nope"}, "request failed with status 401"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupClientFixture(t)
			f.handler = func(w http.ResponseWriter, r *http.Request) {
				writeResponse(t, w, http.StatusUnauthorized, tc.body)
			}

			_, err := f.client.Login(context.Background(), backend.Credentials{Email: "test@example.com", Password: "bad"})
			require.Error(t, err)

			var apiErr *backend.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, http.StatusUnauthorized, apiErr.Status)
			require.Equal(t, tc.want, apiErr.Message)
			require.True(t, backend.IsUnauthorized(err))
		})
	}
}

func TestProfileSendsBearerToken(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/auth/profile", r.URL.Path)
		require.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
		writeResponse(t, w, http.StatusOK, map[string]any{"id": "1", "email": "test@example.com", "role": "consumer"})
	}

	user, err := f.client.Profile(context.Background(), testAccessToken)
	require.NoError(t, err)
	require.Equal(t, "1", user.ID)
}

func TestProfileAcceptsUserEnvelope(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": "1", "email": "test@example.com", "role": "consumer"},
		})
	}

	user, err := f.client.Profile(context.Background(), testAccessToken)
	require.NoError(t, err)
	require.Equal(t, "1", user.ID)
	require.Equal(t, "test@example.com", user.Email)
}

func TestRefreshWithAndWithoutRotation(t *testing.T) {
	t.Run("rotated", func(t *testing.T) {
		f := setupClientFixture(t)
		f.handler = func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, testRefreshToken, body["refreshToken"])
			writeResponse(t, w, http.StatusOK, map[string]string{"accessToken": "tok2", "refreshToken": "rtok2"})
		}

		resp, err := f.client.Refresh(context.Background(), testRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "tok2", resp.AccessToken)
		require.NotNil(t, resp.RefreshToken)
		require.Equal(t, "rtok2", *resp.RefreshToken)
	})

	t.Run("not rotated", func(t *testing.T) {
		f := setupClientFixture(t)
		f.handler = func(w http.ResponseWriter, r *http.Request) {
			writeResponse(t, w, http.StatusOK, map[string]string{"accessToken": "tok2"})
		}

		resp, err := f.client.Refresh(context.Background(), testRefreshToken)
		require.NoError(t, err)
		require.Equal(t, "tok2", resp.AccessToken)
		require.Nil(t, resp.RefreshToken)
	})
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	f := setupClientFixture(t)
	release := make(chan struct{})
	defer close(release)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}

	client := backend.NewClient(f.server.URL, 50*time.Millisecond)
	_, err := client.Profile(context.Background(), testAccessToken)
	require.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestUnreachableBackendMapsToErrNetwork(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listening any more

	client := backend.NewClient(server.URL, testTimeout)
	_, err := client.Profile(context.Background(), testAccessToken)
	require.ErrorIs(t, err, apperrors.ErrNetwork)
}

func TestLogoutPostsRefreshToken(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		require.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, testRefreshToken, body["refreshToken"])
		w.WriteHeader(http.StatusNoContent)
	}

	require.NoError(t, f.client.Logout(context.Background(), testAccessToken, testRefreshToken))
}

func TestForgotPasswordReturnsMessage(t *testing.T) {
	f := setupClientFixture(t)
	f.handler = func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/forgot-password", r.URL.Path)
		writeResponse(t, w, http.StatusOK, map[string]string{"message": "reset email sent"})
	}

	msg, err := f.client.ForgotPassword(context.Background(), "test@example.com")
	require.NoError(t, err)
	require.Equal(t, "reset email sent", msg)
}
