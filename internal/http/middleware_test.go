package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gameplan-scheduler/internal/application"
)

type tokenValidatorFunc func(ctx context.Context, token string) (application.Principal, error)

func (f tokenValidatorFunc) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return f(ctx, token)
}

func TestRequireSessionAttachesPrincipal(t *testing.T) {
	validator := tokenValidatorFunc(func(_ context.Context, token string) (application.Principal, error) {
		require.Equal(t, "abc123", token)
		return application.Principal{UserID: "user-1"}, nil
	})

	var seen application.Principal
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestRequireSessionReadsCookie(t *testing.T) {
	validator := tokenValidatorFunc(func(_ context.Context, token string) (application.Principal, error) {
		require.Equal(t, "cookie-token", token)
		return application.Principal{UserID: "user-2"}, nil
	})

	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	validator := tokenValidatorFunc(func(_ context.Context, _ string) (application.Principal, error) {
		t.Fatal("validator must not be called without a token")
		return application.Principal{}, nil
	})

	called := false
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireSessionMapsSessionErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "unauthorized", err: application.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "expired", err: application.ErrSessionExpired, want: http.StatusUnauthorized},
		{name: "revoked", err: application.ErrSessionRevoked, want: http.StatusUnauthorized},
		{name: "not found", err: application.ErrNotFound, want: http.StatusUnauthorized},
		{name: "store failure", err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validator := tokenValidatorFunc(func(_ context.Context, _ string) (application.Principal, error) {
				return application.Principal{}, tc.err
			})

			handler := RequireSession(validator, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler must not run on validation failure")
			}))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestExtractTokenPrefersAuthorizationHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "cookie-token"})

	assert.Equal(t, "header-token", extractTokenFromRequest(req))
}

func TestExtractTokenIgnoresOtherSchemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.Equal(t, "", extractTokenFromRequest(req))
}
