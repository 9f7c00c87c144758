package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/naviai/naviai/internal/api/ctxkeys"
	pkgauth "github.com/naviai/naviai/pkg/auth"
)

func TestMain(m *testing.M) {
	// GenerateJWT/ParseJWT read JWT_SECRET and panic when it is unset.
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// nextRecorder captures whether the wrapped handler ran and with which user.
type nextRecorder struct {
	called bool
	userID string
}

func (n *nextRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.called = true
		n.userID, _ = r.Context().Value(ctxkeys.UserID).(string)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := pkgauth.GenerateJWT("user-42")
	if err != nil {
		t.Fatalf("GenerateJWT error = %v", err)
	}

	next := &nextRecorder{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(next.handler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200. body: %s", rr.Code, rr.Body.String())
	}
	if !next.called {
		t.Fatal("next handler not called for a valid token")
	}
	if next.userID != "user-42" {
		t.Errorf("injected user_id = %q; want user-42", next.userID)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer   "},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := &nextRecorder{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(next.handler()).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d; want 401", rr.Code)
			}
			if next.called {
				t.Error("next handler ran despite rejected auth")
			}
		})
	}
}
