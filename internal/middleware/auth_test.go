package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianxmm/tv-signage-system/internal/config"
)

func newGateRouter(cfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/publicar", NewGate(cfg).RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func gateRequest(r *gin.Engine, configure func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/publicar", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthBasic(t *testing.T) {
	cfg := config.AuthConfig{Username: "admin", Password: "secreto"}
	r := newGateRouter(cfg)

	tests := []struct {
		name       string
		configure  func(*http.Request)
		wantStatus int
	}{
		{
			name:       "no credentials",
			configure:  nil,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong password",
			configure:  func(req *http.Request) { req.SetBasicAuth("admin", "nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong user",
			configure:  func(req *http.Request) { req.SetBasicAuth("root", "secreto") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid credentials",
			configure:  func(req *http.Request) { req.SetBasicAuth("admin", "secreto") },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gateRequest(r, tt.configure)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := rec.Header().Get("WWW-Authenticate"); got == "" {
					t.Error("missing WWW-Authenticate challenge on deny")
				}
			}
		})
	}
}

func TestRequireAuthDeniesAllWhenNoPasswordConfigured(t *testing.T) {
	r := newGateRouter(config.AuthConfig{Username: "admin", Password: ""})

	rec := gateRequest(r, func(req *http.Request) { req.SetBasicAuth("admin", "") })
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when no password is configured", rec.Code)
	}
}

func TestRequireAuthBearerToken(t *testing.T) {
	cfg := config.AuthConfig{
		Username:  "admin",
		Password:  "secreto",
		JWTSecret: "test-signing-key",
		TokenTTL:  time.Hour,
	}
	gate := NewGate(cfg)
	r := newGateRouter(cfg)

	token, expires, err := gate.IssueToken("admin", "secreto")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if token == "" || !expires.After(time.Now()) {
		t.Fatalf("IssueToken returned token=%q expires=%v", token, expires)
	}

	rec := gateRequest(r, func(req *http.Request) {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	})
	if rec.Code != http.StatusOK {
		t.Errorf("valid bearer status = %d, want 200", rec.Code)
	}

	rec = gateRequest(r, func(req *http.Request) {
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.token")
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage bearer status = %d, want 401", rec.Code)
	}

	// Token signed with a different key must be rejected.
	otherGate := NewGate(config.AuthConfig{
		Username: "admin", Password: "secreto",
		JWTSecret: "other-key", TokenTTL: time.Hour,
	})
	foreign, _, err := otherGate.IssueToken("admin", "secreto")
	if err != nil {
		t.Fatalf("IssueToken(other key): %v", err)
	}
	rec = gateRequest(r, func(req *http.Request) {
		req.Header.Set(AuthHeaderKey, BearerPrefix+foreign)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign-key bearer status = %d, want 401", rec.Code)
	}
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	gate := NewGate(config.AuthConfig{
		Username: "admin", Password: "secreto",
		JWTSecret: "key", TokenTTL: time.Hour,
	})

	if _, _, err := gate.IssueToken("admin", "wrong"); err == nil {
		t.Error("IssueToken with wrong password succeeded")
	}
}

func TestIssueTokenRequiresConfiguredSecret(t *testing.T) {
	gate := NewGate(config.AuthConfig{Username: "admin", Password: "secreto"})

	if _, _, err := gate.IssueToken("admin", "secreto"); err == nil {
		t.Error("IssueToken without a signing secret succeeded")
	}
}
