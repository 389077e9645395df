package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/domain"
	"github.com/spec-kit/intranet-portal/internal/observability"
)

type staticSession struct{ state domain.SessionState }

func (s staticSession) State() domain.SessionState { return s.state }

func authenticatedAs(role domain.Role) domain.SessionState {
	return domain.SessionState{
		Status:     domain.SessionAuthenticated,
		Credential: &domain.Credential{Token: "t1", User: domain.UserRecord{ID: 1, Nome: "Ana", Role: role}},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		status domain.SessionStatus
		want   Decision
	}{
		{domain.SessionInitializing, DecisionLoading},
		{domain.SessionUnauthenticated, DecisionRedirect},
		{domain.SessionAuthenticated, DecisionAdmit},
		{domain.SessionStatus(42), DecisionRedirect},
	}
	for _, tt := range tests {
		if got := Decide(tt.status); got != tt.want {
			t.Fatalf("Decide(%s) = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func newGuardedApp(state domain.SessionState, metrics *observability.Metrics) *fiber.App {
	guard := NewGuard(staticSession{state: state}, "/", metrics)
	app := fiber.New()
	app.Get("/dashboard", guard.RequireSession(), func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})
	app.Get("/users", guard.RequireSession(), guard.RequireCapability(CapabilityManageUsers), func(c *fiber.Ctx) error {
		return c.SendString("users")
	})
	return app
}

func TestRequireSessionStaging(t *testing.T) {
	tests := []struct {
		name       string
		state      domain.SessionState
		wantStatus int
		wantLoc    string
	}{
		{"initializing renders placeholder", domain.SessionState{Status: domain.SessionInitializing}, http.StatusServiceUnavailable, ""},
		{"unauthenticated redirects", domain.SessionState{Status: domain.SessionUnauthenticated}, http.StatusFound, "/"},
		{"authenticated admits", authenticatedAs(domain.RoleUsuarioComum), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetrics()
			app := newGuardedApp(tt.state, metrics)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if loc := resp.Header.Get("Location"); loc != tt.wantLoc {
				t.Fatalf("Location = %q, want %q", loc, tt.wantLoc)
			}
			if tt.state.Status == domain.SessionInitializing && resp.Header.Get("Retry-After") == "" {
				t.Fatal("loading placeholder should carry Retry-After")
			}
			if got := metrics.Snapshot().GuardDecisions[Decide(tt.state.Status).String()]; got != 1 {
				t.Fatalf("guard decision not recorded: %v", metrics.Snapshot().GuardDecisions)
			}
		})
	}
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleSuporte, http.StatusOK},
		{domain.RoleUsuarioComum, http.StatusForbidden},
		{domain.Role("???"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			app := newGuardedApp(authenticatedAs(tt.role), nil)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
