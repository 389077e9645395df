package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-portal/internal/domain"
	"github.com/spec-kit/intranet-portal/internal/observability"
)

// Decision is the outcome of the access guard for one navigation.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionRedirect
	DecisionAdmit
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionAdmit:
		return "admit"
	default:
		return "unknown"
	}
}

// Decide maps a session status to an admission decision. While the session
// is initializing no decision is made.
func Decide(status domain.SessionStatus) Decision {
	switch status {
	case domain.SessionAuthenticated:
		return DecisionAdmit
	case domain.SessionInitializing:
		return DecisionLoading
	default:
		return DecisionRedirect
	}
}

// SessionReader exposes the current session snapshot.
type SessionReader interface {
	State() domain.SessionState
}

// Guard gates protected screens on the session status. It keeps no state of
// its own and re-reads the session on every request.
type Guard struct {
	sessions  SessionReader
	loginPath string
	metrics   *observability.Metrics
}

// NewGuard constructs a guard redirecting unauthenticated callers to loginPath.
func NewGuard(sessions SessionReader, loginPath string, metrics *observability.Metrics) *Guard {
	if loginPath == "" {
		loginPath = "/"
	}
	return &Guard{sessions: sessions, loginPath: loginPath, metrics: metrics}
}

// RequireSession admits authenticated sessions, redirects unauthenticated
// ones and renders a loading placeholder while initializing.
func (g *Guard) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := Decide(g.sessions.State().Status)
		g.metrics.RecordGuardDecision(decision.String())

		switch decision {
		case DecisionAdmit:
			return c.Next()
		case DecisionLoading:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "loading",
				"message": "Carregando...",
			})
		default:
			return c.Redirect(g.loginPath, http.StatusFound)
		}
	}
}

// RequireCapability renders a denial unless the session role grants
// capability. It must run after RequireSession.
func (g *Guard) RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CapabilitiesFor(g.sessions.State().Role()).Allows(capability) {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "Acesso negado"})
		}
		return c.Next()
	}
}
