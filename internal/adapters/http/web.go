package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/adapters/monitoring"
	paymentgw "fitstudio/internal/adapters/payment"
	accountStore "fitstudio/internal/adapters/storage/account"
	appointmentStore "fitstudio/internal/adapters/storage/appointment"
	attendanceStore "fitstudio/internal/adapters/storage/attendance"
	clientStore "fitstudio/internal/adapters/storage/client"
	eventStore "fitstudio/internal/adapters/storage/event"
	leadStore "fitstudio/internal/adapters/storage/lead"
	nutritionStore "fitstudio/internal/adapters/storage/nutrition"
	outboxStore "fitstudio/internal/adapters/storage/outbox"
	paymentStore "fitstudio/internal/adapters/storage/payment"
	recurringStore "fitstudio/internal/adapters/storage/recurring"
	workoutStore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	LeadStore        leadStore.Store
	ClientStore      clientStore.Store
	AppointmentStore appointmentStore.Store
	RecurringStore   recurringStore.Store
	AttendanceStore  attendanceStore.Store
	WorkoutStore     workoutStore.Store
	NutritionStore   nutritionStore.Store
	EventStore       eventStore.Store
	PaymentStore     paymentStore.Store
	OutboxStore      outboxStore.Store
}

// Pinger reports database liveness for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services holds the non-storage collaborators handlers call into.
type Services struct {
	Gateway      paymentgw.Gateway     // nil or disabled means manual event payments
	GatewayKeyID string                // public key handed to checkout
	Drafter      orchestrators.Drafter // nil or disabled makes AI routes answer 503
	Outbox       *orchestrators.OutboxProcessor
	Metrics      *monitoring.Metrics
	DB           Pinger
	Location     *time.Location
	StaffEmail   string
	Production   bool
}

// Options configures the middleware chain.
type Options struct {
	Sessions           middleware.SessionStore
	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimiter        *middleware.RateLimiter // optional; built from the two fields below when nil
	RateLimitPerSecond float64
	RateLimitBurst     int
	SlowRequest        time.Duration
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global services instance (set by NewMux)
var services Services

// Global session store instance
var sessions middleware.SessionStore

// timeNow is a variable for testability.
var timeNow = func() time.Time { return time.Now().UTC() }

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, svc Services, opts Options) http.Handler {
	stores = s
	services = svc
	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewMemorySessionStore()
	}
	middleware.SecureCookies = opts.SecureCookies

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := opts.RateLimiter
	if limiter == nil {
		if opts.RateLimitPerSecond <= 0 {
			opts.RateLimitPerSecond = 10
		}
		if opts.RateLimitBurst <= 0 {
			opts.RateLimitBurst = 30
		}
		limiter = middleware.NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst)
	}
	if len(opts.CSRFKey) == 0 {
		opts.CSRFKey = []byte("fitstudio-dev-only-csrf-key-0032")
	}

	// Recover -> Metrics -> Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.SlowRequest),
		middleware.Metrics(svc.Metrics),
		middleware.Recover,
	)
}

// notifier builds the outbox-backed notifier, or nil when no outbox store is wired.
func notifier() *orchestrators.Notifier {
	if stores == nil || stores.OutboxStore == nil {
		return nil
	}
	return &orchestrators.Notifier{
		Deps: orchestrators.EnqueueNotificationDeps{
			OutboxStore: stores.OutboxStore,
			GenerateID:  generateID,
			Now:         timeNow,
		},
		StaffEmail: services.StaffEmail,
	}
}

func studioLocation() *time.Location {
	if services.Location == nil {
		return time.UTC
	}
	return services.Location
}
