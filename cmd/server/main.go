package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"fitstudio/internal/adapters/ai"
	emailPkg "fitstudio/internal/adapters/email"
	web "fitstudio/internal/adapters/http"
	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/adapters/monitoring"
	paymentgw "fitstudio/internal/adapters/payment"
	"fitstudio/internal/adapters/storage"
	accountStore "fitstudio/internal/adapters/storage/account"
	appointmentStore "fitstudio/internal/adapters/storage/appointment"
	attendanceStore "fitstudio/internal/adapters/storage/attendance"
	clientStore "fitstudio/internal/adapters/storage/client"
	eventStore "fitstudio/internal/adapters/storage/event"
	leadStore "fitstudio/internal/adapters/storage/lead"
	nutritionStore "fitstudio/internal/adapters/storage/nutrition"
	outboxStorePkg "fitstudio/internal/adapters/storage/outbox"
	paymentStore "fitstudio/internal/adapters/storage/payment"
	recurringStore "fitstudio/internal/adapters/storage/recurring"
	workoutStore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/adapters/whatsapp"
	"fitstudio/internal/application/jobs"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/config"

	"github.com/google/uuid"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	configureLogging(cfg)
	if cfg.Release == "" {
		cfg.Release = version
	}

	flush, err := monitoring.InitSentry(cfg.SentryDSN, cfg.AppEnv, cfg.Release)
	if err != nil {
		log.Fatalf("failed to init sentry: %v", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)

	if err := storage.MigrateDB(sqlDB.DB, storage.DialectFor(cfg.DatabaseURL)); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	schema, _, _ := storage.SchemaVersion(sqlDB.DB)

	metrics := monitoring.NewMetrics()
	db := storage.NewTimedDB(sqlDB, metrics, cfg.SlowQuery)

	stores := &web.Stores{
		AccountStore:     accountStore.NewSQLStore(db),
		LeadStore:        leadStore.NewSQLStore(db),
		ClientStore:      clientStore.NewSQLStore(db),
		AppointmentStore: appointmentStore.NewSQLStore(db),
		RecurringStore:   recurringStore.NewSQLStore(db),
		AttendanceStore:  attendanceStore.NewSQLStore(db),
		WorkoutStore:     workoutStore.NewSQLStore(db),
		NutritionStore:   nutritionStore.NewSQLStore(db),
		EventStore:       eventStore.NewSQLStore(db),
		PaymentStore:     paymentStore.NewSQLStore(db),
		OutboxStore:      outboxStorePkg.NewSQLStore(db),
	}

	generateID := func() string { return uuid.New().String() }
	now := func() time.Time { return time.Now().UTC() }

	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          now,
	}, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	var mail emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		mail = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.EmailReplyTo)
		slog.Info("startup_event", "event", "email_configured", "provider", "resend")
	} else {
		mail = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("startup_event", "event", "email_disabled", "reason", "RESEND_API_KEY not set")
		}
	}

	var wa whatsapp.Sender
	if cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != "" {
		wa = whatsapp.NewCloudSender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID)
		slog.Info("startup_event", "event", "whatsapp_configured")
	} else {
		wa = whatsapp.NewNoopSender()
	}

	outbox := orchestrators.NewOutboxProcessor(stores.OutboxStore, orchestrators.NewChannelSenders(mail, wa), metrics)

	drafter := ai.NewClient(cfg.OpenAIKey, cfg.OpenAIModel)
	gateway := paymentgw.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	slog.Info("startup_event", "event", "integrations", "ai", drafter.Enabled(), "payments", gateway.Enabled())

	var sessionStore middleware.SessionStore
	if cfg.RedisURL != "" {
		rs, err := middleware.NewRedisSessionStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer rs.Close()
		sessionStore = rs
	} else {
		sessionStore = middleware.NewMemorySessionStore()
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	scheduler := jobs.New(cfg.Location())
	mustSchedule(scheduler.Add("outbox", cfg.OutboxSchedule, 50*time.Second, jobs.OutboxJob(outbox)))
	mustSchedule(scheduler.Add("recurring", cfg.RecurringSchedule, 5*time.Minute, jobs.RecurringJob(orchestrators.GenerateRecurringDeps{
		RecurringStore:   stores.RecurringStore,
		AppointmentStore: stores.AppointmentStore,
		Metrics:          metrics,
		Location:         cfg.Location(),
		GenerateID:       generateID,
		Now:              now,
	}, cfg.RecurringWeeks)))
	mustSchedule(scheduler.Add("rate_limit_sweep", "@every 10m", time.Minute, func(context.Context) error {
		if n := limiter.Sweep(30 * time.Minute); n > 0 {
			slog.Debug("job_event", "event", "rate_limit_swept", "visitors", n)
		}
		return nil
	}))
	scheduler.Start()

	mux := web.NewMux(stores, web.Services{
		Gateway:      gateway,
		GatewayKeyID: gateway.KeyID(),
		Drafter:      drafter,
		Outbox:       outbox,
		Metrics:      metrics,
		DB:           db,
		Location:     cfg.Location(),
		StaffEmail:   cfg.StaffNotifyEmail,
		Production:   cfg.IsProduction(),
	}, web.Options{
		Sessions:      sessionStore,
		CSRFKey:       cfg.CSRFKeyBytes(),
		SecureCookies: cfg.IsProduction(),
		RateLimiter:   limiter,
		SlowRequest:   cfg.SlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("startup_event", "event", "listening", "version", version, "addr", cfg.Addr, "env", cfg.AppEnv, "schema", schema)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown_event", "event", "signal_received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_event", "event", "http_shutdown_failed", "error", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		slog.Warn("shutdown_event", "event", "jobs_still_running")
	}
	slog.Info("shutdown_event", "event", "stopped")
}

// configureLogging installs the default slog handler: JSON in production, text otherwise.
func configureLogging(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h).With("service", "fitstudio"))
}

func mustSchedule(err error) {
	if err != nil {
		log.Fatalf("failed to schedule job: %v", err)
	}
}
