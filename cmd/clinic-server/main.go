package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gastroclinic/clinic/internal/config"
	"github.com/gastroclinic/clinic/internal/domain/billing"
	"github.com/gastroclinic/clinic/internal/domain/clinical"
	"github.com/gastroclinic/clinic/internal/domain/dashboard"
	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/auth"
	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/middleware"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-server",
		Short:        "Gastroenterology practice API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, db.Migrations()).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, db.Migrations()).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printMigrationStatus(cmd, statuses)
			return nil
		},
	})

	return cmd
}

func printMigrationStatus(cmd *cobra.Command, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := userInputFromFlags(cmd)

			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := newIdentityService(pool, nil).CreateUser(ctx, in)
			if err != nil {
				return userCreateError(in, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("password", "", "Initial password (at least 8 characters)")
	createCmd.Flags().String("full-name", "", "Display name")
	createCmd.Flags().String("email", "", "Email address")
	createCmd.Flags().String("role", auth.RoleReceptionist, "doctor or receptionist")

	cmd.AddCommand(createCmd)
	return cmd
}

// userCreateError rewords the failures an operator can fix from the
// command line.
func userCreateError(in *identity.UserInput, err error) error {
	switch {
	case schema.IsValidationError(err):
		return fmt.Errorf("invalid account flags: %w", err)
	case db.IsConstraint(err, db.KindUnique):
		name := ""
		if in.Username != nil {
			name = *in.Username
		}
		return fmt.Errorf("username %q is already taken", name)
	}
	return err
}

// userInputFromFlags leaves unset flags nil so that validation reports them
// as required.
func userInputFromFlags(cmd *cobra.Command) *identity.UserInput {
	flag := func(name string) *string {
		v, _ := cmd.Flags().GetString(name)
		if v == "" {
			return nil
		}
		return &v
	}
	return &identity.UserInput{
		Username: flag("username"),
		Password: flag("password"),
		FullName: flag("full-name"),
		Email:    flag("email"),
		Role:     flag("role"),
	}
}

// seedAccounts are created by `seed` on an empty users table.
var seedAccounts = []struct {
	username, fullName, email, role string
}{
	{"doctor", "Attending Physician", "doctor@clinic.local", auth.RoleDoctor},
	{"reception", "Front Desk", "reception@clinic.local", auth.RoleReceptionist},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create default staff accounts when none exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			return seed(ctx, cmd, newIdentityService(pool, nil))
		},
	}
}

func seed(ctx context.Context, cmd *cobra.Command, svc *identity.Service) error {
	n, err := svc.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Users table already has %d account(s); nothing to do.\n", n)
		return nil
	}
	for _, a := range seedAccounts {
		password, err := randomPassword()
		if err != nil {
			return err
		}
		a := a
		u, err := svc.CreateUser(ctx, &identity.UserInput{
			Username: &a.username,
			Password: &password,
			FullName: &a.fullName,
			Email:    &a.email,
			Role:     &a.role,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.username, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q with password %s\n", u.Role, u.Username, password)
	}
	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

func newIdentityService(q db.Querier, tokens *auth.Issuer) *identity.Service {
	return identity.NewService(identity.NewUserRepo(q), identity.NewPatientRepo(q), tokens)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newServer builds the HTTP server. Repositories only hold q, so no query is
// issued here.
func newServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*echo.Echo, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	schema.SetLocation(loc)
	cal := calendar.New(loc)
	issuer := auth.NewIssuer(cfg.SigningKey(), cfg.JWTTTL)
	metrics := middleware.NewMetrics("clinic")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	}))
	identitySvc := newIdentityService(pool, issuer)
	e.Use(auth.JWTMiddleware(auth.JWTConfig{
		Issuer:  issuer,
		DevMode: cfg.IsDev(),
		Skipper: auth.AuthSkipper,
		Users:   identitySvc,
	}))
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	identity.NewHandler(identitySvc).RegisterRoutes(api)
	scheduling.NewHandler(scheduling.NewService(scheduling.NewAppointmentRepo(pool), cal)).RegisterRoutes(api)
	clinical.NewHandler(clinical.NewService(clinical.NewProcedureRepo(pool), clinical.NewEvolutionRepo(pool))).RegisterRoutes(api)
	billing.NewHandler(billing.NewService(billing.NewBillingRepo(pool), cal)).RegisterRoutes(api)
	dashboard.NewHandler(dashboard.NewService(dashboard.NewStatsRepo(pool), cal)).RegisterRoutes(api)

	return e, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set; using the development signing key")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e, err := newServer(cfg, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
