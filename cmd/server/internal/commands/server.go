package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpmiddleware "github.com/roosthq/roost/internal/http"
	"github.com/roosthq/roost/internal/logger"
	"github.com/roosthq/roost/internal/server"
	"github.com/roosthq/roost/internal/session"
	"github.com/roosthq/roost/internal/store"
	memorystore "github.com/roosthq/roost/internal/store/memory"
	postgresstore "github.com/roosthq/roost/internal/store/postgres"
	"github.com/roosthq/roost/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"ROOST_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"ROOST_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"ROOST_TLS_KEY"`

	// Session configuration
	SessionSecret string        `help:"secret for signing session tokens (min 32 bytes)" env:"ROOST_SESSION_SECRET"`
	SessionTTL    time.Duration `help:"session TTL" default:"168h" env:"ROOST_SESSION_TTL"`

	// Environment
	Production  bool     `help:"production mode - secure cookies, no stack traces, no CORS" default:"false" env:"ROOST_PRODUCTION"`
	CORSOrigins []string `help:"allowed CORS origins for API requests (development only)" default:"http://localhost:3000" env:"ROOST_CORS_ORIGINS"`
	Tracing     bool     `help:"enable tracing" default:"false" env:"ROOST_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"ROOST_STORE_TYPE" enum:"memory,postgres"`
	Seed          string             `help:"YAML seed file for the memory store" default:"" env:"ROOST_SEED"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	ConnString  string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	MaxConns    int32  `help:"maximum number of connections in pool" default:"10"`
	MinConns    int32  `help:"minimum number of connections in pool" default:"2"`
	AutoMigrate bool   `help:"run database migrations on startup" default:"false" env:"ROOST_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret is required (--session-secret or ROOST_SESSION_SECRET)")
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	if c.StoreType == "postgres" && c.PostgresStore.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("production", c.Production).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "roost-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	users, err := c.createUserStore(ctx)
	if err != nil {
		return err
	}

	codec, err := session.NewCodec([]byte(c.SessionSecret), c.SessionTTL)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Users:      users,
		Codec:      codec,
		Cookies:    session.CookiePolicy{Secure: c.Production},
		Production: c.Production,
	})

	var handler http.Handler = srv.Handler()
	handler = httpmiddleware.AccessLog(log.Logger)(handler)
	handler = httpmiddleware.RequestTagger()(handler)

	if c.Tracing {
		handler = otelhttp.NewHandler(handler, "roost-server")
	}

	if c.Production {
		// Fetch-metadata cross-origin protection in front of the token
		// guard. Browsers that send Sec-Fetch-Site get rejected before the
		// token check even runs.
		handler = csrf.New().Handler(handler)
	} else {
		// CORS only outside production; the deployed frontend is served
		// same-origin.
		handler = cors.New(cors.Options{
			AllowedOrigins:   c.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "X-XSRF-Token", "X-CSRF-Token"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	httpServer := configureHTTPServer(c.Listen, handler)

	if c.Cert != "" && c.Key != "" {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTPS server")
		return httpServer.ListenAndServeTLS(c.Cert, c.Key)
	}

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return httpServer.ListenAndServe()
}

func (c *ServerCmd) createUserStore(ctx context.Context) (store.UserStore, error) {
	switch c.StoreType {
	case "postgres":
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString: c.PostgresStore.ConnString,
			MaxConns:   c.PostgresStore.MaxConns,
			MinConns:   c.PostgresStore.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return nil, err
			}
		}
		log.Info().Msg("Using PostgreSQL user store")
		return postgresstore.NewUserStore(pool), nil

	default:
		mem := memorystore.NewUserStore()
		if c.Seed != "" {
			count, err := mem.LoadSeedFile(ctx, c.Seed)
			if err != nil {
				return nil, err
			}
			log.Info().Int("count", count).Str("file", c.Seed).Msg("Seeded memory user store")
		}
		log.Info().Msg("Using in-memory user store")
		return mem, nil
	}
}
