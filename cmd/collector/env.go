package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"canvass/internal/audit"
	"canvass/internal/auth/directory"
	authhosted "canvass/internal/auth/hosted"
	"canvass/internal/auth/token"
	"canvass/internal/collector"
	"canvass/internal/console"
	"canvass/internal/gateway"
	gwmetrics "canvass/internal/gateway/metrics"
	"canvass/internal/platform/config"
	"canvass/internal/platform/hosted"
	"canvass/internal/platform/logger"
	platformmetrics "canvass/internal/platform/metrics"
	"canvass/internal/platform/postgres"
	"canvass/internal/platform/redis"
	recordstore "canvass/internal/records/store"
	recordshosted "canvass/internal/records/store/hosted"
	recordspg "canvass/internal/records/store/postgres"
	"canvass/internal/session"
	"canvass/internal/verification"
	"canvass/internal/wizard"
)

// env is everything one collector command needs, built from config.
type env struct {
	cfg       config.Config
	log       *slog.Logger
	app       *collector.App
	registry  *prometheus.Registry
	redis     *redis.Client
	directory *directory.Directory
	closers   []func()
}

func newEnv(ctx context.Context, cfg config.Config, level string, out, errOut io.Writer) (_ *env, err error) {
	e := &env{
		cfg:      cfg,
		log:      logger.New(errOut, level),
		registry: platformmetrics.NewRegistry(),
	}
	defer func() {
		if err != nil {
			e.close()
		}
	}()

	var hostedClient *hosted.Client
	if cfg.Hosted.URL != "" {
		hostedClient = hosted.New(cfg.Hosted.URL, cfg.Hosted.APIKey)
	}

	sessions, err := e.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := e.authProvider(ctx, hostedClient)
	if err != nil {
		return nil, err
	}
	records, err := e.recordStore(ctx, hostedClient)
	if err != nil {
		return nil, err
	}
	publisher, err := e.auditPublisher(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(auth, records, sessions, verification.NewClient(cfg.Verifier.URL),
		gateway.WithLogger(e.log),
		gateway.WithMetrics(gwmetrics.New(e.registry)),
		gateway.WithAuditPublisher(publisher),
	)
	if err != nil {
		return nil, err
	}
	e.app = collector.New(wizard.New(), gw, console.WriterNotifier(out), collector.WithLogger(e.log))
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *env) sessionStore(ctx context.Context) (gateway.SessionStore, error) {
	switch e.cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil
	case config.BackendRedis:
		client, err := redis.New(ctx, e.cfg.Redis)
		if err != nil {
			return nil, err
		}
		e.redis = client
		e.closers = append(e.closers, func() { _ = client.Close() })
		return session.NewRedisStore(client, e.cfg.Profile), nil
	default:
		return session.NewFileStore(e.cfg.Session.Path), nil
	}
}

func (e *env) authProvider(ctx context.Context, client *hosted.Client) (gateway.AuthProvider, error) {
	if e.cfg.Auth.Backend != config.BackendDirectory {
		return authhosted.New(client), nil
	}
	db, err := postgres.OpenDB(ctx, e.cfg.Postgres.URL)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, func() { _ = db.Close() })

	dir := directory.New(db, token.NewIssuer(e.cfg.Auth.JWTSigningKey), e.cfg.Auth.TokenTTL)
	if err := dir.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	e.directory = dir
	return dir, nil
}

func (e *env) recordStore(ctx context.Context, client *hosted.Client) (gateway.RecordStore, error) {
	switch e.cfg.Store.Backend {
	case config.BackendMemory:
		return recordstore.NewInMemory(), nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, e.cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, pool.Close)
		store := recordspg.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return recordshosted.New(client), nil
	}
}

func (e *env) auditPublisher(ctx context.Context) (gateway.AuditPublisher, error) {
	switch e.cfg.Audit.Backend {
	case config.BackendMemory:
		return audit.NewMemoryPublisher(), nil
	case config.BackendKafka:
		p, err := audit.NewKafkaPublisher(ctx, e.cfg.Audit.Brokers, e.cfg.Audit.Topic)
		if err != nil {
			return nil, fmt.Errorf("connect audit brokers: %w", err)
		}
		e.closers = append(e.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = p.Close(ctx)
		})
		return p, nil
	default:
		return audit.NewLogPublisher(e.log), nil
	}
}
