package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shipfeed/shipfeed/pkg/clientip"
	"github.com/shipfeed/shipfeed/pkg/config"
	"github.com/shipfeed/shipfeed/pkg/httpserver"
	"github.com/shipfeed/shipfeed/pkg/identity"
	"github.com/shipfeed/shipfeed/pkg/logger"
	"github.com/shipfeed/shipfeed/pkg/pg"
	"github.com/shipfeed/shipfeed/pkg/redis"
	"github.com/shipfeed/shipfeed/pkg/requestid"
	"github.com/shipfeed/shipfeed/storage"
)

const (
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

type appConfig struct {
	Env           string `env:"APP_ENV" envDefault:"development"`
	Name          string `env:"APP_NAME" envDefault:"shipfeed"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

// app holds the process-wide resources shared by the commands.
type app struct {
	cfg    appConfig
	log    *slog.Logger
	pgCfg  pg.Config
	pool   *pgxpool.Pool
	redis  *goredis.Client
	store  storage.Store
	checks map[string]httpserver.Check
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			identity.LoggerExtractor(),
			clientip.LoggerExtractor(),
		),
	)
}

// bootstrap loads configuration and opens storage. Redis is optional and
// only connected when REDIS_URL is set.
func bootstrap(ctx context.Context) (*app, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: newLogger(cfg), checks: map[string]httpserver.Check{}}
	logger.SetAsDefault(a.log)

	switch strings.ToLower(cfg.StorageDriver) {
	case driverPostgres:
		if err := config.Load(&a.pgCfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, a.pgCfg)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		a.store = storage.NewPostgres(pool)
		a.checks["postgres"] = pg.Healthcheck(pool)
	case driverMemory:
		a.log.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		a.store = storage.NewMemory()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, cfg.StorageDriver)
	}

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		a.close()
		return nil, err
	}
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = client
		a.checks["redis"] = redis.Healthcheck(client)
	}

	return a, nil
}

func (a *app) migrate(ctx context.Context) error {
	if a.pool == nil {
		a.log.InfoContext(ctx, "migrations skipped", slog.String("storage_driver", a.cfg.StorageDriver))
		return nil
	}
	return pg.Migrate(ctx, a.pool, storage.Migrations, storage.MigrationsDir, a.pgCfg, a.log)
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("close redis", logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
