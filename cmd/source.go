package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
	"github.com/spigell/school-matcher/internal/secrets"
)

const (
	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// newSource builds the configured school source, wrapped in the Redis cache
// when one is configured. The returned func releases connections.
func newSource(ctx context.Context, config *Config, logger *zap.Logger) (schools.Source, func(), error) {
	closers := make([]func() error, 0, 2)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("closing school source", zap.Error(err))
			}
		}
	}

	cfg := config.Source
	if cfg == nil {
		cfg = &SourceConfig{}
	}

	var source schools.Source
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	switch kind {
	case "", "file":
		if cfg.File == "" {
			return nil, closeAll, fmt.Errorf("source.file is required for the file source")
		}
		source = schools.NewFileSource(cfg.File, logger)
	case "http":
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return nil, closeAll, fmt.Errorf("source.http.url is required for the http source")
		}
		token, err := secrets.Optional(secrets.Source{
			Name: "school api key",
			File: cfg.HTTP.APIKeyFile,
			Env:  envPrefix + "_API_KEY",
		})
		if err != nil {
			return nil, closeAll, err
		}
		source = schools.NewHTTPSource(cfg.HTTP.URL, token, logger)
	case "postgres":
		pg := cfg.Postgres
		if pg == nil {
			pg = &PostgresConfig{}
		}
		dsn, err := secrets.Load(secrets.Source{
			Name: "postgres dsn",
			File: pg.DSNFile,
			Env:  "DATABASE_URL",
		})
		if err != nil {
			return nil, closeAll, err
		}
		db, err := schools.OpenPostgres(dsn)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, db.Close)

		pgSource := schools.NewPostgresSource(db, pg.Table, logger)
		if err := pgSource.Ping(ctx, pingAttempts, pingDelay); err != nil {
			return nil, closeAll, err
		}
		source = pgSource
	default:
		return nil, closeAll, fmt.Errorf("%w: %s", schools.ErrUnknownSource, cfg.Kind)
	}

	if config.Cache == nil || config.Cache.Redis == nil || config.Cache.Redis.Address == "" {
		return source, closeAll, nil
	}

	password, err := secrets.Optional(secrets.Source{
		Name: "redis password",
		File: config.Cache.Redis.PasswordFile,
		Env:  envPrefix + "_REDIS_PASSWORD",
	})
	if err != nil {
		return nil, closeAll, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Cache.Redis.Address,
		Password: password,
	})
	closers = append(closers, client.Close)

	logger.Debug("school cache enabled",
		zap.String("address", config.Cache.Redis.Address),
		zap.Duration("ttl", config.Cache.TTL),
	)
	return schools.NewCache(client, source, config.Cache.TTL, logger), closeAll, nil
}

// loadPool reads the pool, bypassing a cached copy when --refresh-cache is set.
func loadPool(ctx context.Context, cmd *cobra.Command, source schools.Source, divisions []string) ([]*schools.School, error) {
	refresh := false
	if cmd != nil && cmd.Flags().Lookup("refresh-cache") != nil {
		refresh, _ = cmd.Flags().GetBool("refresh-cache")
	}

	if cache, ok := source.(*schools.Cache); ok && refresh {
		return cache.Reload(ctx, divisions...)
	}
	return source.Schools(ctx, divisions...)
}

// loadPreferences parses the preferences file. A non-nil mustHaves replaces
// the must-have list of the file. Names that cannot be honored are logged.
func loadPreferences(path string, mustHaves []string, logger *zap.Logger) (*preferences.Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	prefs, failed, err := preferences.ParsePayload(data)
	if err != nil {
		return nil, err
	}

	if mustHaves != nil {
		failed = prefs.SetMustHavesFromList(mustHaves)
	}

	if len(failed) > 0 {
		logger.Warn("ignoring must-have preferences",
			zap.Strings("names", failed),
			zap.String("hint", "a must-have must name a preference field that is set"),
		)
	}

	logger.Info("preferences loaded",
		zap.String("user_state", prefs.UserState()),
		zap.Int("must_have_count", prefs.MustHaveCount()),
	)
	return prefs, nil
}
