package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tileme/pkg/cache"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/server"
	"github.com/matzehuels/tileme/pkg/session"
	"github.com/matzehuels/tileme/pkg/storage"
)

// Backend names accepted by the serve flags.
const (
	storeNone   = "none"
	storeMemory = "memory"
	storeFile   = "file"
	storeRedis  = "redis"
	storeMongo  = "mongo"
)

// redisKeyPrefix scopes every key tileme writes to Redis.
const redisKeyPrefix = "tileme:"

// sessionCleanupInterval is how often local session stores drop expired
// sessions.
const sessionCleanupInterval = 10 * time.Minute

type serveOpts struct {
	addr       string
	sessions   string
	archive    string
	cache      string
	redisAddr  string
	mongoURI   string
	sessionTTL time.Duration
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tiling HTTP API",
		Long: `Serve runs the HTTP API. Archived layouts, live sessions and the render
cache each use their own backend:

  --sessions memory|file|redis
  --archive  memory|mongo
  --cache    none|memory|file|redis

Redis and MongoDB addresses default to TILEME_REDIS_ADDR and
TILEME_MONGO_URI when set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyServeDefaults(cmd, &opts)
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.sessions, "sessions", "", "session store: memory, file, redis")
	cmd.Flags().StringVar(&opts.archive, "archive", "", "layout archive: memory, mongo")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "render cache: none, memory, file, redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "session lifetime after the last change")

	return cmd
}

// applyServeDefaults fills unset flags from the environment and the config
// file.
func (c *CLI) applyServeDefaults(cmd *cobra.Command, opts *serveOpts) {
	sc := c.Config.Server
	if env := os.Getenv("TILEME_REDIS_ADDR"); env != "" {
		sc.RedisAddr = env
	}
	if env := os.Getenv("TILEME_MONGO_URI"); env != "" {
		sc.MongoURI = env
	}

	flags := cmd.Flags()
	setDefault := func(name string, dst *string, def string) {
		if !flags.Changed(name) || *dst == "" {
			*dst = def
		}
	}
	setDefault("addr", &opts.addr, sc.Addr)
	setDefault("sessions", &opts.sessions, sc.Sessions)
	setDefault("archive", &opts.archive, sc.Archive)
	setDefault("cache", &opts.cache, sc.Cache)
	setDefault("redis-addr", &opts.redisAddr, sc.RedisAddr)
	setDefault("mongo-uri", &opts.mongoURI, sc.MongoURI)

	if !flags.Changed("session-ttl") || opts.sessionTTL <= 0 {
		opts.sessionTTL = session.DefaultTTL
		if d, err := time.ParseDuration(sc.SessionTTL); err == nil && d > 0 {
			opts.sessionTTL = d
		}
	}
}

// backends holds the stores the server runs on.
type backends struct {
	cache    cache.Cache
	sessions session.Store
	archive  storage.Store
	redis    *redis.Client
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	spin := newSpinner(ctx, os.Stderr, "Connecting to backends...")
	spin.Start()
	b, err := c.openBackends(ctx, opts)
	if err != nil {
		spin.StopWithError("Backends unavailable")
		return err
	}
	spin.Stop()

	srv := server.New(server.Config{
		Runner:     pipeline.NewRunner(b.cache, cache.NewScopedKeyer(nil, redisKeyPrefix), logger),
		Sessions:   b.sessions,
		Archive:    b.archive,
		Logger:     logger,
		SessionTTL: opts.sessionTTL,
	})
	defer srv.Close()

	printSuccess("Serving tileme API")
	printKeyValue("address", opts.addr)
	printKeyValue("sessions", opts.sessions)
	printKeyValue("archive", opts.archive)
	printKeyValue("cache", opts.cache)

	if opts.sessions != storeRedis {
		go cleanupSessions(ctx, b.sessions, sessionCleanupInterval)
	}
	return srv.ListenAndServe(ctx, opts.addr)
}

// openBackends connects the stores named in opts. One Redis client is
// shared by the cache and the session store.
func (c *CLI) openBackends(ctx context.Context, opts serveOpts) (*backends, error) {
	b := &backends{}
	redisClient := func() (*redis.Client, error) {
		if b.redis != nil {
			return b.redis, nil
		}
		rc, err := cache.NewRedisCache(ctx, opts.redisAddr, "")
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
		}
		b.redis = rc.Client()
		return b.redis, nil
	}

	switch opts.cache {
	case storeNone:
		b.cache = cache.NewNullCache()
	case storeMemory:
		b.cache = cache.NewMemoryCache()
	case storeFile:
		fc, err := c.newCache(false)
		if err != nil {
			return nil, err
		}
		b.cache = fc
	case storeRedis:
		client, err := redisClient()
		if err != nil {
			return nil, err
		}
		b.cache = cache.NewRedisCacheFromClient(client, "")
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want none, memory, file or redis)", opts.cache)
	}

	switch opts.sessions {
	case storeMemory:
		b.sessions = session.NewMemoryStore()
	case storeFile:
		fs, err := session.NewFileStore("")
		if err != nil {
			return nil, err
		}
		b.sessions = fs
	case storeRedis:
		client, err := redisClient()
		if err != nil {
			return nil, err
		}
		b.sessions = session.NewRedisStore(client, cache.NewScopedKeyer(nil, redisKeyPrefix))
	default:
		return nil, fmt.Errorf("unknown session store %q (want memory, file or redis)", opts.sessions)
	}

	switch opts.archive {
	case storeMemory:
		b.archive = storage.NewMemoryStore()
	case storeMongo:
		ms, err := storage.NewMongoStore(ctx, opts.mongoURI, storage.DefaultDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		b.archive = ms
	default:
		return nil, fmt.Errorf("unknown archive %q (want memory or mongo)", opts.archive)
	}

	return b, nil
}

// cleanupSessions drops expired sessions every interval until ctx ends.
func cleanupSessions(ctx context.Context, store session.Store, interval time.Duration) {
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup", "error", err)
			}
		}
	}
}
