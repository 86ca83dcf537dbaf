package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/2beens/weeklyfit/internal/config"
	"github.com/2beens/weeklyfit/internal/db"
	"github.com/2beens/weeklyfit/internal/kv"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Storage owns the backend connections behind the key-value store.
type Storage struct {
	KV          kv.Store
	redisClient *redis.Client
	dbPool      *pgxpool.Pool
}

func OpenStorage(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (*Storage, error) {
	s := &Storage{}

	// redis also backs the rate limiter, so connect whenever it is configured
	if cfg.RedisHost != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: secrets.RedisPassword,
			DB:       0, // use default DB
		})
		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	var store kv.Store
	switch cfg.StorageBackend {
	case config.StorageRedis:
		store = kv.NewRedisStore(s.redisClient)
	case config.StoragePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         secrets.PostgresUser,
			DBPassword:     secrets.PostgresPassword,
			TracingEnabled: cfg.TracingEnabled,
		})
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("new db pool: %w", err), s.Close())
		}
		s.dbPool = dbPool

		pgStore := kv.NewPostgresStore(dbPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, multierr.Append(err, s.Close())
		}
		store = pgStore
	case config.StorageMemory:
		log.Warnln("using in-memory storage, state is lost on restart")
		store = kv.NewMemoryStore(cfg.MemoryStoreBytes)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}

	s.KV = kv.WithPrefix(store, cfg.StorageKeyPrefix)
	return s, nil
}

func (s *Storage) RedisClient() *redis.Client {
	return s.redisClient
}

// Collectors returns backend specific prometheus collectors.
func (s *Storage) Collectors() []prometheus.Collector {
	if s.dbPool == nil {
		return nil
	}
	return []prometheus.Collector{
		pgxpoolprometheus.NewCollector(s.dbPool, map[string]string{"db_name": s.dbPool.Config().ConnConfig.Database}),
	}
}

func (s *Storage) Close() error {
	var err error
	if s.KV != nil {
		err = multierr.Append(err, s.KV.Close())
	}
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	return err
}
