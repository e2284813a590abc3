package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirpyerre/useradmin/internal/core/ports"
	"github.com/sirpyerre/useradmin/internal/core/service"
	"github.com/sirpyerre/useradmin/internal/infrastructure/config"
	mongodb "github.com/sirpyerre/useradmin/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/useradmin/internal/infrastructure/db/redis"
	"github.com/sirpyerre/useradmin/internal/infrastructure/security"
	"github.com/sirpyerre/useradmin/pkg/logger"
)

// UsersOpener builds the user service against real storage. The returned
// close function releases every connection it opened.
type UsersOpener func(ctx context.Context, cfg *config.Config) (ports.UserService, func(), error)

// backends are the live connections shared by the serve command.
type backends struct {
	mongo *mongo.Client
	users *mongodb.UserRepository
	redis *goredis.Client
}

func (b *backends) close() {
	ctx := context.Background()
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.mongo != nil {
		_ = b.mongo.Disconnect(ctx)
	}
}

// connect opens MongoDB, ensures the user indexes and, when withRedis is set
// and an address is configured, opens Redis.
func connect(ctx context.Context, cfg *config.Config, withRedis bool) (*backends, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "useradmin",
	})
	if err != nil {
		return nil, err
	}

	b := &backends{mongo: client, users: mongodb.NewUserRepository(db)}
	if err := b.users.EnsureIndexes(ctx); err != nil {
		b.close()
		return nil, err
	}

	if withRedis && cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			b.close()
			return nil, err
		}
		b.redis = rdb
	}
	return b, nil
}

func (b *backends) userService(cfg *config.Config, log zerolog.Logger) *service.UserService {
	var ledger security.TokenLedger
	if b.redis != nil {
		ledger = redisdb.NewTokenLedger(b.redis)
	}
	tokens := security.NewDeleteTokenManager(cfg.Auth.CSRFSecret, cfg.Auth.DeleteTokenTTL, ledger, logger.Component("delete-tokens"))
	return service.NewUserService(b.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, log)
}

func openUsers(ctx context.Context, cfg *config.Config) (ports.UserService, func(), error) {
	b, err := connect(ctx, cfg, false)
	if err != nil {
		return nil, nil, fmt.Errorf("open user store: %w", err)
	}
	return b.userService(cfg, logger.Component("users")), b.close, nil
}
