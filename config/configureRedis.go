package config

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func redisAddress() string {
	return GetEnvDefault("REDIS_ADDRESS", "localhost:6379")
}

// InitRedisServer connects to redis and fails fast when it is unreachable.
func InitRedisServer(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddress(),
		Password: GetEnv("REDIS_PASSWORD"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", redisAddress(), err)
	}
	return client, nil
}

// AsynqRedisOpt points asynq at the same redis instance.
func AsynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redisAddress(),
		Password: GetEnv("REDIS_PASSWORD"),
		DB:       GetEnvInt("REDIS_DB", 0),
	}
}
