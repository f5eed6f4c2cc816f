package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/repository/containerrepo"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

const listingKey = "containers:all"

// ContainerCache holds the unfiltered container listing. Visibility
// filtering happens per viewer after the cache read, never inside it.
type ContainerCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.RedisCache) (ContainerCache, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return ContainerCache{}, fmt.Errorf("connect error: %w", err)
	}

	return ContainerCache{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

func (cc ContainerCache) SetContainers(ctx context.Context, containers []models.Container) error {
	containersJSON, err := json.Marshal(containers)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err = cc.rdb.Set(ctx, listingKey, containersJSON, cc.expTime).Result(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (cc ContainerCache) GetContainers(ctx context.Context) ([]models.Container, error) {
	containersJSON, err := cc.rdb.Get(ctx, listingKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, containerrepo.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get error: %w", err)
	}

	var containers []models.Container

	if err = json.Unmarshal([]byte(containersJSON), &containers); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return containers, nil
}

func (cc ContainerCache) Invalidate(ctx context.Context) error {
	if err := cc.rdb.Del(ctx, listingKey).Err(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}
