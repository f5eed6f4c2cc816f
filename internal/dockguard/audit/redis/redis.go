package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

// StreamSink appends audit events to a redis stream. The emitter does
// not await delivery beyond the XADD itself.
type StreamSink struct {
	rdb    *redis.Client
	stream string
}

func New(ctx context.Context, cfg config.Audit) (StreamSink, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return StreamSink{}, fmt.Errorf("connect error: %w", err)
	}

	return StreamSink{
		rdb:    rdb,
		stream: cfg.Stream,
	}, nil
}

func (s StreamSink) Emit(ctx context.Context, evt models.AuditEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{ //nolint:exhaustruct
		Stream: s.stream,
		Values: map[string]interface{}{
			"event": payload,
		},
	}).Err(); err != nil {
		return fmt.Errorf("xadd error: %w", err)
	}

	return nil
}
