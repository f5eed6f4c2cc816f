package containerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	repo "github.com/dockguard/dockguard/internal/dockguard/repository/containerrepo"
	"github.com/dockguard/dockguard/internal/dockguard/services/visibility"
	"github.com/dockguard/dockguard/pkg/logger"
)

var ErrNotFound = errors.New("container not found")

type ContainerService struct {
	containerRepo  Repository
	containerCache Cache
	lg             logger.Logger
}

type Repository interface {
	ListContainers(context.Context, repo.ListRequest) ([]models.Container, error)
	UpsertContainer(context.Context, models.Container) (int64, error)
	DeleteContainer(context.Context, int64) error
	Shutdown(context.Context) error
}

type Cache interface {
	GetContainers(ctx context.Context) ([]models.Container, error)
	SetContainers(ctx context.Context, containers []models.Container) error
	Invalidate(ctx context.Context) error
}

func New(containerRepo Repository, containerCache Cache, lg logger.Logger) *ContainerService {
	return &ContainerService{
		containerRepo:  containerRepo,
		containerCache: containerCache,
		lg:             lg,
	}
}

// ListForUser returns the containers the viewer may see. The cache
// holds the unfiltered listing only; the tag filter runs per viewer on
// every call because tag sets can change between requests.
func (cs *ContainerService) ListForUser(ctx context.Context, viewer models.User,
	req ListRequest,
) ([]models.Container, error) {
	unfilteredListing := req.Host == "" && req.State == "" && req.Offset == 0 && req.Limit == 0

	if unfilteredListing && !req.UseLastRevision {
		containers, err := cs.containerCache.GetContainers(ctx)
		if err != nil {
			cs.lg.Info("cache missed")
		} else {
			cs.lg.Info("cache hit")

			return visibility.FilterContainers(containers, viewer), nil
		}
	}

	repoReq := repo.ListRequest{
		Host:   req.Host,
		State:  req.State,
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	containers, err := cs.containerRepo.ListContainers(ctx, repoReq)
	if err != nil {
		return nil, fmt.Errorf("list containers error: %w", err)
	}

	return visibility.FilterContainers(containers, viewer), nil
}

// RecordContainer stores the latest observed state reported by a host
// agent and drops the stale cached listing.
func (cs *ContainerService) RecordContainer(ctx context.Context, c models.Container) (int64, error) {
	c.UpdatedAt = time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	id, err := cs.containerRepo.UpsertContainer(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("upsert container error: %w", err)
	}

	if err := cs.containerCache.Invalidate(ctx); err != nil {
		cs.lg.Errorf("invalidate container cache error: %s", err.Error())
	}

	return id, nil
}

func (cs *ContainerService) RemoveContainer(ctx context.Context, id int64) error {
	if err := cs.containerCache.Invalidate(ctx); err != nil {
		cs.lg.Errorf("invalidate container cache error: %s", err.Error())
	}

	if err := cs.containerRepo.DeleteContainer(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete container error: %w", err)
	}

	return nil
}

// BackgroundRefresh keeps the cached listing warm until the context is
// cancelled.
func (cs *ContainerService) BackgroundRefresh(ctx context.Context, ttl time.Duration) {
	t := time.NewTicker(ttl)
	defer t.Stop()

	if err := cs.refresh(ctx); err != nil {
		cs.lg.Errorf("refresh error: %s", err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := cs.refresh(ctx); err != nil {
				cs.lg.Errorf("refresh error: %s", err.Error())
			}
		}
	}
}

func (cs *ContainerService) Shutdown(ctx context.Context) error {
	if err := cs.containerRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown container repo error: %w", err)
	}

	return nil
}

func (cs *ContainerService) refresh(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		defer close(errCh)

		containers, err := cs.containerRepo.ListContainers(ctx, repo.ListRequest{}) //nolint:exhaustruct
		if err != nil {
			errCh <- fmt.Errorf("list containers error: %w", err)

			return
		}

		if err := cs.containerCache.SetContainers(ctx, containers); err != nil {
			errCh <- fmt.Errorf("set containers cache error: %w", err)

			return
		}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled error: %w", ctx.Err())
	case err := <-errCh:
		if err != nil {
			return err
		}

		return nil
	}
}
