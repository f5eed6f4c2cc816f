package containerservice_test

import (
	"context"
	"testing"

	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	repo "github.com/dockguard/dockguard/internal/dockguard/repository/containerrepo"
	"github.com/dockguard/dockguard/internal/dockguard/services/containerservice"
	"github.com/dockguard/dockguard/pkg/logger"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	containers []models.Container
	listCalls  int
}

func (r *stubRepo) ListContainers(_ context.Context, _ repo.ListRequest) ([]models.Container, error) {
	r.listCalls++

	return r.containers, nil
}

func (r *stubRepo) UpsertContainer(_ context.Context, c models.Container) (int64, error) {
	r.containers = append(r.containers, c)

	return int64(len(r.containers)), nil
}

func (r *stubRepo) DeleteContainer(context.Context, int64) error {
	return nil
}

func (r *stubRepo) Shutdown(context.Context) error {
	return nil
}

type stubCache struct {
	containers []models.Container
	hit        bool
	sets       int
}

func (c *stubCache) GetContainers(context.Context) ([]models.Container, error) {
	if !c.hit {
		return nil, repo.ErrNotFound
	}

	return c.containers, nil
}

func (c *stubCache) SetContainers(_ context.Context, containers []models.Container) error {
	c.containers = containers
	c.sets++

	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.hit = false

	return nil
}

var testContainers = []models.Container{
	{ID: 1, Name: "web", Tags: []string{"prod", "web"}},       //nolint:exhaustruct
	{ID: 2, Name: "vault", Tags: []string{"prod", "secret"}},  //nolint:exhaustruct
	{ID: 3, Name: "batch", Tags: nil},                         //nolint:exhaustruct
}

func TestListForUser_FiltersPerViewer(t *testing.T) {
	r := &stubRepo{containers: testContainers} //nolint:exhaustruct
	c := &stubCache{}                          //nolint:exhaustruct
	svc := containerservice.New(r, c, logger.Nop())

	restricted := models.User{HiddenTags: []string{"secret"}} //nolint:exhaustruct

	got, err := svc.ListForUser(context.Background(), restricted, containerservice.ListRequest{}) //nolint:exhaustruct
	require.NoError(t, err)
	require.Len(t, got, 2)

	// An unrestricted viewer sees the full listing from the same data.
	all, err := svc.ListForUser(context.Background(), models.User{}, containerservice.ListRequest{}) //nolint:exhaustruct,lll
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestListForUser_CacheHitSkipsRepo(t *testing.T) {
	r := &stubRepo{} //nolint:exhaustruct
	c := &stubCache{containers: testContainers, hit: true} //nolint:exhaustruct
	svc := containerservice.New(r, c, logger.Nop())

	viewer := models.User{VisibleTags: []string{"web"}} //nolint:exhaustruct

	got, err := svc.ListForUser(context.Background(), viewer, containerservice.ListRequest{}) //nolint:exhaustruct
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)
	require.Zero(t, r.listCalls, "cache hit must not touch the repository")
}

func TestListForUser_UseLastRevisionBypassesCache(t *testing.T) {
	r := &stubRepo{containers: testContainers}             //nolint:exhaustruct
	c := &stubCache{containers: nil, hit: true}            //nolint:exhaustruct
	svc := containerservice.New(r, c, logger.Nop())

	got, err := svc.ListForUser(context.Background(), models.User{}, //nolint:exhaustruct
		containerservice.ListRequest{UseLastRevision: true}) //nolint:exhaustruct
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 1, r.listCalls)
}

func TestRecordContainer_InvalidatesCache(t *testing.T) {
	r := &stubRepo{} //nolint:exhaustruct
	c := &stubCache{containers: testContainers, hit: true} //nolint:exhaustruct
	svc := containerservice.New(r, c, logger.Nop())

	_, err := svc.RecordContainer(context.Background(), models.Container{ //nolint:exhaustruct
		Name:  "new",
		Host:  "host-1",
		State: "running",
	})
	require.NoError(t, err)
	require.False(t, c.hit, "recording a container drops the cached listing")
}
