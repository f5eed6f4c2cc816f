package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	repo "github.com/dockguard/dockguard/internal/dockguard/repository/containerrepo"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContainersPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (ContainersPostgresRepo, error) {
	connString := "postgres://" + cfg.Username + ":" + cfg.Password + "@" +
		cfg.Addr + "/" + cfg.DB + "?" + "sslmode=" + cfg.SSLmode + "&pool_max_conns=" + cfg.MaxConns

	db, err := pgtools.Connect(ctx, connString)
	if err != nil {
		return ContainersPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return ContainersPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return ContainersPostgresRepo{
		db: db,
	}, nil
}

// UpsertContainer stores the latest observed state for a container,
// keyed by host and name.
func (cr ContainersPostgresRepo) UpsertContainer(ctx context.Context, //nolint:nonamedreturns
	c models.Container,
) (id int64, err error) {
	tx, err := cr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "upsert container")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("containers").
		Columns("name", "image", "host", "state", "tags", "created_at", "updated_at").
		Values(c.Name, c.Image, c.Host, c.State, c.Tags, c.CreatedAt, c.UpdatedAt).
		Suffix("ON CONFLICT (host, name) DO UPDATE SET " +
			"image = EXCLUDED.image, state = EXCLUDED.state, " +
			"tags = EXCLUDED.tags, updated_at = EXCLUDED.updated_at " +
			"RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return id, nil
}

func (cr ContainersPostgresRepo) ListContainers(ctx context.Context, //nolint:nonamedreturns
	req repo.ListRequest,
) (containers []models.Container, err error) {
	tx, err := cr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list containers")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("id", "name", "image", "host", "state", "tags", "created_at", "updated_at").
		From("containers").
		OrderBy("id ASC")

	if req.Host != "" {
		sb = sb.Where(squirrel.Eq{"host": req.Host})
	}

	if req.State != "" {
		sb = sb.Where(squirrel.Eq{"state": req.State})
	}

	if req.Offset != 0 {
		sb = sb.Offset(uint64(req.Offset))
	}

	if req.Limit != 0 {
		sb = sb.Limit(uint64(req.Limit))
	}

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	containers = make([]models.Container, 0, 10) //nolint:gomnd

	for rows.Next() {
		var c models.Container

		if err = rows.Scan(&c.ID, &c.Name, &c.Image, &c.Host, &c.State,
			&c.Tags, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		containers = append(containers, c)
	}

	return containers, nil
}

func (cr ContainersPostgresRepo) DeleteContainer(ctx context.Context, id int64) (err error) { //nolint:nonamedreturns
	tx, err := cr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete container")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("containers").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (cr ContainersPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		cr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}
