package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dockguard/dockguard/internal/dockguard/domain/models"
	"github.com/dockguard/dockguard/internal/dockguard/repository/userrepo"
	"github.com/dockguard/dockguard/internal/pkg/config"
	"github.com/dockguard/dockguard/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, username, password_hash, display_name, user_role, " +
	"visible_tags, hidden_tags, is_first_login, must_change_password, " +
	"created_at, updated_at, last_login"

type UsersPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (UsersPostgresRepo, error) {
	connString := "postgres://" + cfg.Username + ":" + cfg.Password + "@" +
		cfg.Addr + "/" + cfg.DB + "?" + "sslmode=" + cfg.SSLmode + "&pool_max_conns=" + cfg.MaxConns

	db, err := pgtools.Connect(ctx, connString)
	if err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return UsersPostgresRepo{
		db: db,
	}, nil
}

// CreateUser inserts the user row and its default preferences row in
// one transaction and returns the stored record with its id.
func (ur UsersPostgresRepo) CreateUser(ctx context.Context, //nolint:nonamedreturns
	u models.User,
) (created models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("users").
		Columns("username", "password_hash", "display_name", "user_role",
			"visible_tags", "hidden_tags", "is_first_login", "must_change_password",
			"created_at", "updated_at").
		Values(u.Username, u.PasswordHash, nullable(u.DisplayName), string(u.Role),
			u.VisibleTags, u.HiddenTags, u.IsFirstLogin, u.MustChangePassword,
			u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&u.ID); err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) {
			switch target.Code { //nolint:gocritic
			case "23505":
				return models.User{}, userrepo.ErrAlreadyExists
			}
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	query, args, err = psql.Insert("user_prefs").
		Columns("user_id", "theme", "created_at", "updated_at").
		Values(u.ID, models.DefaultTheme, u.CreatedAt, u.UpdatedAt).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return models.User{}, fmt.Errorf("exec error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) GetUser(ctx context.Context, username string) (models.User, error) {
	return ur.getUserWhere(ctx, squirrel.Eq{"username": username})
}

func (ur UsersPostgresRepo) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return ur.getUserWhere(ctx, squirrel.Eq{"id": id})
}

func (ur UsersPostgresRepo) getUserWhere(ctx context.Context, //nolint:nonamedreturns
	where squirrel.Eq,
) (u models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(userColumns).
		From("users").
		Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	u, err = scanUser(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, userrepo.ErrNotFound
		}

		return u, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) ListUsers(ctx context.Context) (users []models.User, err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list users")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(userColumns).
		From("users").
		OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	users = make([]models.User, 0, 10) //nolint:gomnd

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		users = append(users, u)
	}

	return users, nil
}

func (ur UsersPostgresRepo) CountByRole(ctx context.Context, //nolint:nonamedreturns
	role models.Role,
) (count int, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "count by role")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"user_role": string(role)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan error: %w", err)
	}

	return count, nil
}

func (ur UsersPostgresRepo) UpdateUser(ctx context.Context, u models.User) (err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("users").
		Set("password_hash", u.PasswordHash).
		Set("display_name", nullable(u.DisplayName)).
		Set("user_role", string(u.Role)).
		Set("visible_tags", u.VisibleTags).
		Set("hidden_tags", u.HiddenTags).
		Set("is_first_login", u.IsFirstLogin).
		Set("must_change_password", u.MustChangePassword).
		Set("updated_at", u.UpdatedAt).
		Set("last_login", u.LastLogin).
		Where(squirrel.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

// DeleteUser removes the preferences row before the user row so the
// foreign key constraint is satisfied.
func (ur UsersPostgresRepo) DeleteUser(ctx context.Context, id int) (err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("user_prefs").
		Where(squirrel.Eq{"user_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	query, args, err = psql.Delete("users").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

func (ur UsersPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		ur.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u       models.User
		display *string
	)

	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &display, &u.Role,
		&u.VisibleTags, &u.HiddenTags, &u.IsFirstLogin, &u.MustChangePassword,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
		return models.User{}, err
	}

	if display != nil {
		u.DisplayName = *display
	}

	return u, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}
