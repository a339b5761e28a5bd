package persons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/personauth/internal/common"
	"github.com/dmitrijs2005/personauth/internal/dbx"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]models.Person, error) {
	query := `SELECT id, login, password FROM persons ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Person, 0)
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Login, &p.Password); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	return r.findOne(ctx, `SELECT id, login, password FROM persons WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Person, error) {
	return r.findOne(ctx, `SELECT id, login, password FROM persons WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) FindByLogin(ctx context.Context, login string) (*models.Person, error) {
	return r.findOne(ctx, `SELECT id, login, password FROM persons WHERE login = $1`, login)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Person, error) {
	p := &models.Person{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Login, &p.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM persons WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	query :=
		`INSERT INTO persons (login, password)
		 VALUES ($1, $2)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, p.Login, p.Password).Scan(&p.ID); err != nil {
		return nil, wrapWriteError(err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Person) error {
	query :=
		`UPDATE persons SET login = $2, password = $3
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Login, p.Password)
	if err != nil {
		return wrapWriteError(err)
	}
	return requireAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// wrapWriteError marks unique violations on login with common.ErrLoginTaken
// while keeping the driver error in the chain.
func wrapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("db error: %w: %w", common.ErrLoginTaken, err)
	}
	return fmt.Errorf("db error: %w", err)
}
