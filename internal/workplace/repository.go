package workplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListByBranch(ctx context.Context, branch Branch) ([]Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)

	// Seed inserts the given resources, skipping ids that already exist.
	// It returns the number of rows actually inserted.
	Seed(ctx context.Context, resources []Resource) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var resourceColumns = []string{"id", "name", "number_label", "kind", "branch", "x", "y", "capacity"}

func (r *pgxRepository) ListByBranch(ctx context.Context, branch Branch) ([]Resource, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(resourceColumns...).
		From("public.workplaces").
		Where(squirrel.Eq{"branch": string(branch)}).
		OrderBy("sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list workplaces query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workplaces failed: %w", err)
	}
	defer rows.Close()

	result := make([]Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workplace failed: %w", err)
		}
		result = append(result, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workplaces failed: %w", err)
	}
	return result, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(resourceColumns...).
		From("public.workplaces").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get workplace query failed: %w", err)
	}

	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get workplace failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) Seed(ctx context.Context, resources []Resource) (int, error) {
	if len(resources) == 0 {
		return 0, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := psql.Insert("public.workplaces").
		Columns(append(resourceColumns, "sort_order")...)
	for i, res := range resources {
		insert = insert.Values(
			res.ID, res.Name, res.Number, string(res.Kind), string(res.Branch),
			res.X, res.Y, res.Capacity, i,
		)
	}
	query, args, err := insert.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build seed workplaces query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("seed workplaces failed: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func scanResource(row pgx.Row) (*Resource, error) {
	var (
		res  Resource
		kind string
		br   string
	)
	if err := row.Scan(&res.ID, &res.Name, &res.Number, &kind, &br, &res.X, &res.Y, &res.Capacity); err != nil {
		return nil, err
	}
	res.Kind = Kind(kind)
	res.Branch = Branch(br)
	return &res, nil
}
