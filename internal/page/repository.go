package page

import (
	"context"
	"database/sql"
	"sort"

	"github.com/pkg/errors"

	"gowiki/internal/database"
	"gowiki/internal/models"
)

// Repository provides access to the page storage. Every method acquires one
// pooled connection, runs exactly one statement on it and releases it.
type Repository struct {
	Pool    *database.Pool
	Queries *database.Queries
}

// NewRepository creates a new page repository.
func NewRepository(pool *database.Pool, queries *database.Queries) *Repository {
	return &Repository{Pool: pool, Queries: queries}
}

// withConn runs fn on a pooled connection and releases the connection on
// every path. Statement errors are classified under op.
func (r *Repository) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) (err error) {
	conn, err := r.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := r.Pool.Release(conn); relErr != nil && err == nil {
			err = relErr
		}
	}()

	return database.Classify(op, fn(conn))
}

// PrepareSchema creates the pages table if it does not exist.
func (r *Repository) PrepareSchema(ctx context.Context) error {
	return r.withConn(ctx, "prepare schema", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.Queries.Get(database.CreatePagesTable))
		return err
	})
}

// ListNames returns the names of all pages in lexicographic order.
func (r *Repository) ListNames(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.withConn(ctx, "list pages", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.Queries.Get(database.AllPages))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// ListData returns the name and content of every page in storage order.
func (r *Repository) ListData(ctx context.Context) ([]models.PageData, error) {
	pages := []models.PageData{}
	err := r.withConn(ctx, "list pages data", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.Queries.Get(database.AllPagesData))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p models.PageData
			if err := rows.Scan(&p.Name, &p.Content); err != nil {
				return err
			}
			pages = append(pages, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// FindByName looks a page up by name. A missing page is reported through
// PageLookup.Found, not as an error.
func (r *Repository) FindByName(ctx context.Context, name string) (models.PageLookup, error) {
	var lookup models.PageLookup
	err := r.withConn(ctx, "get page", func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx, r.Queries.Get(database.GetPage), name).Scan(&lookup.ID, &lookup.RawContent)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		lookup.Found = true
		return nil
	})
	if err != nil {
		return models.PageLookup{}, err
	}
	return lookup, nil
}

// Create inserts a new page. A duplicate name yields ErrConstraintViolation.
func (r *Repository) Create(ctx context.Context, name, content string) error {
	return r.withConn(ctx, "create page", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.Queries.Get(database.CreatePage), name, content)
		return err
	})
}

// UpdateContent replaces the content of the page with the given id. An
// unknown id is not an error.
func (r *Repository) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.withConn(ctx, "save page", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.Queries.Get(database.SavePage), content, id)
		return err
	})
}

// Delete removes the page with the given id. An unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.withConn(ctx, "delete page", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.Queries.Get(database.DeletePage), id)
		return err
	})
}
