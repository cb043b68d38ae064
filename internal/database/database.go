package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultMaxPoolSize bounds the pool when no size is configured.
const DefaultMaxPoolSize = 30

// Options describes how to reach the backing store.
type Options struct {
	Driver         string
	URL            string
	MaxPoolSize    int
	AcquireTimeout time.Duration
}

// Pool is a bounded set of reusable connections. A connection returned by
// Acquire must be handed back with Release on every path.
type Pool struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// Open creates the pool and checks that the store is reachable.
func Open(opts Options) (*Pool, error) {
	if opts.MaxPoolSize <= 0 {
		opts.MaxPoolSize = DefaultMaxPoolSize
	}

	db, err := sql.Open(opts.Driver, opts.URL)
	if err != nil {
		return nil, &Error{Kind: ErrConnection, Op: "open", Err: err}
	}
	db.SetMaxOpenConns(opts.MaxPoolSize)
	db.SetMaxIdleConns(opts.MaxPoolSize)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &Error{Kind: ErrConnection, Op: "ping", Err: err}
	}

	return &Pool{db: db, acquireTimeout: opts.AcquireTimeout}, nil
}

// Acquire takes a connection from the pool, waiting at most the configured
// acquire timeout when the pool is exhausted.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, &Error{Kind: ErrConnection, Op: "acquire", Err: err}
	}
	return conn, nil
}

// Release hands a connection back to the pool.
func (p *Pool) Release(conn *sql.Conn) error {
	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return errors.Wrap(err, "release connection")
	}
	return nil
}

// InUse reports how many connections are currently acquired.
func (p *Pool) InUse() int {
	return p.db.Stats().InUse
}

// Close closes every connection of the pool.
func (p *Pool) Close() error {
	return p.db.Close()
}
