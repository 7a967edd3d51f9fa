package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Pool hands out database handles. Every call obtains a fresh session
// with its own lifetime; read-only traffic is spread round-robin over
// replicas and falls back to a writable connection when none exist.
type Pool interface {
	DB(ctx context.Context, readOnly bool) *gorm.DB
	AddConnection(ctx context.Context, dsn string, readOnly bool, opts ...PoolOption) error
	Close(ctx context.Context)
}

// PoolOption configures database connection settings.
type PoolOption func(*PoolOptions)

// PoolOptions holds connection configuration.
type PoolOptions struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration

	PreferSimpleProtocol   bool
	SkipDefaultTransaction bool
}

// WithMaxOpen returns a PoolOption to configure max open connections.
func WithMaxOpen(maxOpen int) PoolOption {
	return func(o *PoolOptions) {
		o.MaxOpen = maxOpen
	}
}

// WithMaxIdle returns a PoolOption to configure max idle connections.
func WithMaxIdle(maxIdle int) PoolOption {
	return func(o *PoolOptions) {
		o.MaxIdle = maxIdle
	}
}

// WithMaxLifetime returns a PoolOption to configure connection max lifetime.
func WithMaxLifetime(maxLifetime time.Duration) PoolOption {
	return func(o *PoolOptions) {
		o.MaxLifetime = maxLifetime
	}
}

// WithPreferSimpleProtocol returns a PoolOption to configure the simple
// query protocol preference.
func WithPreferSimpleProtocol(preferSimpleProtocol bool) PoolOption {
	return func(o *PoolOptions) {
		o.PreferSimpleProtocol = preferSimpleProtocol
	}
}

// WithSkipDefaultTransaction returns a PoolOption to configure gorm's
// per statement transaction wrapping.
func WithSkipDefaultTransaction(skipDefaultTransaction bool) PoolOption {
	return func(o *PoolOptions) {
		o.SkipDefaultTransaction = skipDefaultTransaction
	}
}

type pool struct {
	readIdx     uint64       // atomic counter for round-robin
	writeIdx    uint64       // atomic counter for round-robin
	mu          sync.RWMutex // protects db slices
	allReadDBs  []*gorm.DB
	allWriteDBs []*gorm.DB
}

// NewPool creates an empty pool; connections are attached with
// AddConnection.
func NewPool(_ context.Context) Pool {
	return &pool{
		allReadDBs:  []*gorm.DB{},
		allWriteDBs: []*gorm.DB{},
	}
}

// AddConnection safely adds a DB connection to the pool.
func (s *pool) AddConnection(ctx context.Context, dsn string, readOnly bool, opts ...PoolOption) error {
	poolOpts := &PoolOptions{
		PreferSimpleProtocol:   true,
		SkipDefaultTransaction: true,
	}

	for _, opt := range opts {
		opt(poolOpts)
	}

	db, err := createConnection(ctx, dsn, poolOpts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if readOnly {
		s.allReadDBs = append(s.allReadDBs, db)
	} else {
		s.allWriteDBs = append(s.allWriteDBs, db)
	}
	s.mu.Unlock()

	return nil
}

func (s *pool) Close(_ context.Context) {
	s.mu.RLock()
	readDBs := append([]*gorm.DB(nil), s.allReadDBs...)
	writeDBs := append([]*gorm.DB(nil), s.allWriteDBs...)
	s.mu.RUnlock()

	for _, db := range append(readDBs, writeDBs...) {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

// DB returns the next handle in round-robin order.
func (s *pool) DB(ctx context.Context, readOnly bool) *gorm.DB {
	var selectedDB *gorm.DB

	s.mu.RLock()
	if readOnly && len(s.allReadDBs) != 0 {
		selectedDB = s.selectOne(s.allReadDBs, &s.readIdx)
	}

	if selectedDB == nil {
		selectedDB = s.selectOne(s.allWriteDBs, &s.writeIdx)
	}
	s.mu.RUnlock()

	if selectedDB == nil {
		return nil
	}

	return selectedDB.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
}

// selectOne uses atomic round-robin for high concurrency.
func (s *pool) selectOne(dbs []*gorm.DB, idx *uint64) *gorm.DB {
	if len(dbs) == 0 {
		return nil
	}
	pos := atomic.AddUint64(idx, 1)
	return dbs[int(pos-1)%len(dbs)]
}

func createConnection(ctx context.Context, dsn string, poolOpts *PoolOptions) (*gorm.DB, error) {
	cleanedPostgresqlDSN, err := cleanPostgresDSN(dsn)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(cleanedPostgresqlDSN)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	if poolOpts.MaxOpen > 0 {
		cfg.MaxConns = int32(poolOpts.MaxOpen)
	}
	if poolOpts.MaxIdle > 0 {
		cfg.MinConns = int32(poolOpts.MaxIdle)
	}
	if poolOpts.MaxLifetime > 0 {
		cfg.MaxConnLifetime = poolOpts.MaxLifetime
	}

	pgxPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	err = otelpgx.RecordStats(pgxPool)
	if err != nil {
		return nil, fmt.Errorf("unable to record database stats: %w", err)
	}

	conn := stdlib.OpenDBFromPool(pgxPool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 conn,
			PreferSimpleProtocol: poolOpts.PreferSimpleProtocol,
		}),
		&gorm.Config{
			SkipDefaultTransaction: poolOpts.SkipDefaultTransaction,
		},
	)
	if err != nil {
		return nil, err
	}

	return gormDB, nil
}

// cleanPostgresDSN checks if the input is already a DSN, otherwise converts a PostgreSQL URL to DSN.
func cleanPostgresDSN(pgString string) (string, error) {
	trimmed := strings.TrimSpace(pgString)
	// Heuristic: if it contains '=' and does not start with postgres:// or postgresql://, treat as DSN
	lower := strings.ToLower(trimmed)
	if strings.Contains(trimmed, "=") && !strings.HasPrefix(lower, "postgres://") &&
		!strings.HasPrefix(lower, "postgresql://") {
		return trimmed, nil
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}

	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid scheme: %s", u.Scheme)
	}

	user := ""
	password := ""
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	dbname := strings.TrimPrefix(u.Path, "/")

	dsn := []string{
		"host=" + host,
		"port=" + port,
		"user=" + user,
		"password=" + password,
		"dbname=" + dbname,
	}
	for k, vals := range u.Query() {
		for _, v := range vals {
			dsn = append(dsn, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(dsn, " "), nil
}
