// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/kkolinko/jtrac/internal/model"
	"github.com/kkolinko/jtrac/internal/search"
	"github.com/kkolinko/jtrac/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return queryCreateWorkspace(ctx, s.db, ws)
}

func (s *PostgresStore) GetWorkspace(ctx context.Context, id int64) (*model.Workspace, error) {
	return queryGetWorkspace(ctx, s.db, id)
}

func (s *PostgresStore) GetWorkspaceByPrefix(ctx context.Context, prefixCode string) (*model.Workspace, error) {
	return queryGetWorkspaceByPrefix(ctx, s.db, prefixCode)
}

func (s *PostgresStore) UpdateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return queryUpdateWorkspace(ctx, s.db, ws)
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context) ([]*model.Workspace, error) {
	return queryListWorkspaces(ctx, s.db)
}

func (s *PostgresStore) FindWorkspacesByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error) {
	return queryFindWorkspacesByIDs(ctx, s.db, ids)
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	return queryCreateUser(ctx, s.db, u)
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return queryGetUser(ctx, s.db, id)
}

func (s *PostgresStore) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return queryGetUserByLogin(ctx, s.db, login)
}

func (s *PostgresStore) FindUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	return queryFindUsersByIDs(ctx, s.db, ids)
}

func (s *PostgresStore) GrantAccess(ctx context.Context, userID, workspaceID int64) error {
	return queryGrantAccess(ctx, s.db, userID, workspaceID)
}

func (s *PostgresStore) VisibleWorkspaces(ctx context.Context, userID int64) ([]*model.Workspace, error) {
	return queryVisibleWorkspaces(ctx, s.db, userID)
}

func (s *PostgresStore) CreateItem(ctx context.Context, item *model.Item) error {
	return queryCreateItem(ctx, s.db, item)
}

func (s *PostgresStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return queryGetItem(ctx, s.db, id)
}

func (s *PostgresStore) GetItemByRef(ctx context.Context, ref model.RefID) (*model.Item, error) {
	return queryGetItemByRef(ctx, s.db, ref)
}

func (s *PostgresStore) UpdateItem(ctx context.Context, item *model.Item) error {
	return queryUpdateItem(ctx, s.db, item)
}

func (s *PostgresStore) MoveItem(ctx context.Context, item *model.Item, target *model.Workspace) error {
	return queryMoveItem(ctx, s.db, item, target)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, ev *model.HistoryEvent) error {
	return queryRecordEvent(ctx, s.db, ev)
}

func (s *PostgresStore) GetEvents(ctx context.Context, itemID int64) ([]*model.HistoryEvent, error) {
	return queryGetEvents(ctx, s.db, itemID)
}

func (s *PostgresStore) FindItems(ctx context.Context, req *search.Request) ([]*model.Item, error) {
	return queryFindItems(ctx, s.db, req)
}

func (s *PostgresStore) FindEvents(ctx context.Context, req *search.Request) ([]*model.HistoryEvent, error) {
	return queryFindEvents(ctx, s.db, req)
}

func (s *PostgresStore) FindItemIDsContainingText(ctx context.Context, req *search.Request, text string) ([]int64, error) {
	return queryFindItemIDsContainingText(ctx, s.db, req, text)
}

func (s *PostgresStore) CountItems(ctx context.Context) (int64, error) {
	return queryCountItems(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return queryCreateWorkspace(ctx, s.tx, ws)
}

func (s *txStore) GetWorkspace(ctx context.Context, id int64) (*model.Workspace, error) {
	return queryGetWorkspace(ctx, s.tx, id)
}

func (s *txStore) GetWorkspaceByPrefix(ctx context.Context, prefixCode string) (*model.Workspace, error) {
	return queryGetWorkspaceByPrefix(ctx, s.tx, prefixCode)
}

func (s *txStore) UpdateWorkspace(ctx context.Context, ws *model.Workspace) error {
	return queryUpdateWorkspace(ctx, s.tx, ws)
}

func (s *txStore) ListWorkspaces(ctx context.Context) ([]*model.Workspace, error) {
	return queryListWorkspaces(ctx, s.tx)
}

func (s *txStore) FindWorkspacesByIDs(ctx context.Context, ids []int64) ([]*model.Workspace, error) {
	return queryFindWorkspacesByIDs(ctx, s.tx, ids)
}

func (s *txStore) CreateUser(ctx context.Context, u *model.User) error {
	return queryCreateUser(ctx, s.tx, u)
}

func (s *txStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return queryGetUser(ctx, s.tx, id)
}

func (s *txStore) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return queryGetUserByLogin(ctx, s.tx, login)
}

func (s *txStore) FindUsersByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	return queryFindUsersByIDs(ctx, s.tx, ids)
}

func (s *txStore) GrantAccess(ctx context.Context, userID, workspaceID int64) error {
	return queryGrantAccess(ctx, s.tx, userID, workspaceID)
}

func (s *txStore) VisibleWorkspaces(ctx context.Context, userID int64) ([]*model.Workspace, error) {
	return queryVisibleWorkspaces(ctx, s.tx, userID)
}

func (s *txStore) CreateItem(ctx context.Context, item *model.Item) error {
	return queryCreateItem(ctx, s.tx, item)
}

func (s *txStore) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return queryGetItem(ctx, s.tx, id)
}

func (s *txStore) GetItemByRef(ctx context.Context, ref model.RefID) (*model.Item, error) {
	return queryGetItemByRef(ctx, s.tx, ref)
}

func (s *txStore) UpdateItem(ctx context.Context, item *model.Item) error {
	return queryUpdateItem(ctx, s.tx, item)
}

func (s *txStore) MoveItem(ctx context.Context, item *model.Item, target *model.Workspace) error {
	return queryMoveItem(ctx, s.tx, item, target)
}

func (s *txStore) RecordEvent(ctx context.Context, ev *model.HistoryEvent) error {
	return queryRecordEvent(ctx, s.tx, ev)
}

func (s *txStore) GetEvents(ctx context.Context, itemID int64) ([]*model.HistoryEvent, error) {
	return queryGetEvents(ctx, s.tx, itemID)
}

func (s *txStore) FindItems(ctx context.Context, req *search.Request) ([]*model.Item, error) {
	return queryFindItems(ctx, s.tx, req)
}

func (s *txStore) FindEvents(ctx context.Context, req *search.Request) ([]*model.HistoryEvent, error) {
	return queryFindEvents(ctx, s.tx, req)
}

func (s *txStore) FindItemIDsContainingText(ctx context.Context, req *search.Request, text string) ([]int64, error) {
	return queryFindItemIDsContainingText(ctx, s.tx, req, text)
}

func (s *txStore) CountItems(ctx context.Context) (int64, error) {
	return queryCountItems(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
