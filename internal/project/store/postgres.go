package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/web-lizzard/review-genie/internal/project/models"
	"github.com/web-lizzard/review-genie/internal/project/ports"
	dErrors "github.com/web-lizzard/review-genie/pkg/domain-errors"
	"github.com/web-lizzard/review-genie/pkg/platform/sentinel"
)

//go:embed schema.sql
var Schema string

const (
	defaultTxTimeout        = 30 * time.Second
	uniqueViolationSQLSTATE = "23505"
)

// Migrate applies the idempotent project schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply project schema: %w", err)
	}
	return nil
}

// PostgresStore persists projects and their outbox rows in PostgreSQL.
// Works with both the lib/pq ("postgres") and pgx ("pgx") drivers.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

type PostgresOption func(*PostgresStore)

// WithTxTimeout bounds units of work whose context carries no deadline. The
// bound covers remote verification, which runs inside the unit of work.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	cancel := context.CancelFunc(func() {})
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("begin project tx: %w", err)
	}
	return &postgresUnitOfWork{tx: tx, cancel: cancel}, nil
}

const projectColumns = `project_id, repo_id, provider, pull_request_policy, retry_limit_type,
	retry_limit_value, owner, url, rules_text, created_at, updated_at`

func (s *PostgresStore) FindOne(ctx context.Context, id models.ProjectID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1`
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindAll(ctx context.Context, filter ports.Filter) ([]*models.Project, error) {
	var providers []string
	for _, p := range filter.Providers {
		providers = append(providers, p.String())
	}
	limit := sql.NullInt64{Int64: int64(filter.Limit), Valid: filter.Limit > 0}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE $1::text[] IS NULL OR provider = ANY($1)
		ORDER BY created_at DESC, project_id
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(providers), limit)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FetchUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []ports.OutboxMessage
	for rows.Next() {
		var m ports.OutboxMessage
		if err := rows.Scan(&m.ID, &m.AggregateType, &m.AggregateID, &m.EventType, &m.Payload, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[]) AND published_at IS NULL`,
		pq.Array(raw), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var r models.Record
	if err := row.Scan(
		&r.ProjectID,
		&r.RepositoryID,
		&r.Provider,
		&r.PullRequestPolicy,
		&r.RetryLimitType,
		&r.RetryLimitValue,
		&r.Owner,
		&r.URL,
		&r.RulesText,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return models.FromRecord(r)
}

type postgresUnitOfWork struct {
	tx     *sql.Tx
	cancel context.CancelFunc
}

func (u *postgresUnitOfWork) Exists(ctx context.Context, spec ports.Specification) (bool, error) {
	switch sp := spec.(type) {
	case ports.ProjectAlreadyExistsSpecification:
		var exists bool
		err := u.tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE project_id = $1)`,
			sp.ProjectID.String(),
		).Scan(&exists)
		if err != nil {
			return false, mapTxErr(err, "check project existence")
		}
		return exists, nil
	default:
		return false, fmt.Errorf("unsupported specification %T", spec)
	}
}

// Save inserts the project row and its outbox rows in the same transaction.
func (u *postgresUnitOfWork) Save(ctx context.Context, project *models.Project) error {
	r := models.ToRecord(project)
	_, err := u.tx.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		r.ProjectID,
		r.RepositoryID,
		r.Provider,
		r.PullRequestPolicy,
		r.RetryLimitType,
		r.RetryLimitValue,
		r.Owner,
		r.URL,
		r.RulesText,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrProjectAlreadyExists(project.ID())
		}
		return mapTxErr(err, "insert project")
	}

	messages, err := outboxMessages(project)
	if err != nil {
		return err
	}
	for _, m := range messages {
		_, err := u.tx.ExecContext(ctx, `
			INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.ID, m.AggregateType, m.AggregateID, m.EventType, m.Payload, m.CreatedAt)
		if err != nil {
			return mapTxErr(err, "insert outbox entry")
		}
	}
	return nil
}

func (u *postgresUnitOfWork) Commit(_ context.Context) error {
	defer u.cancel()
	if err := u.tx.Commit(); err != nil {
		return mapTxErr(err, "commit project tx")
	}
	return nil
}

func (u *postgresUnitOfWork) Rollback(_ context.Context) error {
	defer u.cancel()
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback project tx: %w", err)
	}
	return nil
}

func mapTxErr(err error, op string) error {
	if errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrTxDone)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation recognizes SQLSTATE 23505 from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationSQLSTATE
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationSQLSTATE
	}
	return false
}
