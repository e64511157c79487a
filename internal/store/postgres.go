package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/link-clicks/internal/links"
)

const foreignKeyViolation = "23503"

const linkColumns = `id, owner_id, original_url, target_param_name, target_values, created_at`

// PostgresStore is a PostgreSQL implementation of links.Repository, links.ClickLog and links.Owners.
// Click events live in their own append-only table keyed by link id and sequence number.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Create(ctx context.Context, link *links.Link) error {
	query := `
		INSERT INTO links (id, owner_id, original_url, target_param_name, target_values, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`

	targetValues, err := json.Marshal(nonNil(link.TargetValues))
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, query,
		string(link.ID),
		string(link.OwnerID),
		link.OriginalURL,
		link.TargetParamName,
		string(targetValues),
		link.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return links.ErrOwnerNotFound
	}

	return err
}

func (p *PostgresStore) Get(ctx context.Context, id links.ID) (*links.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrLinkNotFound
		}

		return nil, err
	}

	return link, nil
}

// Update changes only the columns present in patch, in a single statement.
func (p *PostgresStore) Update(ctx context.Context, id links.ID, patch links.Patch) (*links.Link, error) {
	query := `
		UPDATE links SET
			original_url      = COALESCE($2, original_url),
			target_param_name = COALESCE($3, target_param_name),
			target_values     = COALESCE($4::jsonb, target_values)
		WHERE id = $1
		RETURNING ` + linkColumns

	var targetValues *string

	if patch.TargetValues != nil {
		raw, err := json.Marshal(nonNil(*patch.TargetValues))
		if err != nil {
			return nil, err
		}

		s := string(raw)
		targetValues = &s
	}

	link, err := scanLink(p.pool.QueryRow(ctx, query,
		string(id),
		patch.OriginalURL,
		patch.TargetParamName,
		targetValues,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrLinkNotFound
		}

		return nil, err
	}

	return link, nil
}

// Delete removes the link; its clicks go with it through ON DELETE CASCADE.
func (p *PostgresStore) Delete(ctx context.Context, id links.ID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, string(id))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return links.ErrLinkNotFound
	}

	return nil
}

func (p *PostgresStore) List(ctx context.Context) ([]links.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at, id`

	return p.queryLinks(ctx, query)
}

func (p *PostgresStore) ListByOwner(ctx context.Context, owner links.OwnerID) ([]links.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = $1 ORDER BY created_at, id`

	return p.queryLinks(ctx, query, string(owner))
}

func (p *PostgresStore) queryLinks(ctx context.Context, query string, args ...any) ([]links.Link, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]links.Link, 0)

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, *link)
	}

	return result, rows.Err()
}

// Append inserts one click row. The link's existence is enforced by the foreign key, so
// concurrent appends never contend on the link row or read the existing log.
func (p *PostgresStore) Append(ctx context.Context, id links.ID, event links.ClickEvent) error {
	query := `
		INSERT INTO link_clicks (link_id, ip_address, target_param_value, inserted_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()))
	`

	var insertedAt *time.Time
	if !event.InsertedAt.IsZero() {
		insertedAt = &event.InsertedAt
	}

	_, err := p.pool.Exec(ctx, query,
		string(id),
		event.IPAddress,
		event.TargetParamValue,
		insertedAt,
	)
	if isForeignKeyViolation(err) {
		return links.ErrLinkNotFound
	}

	return err
}

// ReadAll reads the link's existence and its clicks from one snapshot.
func (p *PostgresStore) ReadAll(ctx context.Context, id links.ID) ([]links.ClickEvent, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM links WHERE id = $1)`, string(id)).Scan(&exists); err != nil {
		return nil, err
	}

	if !exists {
		return nil, links.ErrLinkNotFound
	}

	rows, err := tx.Query(ctx, `
		SELECT inserted_at, ip_address, target_param_value
		FROM link_clicks
		WHERE link_id = $1
		ORDER BY seq
	`, string(id))
	if err != nil {
		return nil, err
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (links.ClickEvent, error) {
		var e links.ClickEvent
		err := row.Scan(&e.InsertedAt, &e.IPAddress, &e.TargetParamValue)

		return e, err
	})
	if err != nil {
		return nil, err
	}

	return events, tx.Commit(ctx)
}

func (p *PostgresStore) Register(ctx context.Context, owner links.OwnerID) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO owners (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, string(owner))

	return err
}

func (p *PostgresStore) Exists(ctx context.Context, owner links.OwnerID) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM owners WHERE id = $1)`, string(owner)).Scan(&exists)

	return exists, err
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func scanLink(row pgx.Row) (*links.Link, error) {
	var (
		link         links.Link
		id, owner    string
		targetValues []byte
	)

	err := row.Scan(
		&id,
		&owner,
		&link.OriginalURL,
		&link.TargetParamName,
		&targetValues,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.ID = links.ID(id)
	link.OwnerID = links.OwnerID(owner)

	if err = json.Unmarshal(targetValues, &link.TargetValues); err != nil {
		return nil, err
	}

	return &link, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func nonNil(values []links.TargetValue) []links.TargetValue {
	if values == nil {
		return []links.TargetValue{}
	}

	return values
}

// Compile-time checks.
var (
	_ links.Repository = (*PostgresStore)(nil)
	_ links.ClickLog   = (*PostgresStore)(nil)
	_ links.Owners     = (*PostgresStore)(nil)
)
