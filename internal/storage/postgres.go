package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"campaignpulse/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS classified_comments (
		id            TEXT PRIMARY KEY,
		external_id   TEXT NOT NULL,
		author        TEXT NOT NULL DEFAULT '',
		username      TEXT NOT NULL DEFAULT '',
		content       TEXT NOT NULL,
		source        TEXT NOT NULL,
		query         TEXT NOT NULL DEFAULT '',
		campaign      TEXT NOT NULL,
		topic         TEXT NOT NULL,
		rule          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		classified_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS classified_comments_topic_idx ON classified_comments (campaign, topic);
`

const selectColumns = `id, external_id, author, username, content, source, query, campaign, topic, rule, created_at, classified_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

// NewPostgresDB wraps an already opened database.
func NewPostgresDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// Save stores a classified comment. A comment that was already stored keeps
// its first classification.
func (p *Postgres) Save(ctx context.Context, c domain.ClassifiedComment) error {
	query := `
		INSERT INTO classified_comments (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query,
		c.ID,
		c.ExternalID,
		c.Author,
		c.Username,
		c.Content,
		c.Source,
		c.Query,
		c.Campaign,
		c.Topic,
		c.Rule,
		c.CreatedAt,
		c.ClassifiedAt,
	)

	return err
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*domain.ClassifiedComment, error) {
	query := `SELECT ` + selectColumns + ` FROM classified_comments WHERE id = $1`

	c, err := scanComment(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (p *Postgres) FindAll(ctx context.Context, limit, offset int) ([]domain.ClassifiedComment, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM classified_comments ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`
	return p.list(ctx, query, limit, offset)
}

func (p *Postgres) FindByTopic(ctx context.Context, topic string, limit, offset int) ([]domain.ClassifiedComment, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM classified_comments WHERE topic = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	return p.list(ctx, query, topic, limit, offset)
}

func (p *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM classified_comments WHERE id = $1)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (p *Postgres) TopicCounts(ctx context.Context, campaign string) (map[string]int64, error) {
	query := `
		SELECT topic, COUNT(*) FROM classified_comments
		WHERE campaign = $1 GROUP BY topic
	`

	rows, err := p.db.QueryContext(ctx, query, campaign)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			topic string
			n     int64
		)
		if err := rows.Scan(&topic, &n); err != nil {
			return nil, err
		}
		counts[topic] = n
	}

	return counts, rows.Err()
}

func (p *Postgres) list(ctx context.Context, query string, args ...any) ([]domain.ClassifiedComment, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.ClassifiedComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}

	return comments, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (*domain.ClassifiedComment, error) {
	var c domain.ClassifiedComment
	err := s.Scan(
		&c.ID,
		&c.ExternalID,
		&c.Author,
		&c.Username,
		&c.Content,
		&c.Source,
		&c.Query,
		&c.Campaign,
		&c.Topic,
		&c.Rule,
		&c.CreatedAt,
		&c.ClassifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
