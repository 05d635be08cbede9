package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversational memory in PostgreSQL with pgvector.
type PostgresStore struct {
	pool *pgxpool.Pool
	dim  int
}

func NewPostgresStore(ctx context.Context, databaseURL string, embeddingDim int) (*PostgresStore, error) {
	if embeddingDim <= 0 {
		embeddingDim = 768
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, embeddingDim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, dim: embeddingDim}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, dim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS conversation_memory (
			id TEXT PRIMARY KEY,
			user_email TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, dim),
		`CREATE INDEX IF NOT EXISTS idx_conversation_memory_user_created ON conversation_memory (user_email, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveTurn(ctx context.Context, turn Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	// ON CONFLICT keeps retried writes from the queue idempotent.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_memory (id, user_email, conversation_id, role, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::vector, $7)
		 ON CONFLICT (id) DO NOTHING`,
		turn.ID,
		turn.UserEmail,
		turn.ConversationID,
		string(turn.Role),
		turn.Text,
		s.vectorParam(turn.Embedding),
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentTurns(ctx context.Context, userEmail string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_email, conversation_id, role, content, created_at
		 FROM conversation_memory WHERE user_email=$1 ORDER BY created_at DESC LIMIT $2`,
		userEmail,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	items, err := scanTurns(rows, limit)
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (s *PostgresStore) RelevantTurns(ctx context.Context, userEmail string, query []float32, limit int) ([]Turn, error) {
	if IsZeroVector(query) {
		return s.RecentTurns(ctx, userEmail, limit)
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_email, conversation_id, role, content, created_at
		 FROM conversation_memory
		 WHERE user_email=$1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2::vector
		 LIMIT $3`,
		userEmail,
		s.vectorParam(query),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query relevant turns: %w", err)
	}
	items, err := scanTurns(rows, limit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return s.RecentTurns(ctx, userEmail, limit)
	}
	sortChronological(items)
	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanTurns(rows pgx.Rows, capacity int) ([]Turn, error) {
	defer rows.Close()
	items := make([]Turn, 0, capacity)
	for rows.Next() {
		var (
			t    Turn
			role string
		)
		if err := rows.Scan(&t.ID, &t.UserEmail, &t.ConversationID, &role, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		t.Role = Role(role)
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return items, nil
}

// vectorParam renders v in pgvector's text form, or nil for NULL.
func (s *PostgresStore) vectorParam(v []float32) any {
	if IsZeroVector(v) {
		return nil
	}
	return formatVector(v, s.dim)
}

func formatVector(v []float32, dim int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < dim; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		var x float32
		if i < len(v) {
			x = v[i]
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
