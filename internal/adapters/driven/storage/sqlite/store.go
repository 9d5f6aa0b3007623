package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veilchat/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veilchat/recall/internal/core/domain"
	"github.com/veilchat/recall/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MessageStore = (*Store)(nil)

// Store is the SQLite-backed message store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/messages.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "messages.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// messageColumns is the canonical column list for message scans.
const messageColumns = "id, thread_id, sender, body, sent_at, direction, embedding, embedding_version, embedded_at"

// SaveMessage stores or updates a message. A zero ID lets SQLite
// assign one, which is written back to msg.
func (s *Store) SaveMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return domain.ErrInvalidInput
	}

	var id any
	if msg.ID != 0 {
		id = msg.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, sender, body, sent_at, direction, embedding, embedding_version, embedded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thread_id = excluded.thread_id,
			sender = excluded.sender,
			body = excluded.body,
			sent_at = excluded.sent_at,
			direction = excluded.direction,
			embedding = excluded.embedding,
			embedding_version = excluded.embedding_version,
			embedded_at = excluded.embedded_at
	`, id, msg.ThreadID, msg.Sender, msg.Body, msg.SentAt.UTC(), string(msg.Direction),
		nullString(msg.Embedding), msg.EmbeddingVersion, nullableTime(msg.EmbeddedAt))

	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}

	if msg.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading inserted id: %w", err)
		}
		msg.ID = newID
	}
	return nil
}

// GetMessage retrieves a message by ID.
func (s *Store) GetMessage(ctx context.Context, id int64) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = ?", id)
	return scanMessageRow(row)
}

// DeleteMessage removes a message and its stored embedding.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// GetMessagesNeedingEmbedding returns up to limit messages without a
// current-version vector, ordered by ID.
func (s *Store) GetMessagesNeedingEmbedding(ctx context.Context, version, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE embedding IS NULL OR embedding = '' OR embedding_version != ?
		ORDER BY id
		LIMIT ?
	`, version, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pending messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetMessagesWithEmbeddings returns every message carrying a
// current-version vector, ordered by ID.
func (s *Store) GetMessagesWithEmbeddings(ctx context.Context, version int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE embedding IS NOT NULL AND embedding != '' AND embedding_version = ?
		ORDER BY id
	`, version)
	if err != nil {
		return nil, fmt.Errorf("querying embedded messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetMessagesWithEmbeddingsPaged returns one page of embedded
// messages. Ordering by the immutable id column guarantees pages never
// skip or repeat rows under concurrent writes.
func (s *Store) GetMessagesWithEmbeddingsPaged(ctx context.Context, version, limit, offset int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE embedding IS NOT NULL AND embedding != '' AND embedding_version = ?
		ORDER BY id
		LIMIT ? OFFSET ?
	`, version, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying embedded messages page: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// UpdateEmbedding writes vector, version and generation timestamp in a
// single statement.
func (s *Store) UpdateEmbedding(ctx context.Context, id int64, embedding string, version int, generatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages
		SET embedding = ?, embedding_version = ?, embedded_at = ?
		WHERE id = ?
	`, embedding, version, generatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetAllMessageBodies returns the body of every message, ordered by ID.
func (s *Store) GetAllMessageBodies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM messages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying message bodies: %w", err)
	}
	defer rows.Close()

	var bodies []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning message body: %w", err)
		}
		bodies = append(bodies, body)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating message bodies: %w", err)
	}
	return bodies, nil
}

// GetTotalMessageCount returns the number of stored messages.
func (s *Store) GetTotalMessageCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}

// GetEmbeddedMessageCount returns the number of messages carrying a
// current-version vector.
func (s *Store) GetEmbeddedMessageCount(ctx context.Context, version int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE embedding IS NOT NULL AND embedding != '' AND embedding_version = ?
	`, version).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embedded messages: %w", err)
	}
	return count, nil
}

// ListThreads returns conversation summaries ordered by most recent
// activity.
func (s *Store) ListThreads(ctx context.Context, limit int) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, GROUP_CONCAT(DISTINCT sender), COUNT(*), MAX(sent_at)
		FROM messages
		GROUP BY thread_id
		ORDER BY MAX(sent_at) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Thread
		var title sql.NullString
		var lastActivity sql.NullTime
		if err := rows.Scan(&t.ID, &title, &t.MessageCount, &lastActivity); err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		t.Title = title.String
		if lastActivity.Valid {
			t.LastActivity = lastActivity.Time
		}
		threads = append(threads, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating threads: %w", err)
	}
	return threads, nil
}

// ==================== Helper Functions ====================

// rowScanner abstracts *sql.Row and *sql.Rows for message scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(sc rowScanner) (*domain.Message, error) {
	var msg domain.Message
	var direction string
	var embedding sql.NullString
	var sentAt, embeddedAt sql.NullTime

	if err := sc.Scan(&msg.ID, &msg.ThreadID, &msg.Sender, &msg.Body,
		&sentAt, &direction, &embedding, &msg.EmbeddingVersion, &embeddedAt); err != nil {
		return nil, err
	}

	msg.Direction = domain.Direction(direction)
	msg.Embedding = embedding.String
	if sentAt.Valid {
		msg.SentAt = sentAt.Time
	}
	if embeddedAt.Valid {
		msg.EmbeddedAt = embeddedAt.Time
	}
	return &msg, nil
}

func scanMessageRow(row *sql.Row) (*domain.Message, error) {
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning message: %w", err)
	}
	return msg, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	var msgs []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, *msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// nullString converts an empty string to nil for nullable columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to the 0/1 convention used in the schema.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableTime converts a zero time to nil for nullable DATETIME columns.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// formatNullableTime formats a time as RFC3339, or nil for zero times.
// Used by the scheduler tables, which store timestamps as TEXT.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseNullableTime parses an RFC3339 string, returning the zero time
// for NULL or malformed values.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
