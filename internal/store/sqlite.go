package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/verdantex/comms-center/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertMessages inserts or replaces a batch of messages.
func (s *SQLiteStore) UpsertMessages(
	ctx context.Context,
	msgs []model.Message,
) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO messages (
			id, project_id, counterparty_id,
			sender_id, sender_name, subject, body,
			priority, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range msgs {
		_, err = stmt.ExecContext(ctx,
			m.ID, m.ProjectID, m.CounterpartyID,
			m.SenderID, m.SenderName, m.Subject, m.Body,
			string(m.Priority), boolToInt(m.Read), m.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting message %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// GetMessages retrieves one scope's feed ordered by arrival.
func (s *SQLiteStore) GetMessages(
	ctx context.Context,
	scope model.ConversationScope,
) ([]model.Message, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM messages
		WHERE project_id = ? AND counterparty_id = ?
		ORDER BY created_at ASC`,
		scope.ProjectID, scope.CounterpartyID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notifications (
			id, kind, title, body,
			project_id, project_title, sender_id, sender_name,
			priority, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Kind), n.Title, n.Body,
		n.ProjectID, n.ProjectTitle, n.SenderID, n.SenderName,
		string(n.Priority), boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetNotifications retrieves all notifications, newest first.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE read = 0",
	)
	if err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification by ID.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", id, err)
	}
	return nil
}

// UpsertConversations inserts or replaces conversation summaries.
func (s *SQLiteStore) UpsertConversations(
	ctx context.Context,
	summaries []model.ConversationSummary,
) error {
	if len(summaries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO conversations (
			project_id, project_title, counterparty_id, counterparty_name,
			last_message, unread_count, total_messages, status, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range summaries {
		lastJSON, err := json.Marshal(c.LastMessage)
		if err != nil {
			return fmt.Errorf(
				"marshaling last message for project %s: %w", c.ProjectID, err,
			)
		}

		_, err = stmt.ExecContext(ctx,
			c.ProjectID, c.ProjectTitle, c.CounterpartyID, c.CounterpartyName,
			string(lastJSON), c.UnreadCount, c.TotalMessages,
			string(c.Status), time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting conversation %s: %w", c.ProjectID, err)
		}
	}

	return tx.Commit()
}

// GetConversations retrieves all cached conversation summaries.
func (s *SQLiteStore) GetConversations(
	ctx context.Context,
) ([]model.ConversationSummary, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM conversations ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var summaries []model.ConversationSummary
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, c)
	}

	return summaries, rows.Err()
}

// MarkConversationRead zeroes the cached unread count for a project.
func (s *SQLiteStore) MarkConversationRead(
	ctx context.Context,
	projectID string,
) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET unread_count = 0 WHERE project_id = ?`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf(
			"marking conversation %s read: %w", projectID, err,
		)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE messages SET read = 1 WHERE project_id = ?`, projectID,
	)
	if err != nil {
		return fmt.Errorf(
			"marking messages for project %s read: %w", projectID, err,
		)
	}
	return nil
}

// scanMessage scans a message row from a sqlx.Rows result set.
func scanMessage(rows *sqlx.Rows) (model.Message, error) {
	var (
		m         model.Message
		priority  string
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(
		&m.ID, &m.ProjectID, &m.CounterpartyID,
		&m.SenderID, &m.SenderName, &m.Subject, &m.Body,
		&priority, &readInt, &createdAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("scanning message row: %w", err)
	}

	m.Priority = model.Priority(priority)
	m.Read = readInt != 0
	m.CreatedAt = createdAt

	return m, nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		kind      string
		priority  string
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &kind, &n.Title, &n.Body,
		&n.ProjectID, &n.ProjectTitle, &n.SenderID, &n.SenderName,
		&priority, &readInt, &createdAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Kind = model.NotificationKind(kind)
	n.Priority = model.Priority(priority)
	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// scanConversation scans a conversation row from a sqlx.Rows result set.
func scanConversation(rows *sqlx.Rows) (model.ConversationSummary, error) {
	var (
		c         model.ConversationSummary
		lastJSON  string
		status    string
		updatedAt time.Time
	)

	err := rows.Scan(
		&c.ProjectID, &c.ProjectTitle, &c.CounterpartyID, &c.CounterpartyName,
		&lastJSON, &c.UnreadCount, &c.TotalMessages, &status, &updatedAt,
	)
	if err != nil {
		return model.ConversationSummary{}, fmt.Errorf("scanning conversation row: %w", err)
	}

	c.Status = model.VerificationStatus(status)

	if lastJSON != "" {
		if err := json.Unmarshal([]byte(lastJSON), &c.LastMessage); err != nil {
			return model.ConversationSummary{}, fmt.Errorf(
				"unmarshaling last message: %w", err,
			)
		}
	}

	return c, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
