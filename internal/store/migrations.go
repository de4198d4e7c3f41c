package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL,
	counterparty_id TEXT NOT NULL,
	sender_id       TEXT NOT NULL,
	sender_name     TEXT NOT NULL DEFAULT '',
	subject         TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL DEFAULT '',
	priority        TEXT NOT NULL DEFAULT 'normal'
		CHECK(priority IN ('low', 'normal', 'high', 'urgent')),
	read            INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL DEFAULT 'message'
		CHECK(kind IN ('message', 'reply', 'urgent', 'system')),
	title         TEXT NOT NULL,
	body          TEXT NOT NULL DEFAULT '',
	project_id    TEXT NOT NULL DEFAULT '',
	project_title TEXT NOT NULL DEFAULT '',
	sender_id     TEXT NOT NULL DEFAULT '',
	sender_name   TEXT NOT NULL DEFAULT '',
	priority      TEXT NOT NULL DEFAULT 'normal',
	read          INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS conversations (
	project_id        TEXT PRIMARY KEY,
	project_title     TEXT NOT NULL DEFAULT '',
	counterparty_id   TEXT NOT NULL,
	counterparty_name TEXT NOT NULL DEFAULT '',
	last_message      TEXT NOT NULL DEFAULT '{}',
	unread_count      INTEGER NOT NULL DEFAULT 0,
	total_messages    INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL DEFAULT 'assigned',
	updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_scope
	ON messages(project_id, counterparty_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notifications_project
	ON notifications(project_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
