package sqlite

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

CREATE TABLE IF NOT EXISTS notifications (
	id                      TEXT PRIMARY KEY,
	artisan_id              TEXT NOT NULL,
	type                    TEXT NOT NULL,
	title                   TEXT NOT NULL,
	message                 TEXT NOT NULL DEFAULT '',
	status                  TEXT NOT NULL DEFAULT 'unread',
	urgent                  INTEGER NOT NULL DEFAULT 0,
	subject_intervention_id TEXT NOT NULL DEFAULT '',
	subject_invoice_id      TEXT NOT NULL DEFAULT '',
	subject_id              TEXT NOT NULL,
	tag                     TEXT,
	day_bucket              TEXT NOT NULL,
	created_at              INTEGER NOT NULL,
	UNIQUE (subject_id, type, tag, day_bucket)
);

CREATE INDEX IF NOT EXISTS idx_notifications_artisan
	ON notifications (artisan_id, status, created_at);

CREATE TABLE IF NOT EXISTS invoice_reminders (
	id         TEXT PRIMARY KEY,
	invoice_id TEXT NOT NULL,
	tier       INTEGER NOT NULL CHECK (tier BETWEEN 1 AND 3),
	method     TEXT NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	sent_at    INTEGER NOT NULL,
	UNIQUE (invoice_id, tier)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
