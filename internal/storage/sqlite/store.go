// Package sqlite is the SQLite escalation log. Uniqueness of reminders and
// tagged notifications is enforced by UNIQUE constraints; inserts use
// ON CONFLICT DO NOTHING and report a conflict as "already recorded".
//
// An untagged notification stores a NULL tag. SQLite treats NULLs as distinct
// in UNIQUE constraints, so those rows are never deduplicated.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	apperrors "github.com/manav03panchal/artisan/internal/errors"
	"github.com/manav03panchal/artisan/internal/model"
	"github.com/manav03panchal/artisan/internal/storage"
)

// Store implements storage.EscalationLog on a local SQLite database.
type Store struct {
	db *sqlx.DB
}

var _ storage.EscalationLog = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time keeps check-then-insert transactions serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SchemaVersion returns the applied schema version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	return version, err
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
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
		if currentVersion, err = s.SchemaVersion(); err != nil {
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

// notificationRow is the stored shape of a notification.
type notificationRow struct {
	ID                    string         `db:"id"`
	ArtisanID             string         `db:"artisan_id"`
	Type                  string         `db:"type"`
	Title                 string         `db:"title"`
	Message               string         `db:"message"`
	Status                string         `db:"status"`
	Urgent                bool           `db:"urgent"`
	SubjectInterventionID string         `db:"subject_intervention_id"`
	SubjectInvoiceID      string         `db:"subject_invoice_id"`
	SubjectID             string         `db:"subject_id"`
	Tag                   sql.NullString `db:"tag"`
	DayBucket             string         `db:"day_bucket"`
	CreatedAt             int64          `db:"created_at"`
}

func toNotificationRow(n *model.Notification) notificationRow {
	row := notificationRow{
		ID:                    n.ID,
		ArtisanID:             n.ArtisanID,
		Type:                  string(n.Type),
		Title:                 n.Title,
		Message:               n.Message,
		Status:                string(n.Status),
		Urgent:                n.Urgent,
		SubjectInterventionID: n.SubjectInterventionID,
		SubjectInvoiceID:      n.SubjectInvoiceID,
		SubjectID:             n.SubjectID(),
		DayBucket:             n.DayBucket,
		CreatedAt:             toMillis(n.CreatedAt),
	}
	if n.Deduplicated() {
		row.Tag = sql.NullString{String: n.Tag.String(), Valid: true}
	}
	return row
}

func (r notificationRow) toModel() *model.Notification {
	n := &model.Notification{
		ID:                    r.ID,
		ArtisanID:             r.ArtisanID,
		Type:                  model.NotificationType(r.Type),
		Title:                 r.Title,
		Message:               r.Message,
		Status:                model.NotificationStatus(r.Status),
		Urgent:                r.Urgent,
		SubjectInterventionID: r.SubjectInterventionID,
		SubjectInvoiceID:      r.SubjectInvoiceID,
		DayBucket:             r.DayBucket,
		CreatedAt:             fromMillis(r.CreatedAt),
	}
	if r.Tag.Valid {
		// Malformed legacy tags read as untagged and never match.
		if tag, err := model.ParseEscalationTag(r.Tag.String); err == nil {
			n.Tag = tag
		}
	}
	return n
}

type reminderRow struct {
	ID        string `db:"id"`
	InvoiceID string `db:"invoice_id"`
	Tier      int    `db:"tier"`
	Method    string `db:"method"`
	Message   string `db:"message"`
	SentAt    int64  `db:"sent_at"`
}

const insertNotification = `
	INSERT INTO notifications (
		id, artisan_id, type, title, message, status, urgent,
		subject_intervention_id, subject_invoice_id, subject_id,
		tag, day_bucket, created_at
	) VALUES (
		:id, :artisan_id, :type, :title, :message, :status, :urgent,
		:subject_intervention_id, :subject_invoice_id, :subject_id,
		:tag, :day_bucket, :created_at
	) ON CONFLICT DO NOTHING`

const insertReminder = `
	INSERT INTO invoice_reminders (id, invoice_id, tier, method, message, sent_at)
	VALUES (:id, :invoice_id, :tier, :method, :message, :sent_at)
	ON CONFLICT DO NOTHING`

func assignID(id *string) error {
	if *id != "" {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v.String()
	return nil
}

func insertedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertNotification stores n unless its escalation key already exists.
func (s *Store) InsertNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := assignID(&n.ID); err != nil {
		return false, err
	}
	res, err := s.db.NamedExecContext(ctx, insertNotification, toNotificationRow(n))
	if err != nil {
		return false, fmt.Errorf("inserting notification %s: %w", n.ID, err)
	}
	return insertedOne(res)
}

// RecordInvoiceReminder stores the reminder and its notification in one
// transaction. Neither row is written when either one already exists.
func (s *Store) RecordInvoiceReminder(ctx context.Context, reminder *model.InvoiceReminder, n *model.Notification) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !reminder.Tier.IsValid() {
		return false, apperrors.Wrapf(apperrors.ErrTierOutOfOrder, "tier %d", int(reminder.Tier))
	}
	if err := assignID(&reminder.ID); err != nil {
		return false, err
	}
	if err := assignID(&n.ID); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if reminder.Tier > model.TierFirst {
		var prev int
		err := tx.GetContext(ctx, &prev,
			"SELECT COUNT(*) FROM invoice_reminders WHERE invoice_id = ? AND tier = ?",
			reminder.InvoiceID, int(reminder.Tier-1))
		if err != nil {
			return false, fmt.Errorf("checking previous tier: %w", err)
		}
		if prev == 0 {
			return false, apperrors.Wrapf(apperrors.ErrTierOutOfOrder,
				"invoice %s has no %s reminder", reminder.InvoiceID, reminder.Tier-1)
		}
	}

	res, err := tx.NamedExecContext(ctx, insertReminder, reminderRow{
		ID:        reminder.ID,
		InvoiceID: reminder.InvoiceID,
		Tier:      int(reminder.Tier),
		Method:    string(reminder.Method),
		Message:   reminder.Message,
		SentAt:    toMillis(reminder.SentAt),
	})
	if err != nil {
		return false, fmt.Errorf("inserting reminder: %w", err)
	}
	if ok, err := insertedOne(res); err != nil || !ok {
		return false, err
	}

	res, err = tx.NamedExecContext(ctx, insertNotification, toNotificationRow(n))
	if err != nil {
		return false, fmt.Errorf("inserting notification: %w", err)
	}
	if ok, err := insertedOne(res); err != nil || !ok {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing reminder: %w", err)
	}
	return true, nil
}

// ListInvoiceReminders returns an invoice's reminders ordered by tier.
func (s *Store) ListInvoiceReminders(ctx context.Context, invoiceID string) ([]model.InvoiceReminder, error) {
	var rows []reminderRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM invoice_reminders WHERE invoice_id = ? ORDER BY tier", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	reminders := make([]model.InvoiceReminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, model.InvoiceReminder{
			ID:        r.ID,
			InvoiceID: r.InvoiceID,
			Tier:      model.Tier(r.Tier),
			Method:    model.ReminderMethod(r.Method),
			Message:   r.Message,
			SentAt:    fromMillis(r.SentAt),
		})
	}
	return reminders, nil
}

// ListNotifications returns matching notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, filter storage.NotificationFilter) ([]*model.Notification, error) {
	var conditions []string
	var args []interface{}

	if filter.ArtisanID != "" {
		conditions = append(conditions, "artisan_id = ?")
		args = append(args, filter.ArtisanID)
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "status <> ?")
		args = append(args, string(model.NotificationRead))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, toMillis(filter.Since))
	}

	query := "SELECT * FROM notifications"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	ns := make([]*model.Notification, 0, len(rows))
	for _, r := range rows {
		ns = append(ns, r.toModel())
	}
	return ns, nil
}

// GetNotification loads a notification by id or unique id prefix.
func (s *Store) GetNotification(ctx context.Context, ref string) (*model.Notification, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &storage.NotFoundError{Kind: apperrors.ErrNotificationNotFound, Ref: ref}
	}
	var rows []notificationRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM notifications WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2",
		ref, escapeLike(ref)+"%", ref)
	if err != nil {
		return nil, fmt.Errorf("loading notification: %w", err)
	}
	switch {
	case len(rows) == 0:
		return nil, &storage.NotFoundError{Kind: apperrors.ErrNotificationNotFound, Ref: ref}
	case rows[0].ID == ref || len(rows) == 1:
		return rows[0].toModel(), nil
	default:
		return nil, apperrors.NewUserErrorWithField("id", ref,
			"Several records match this id", "").WithSentinel(apperrors.ErrAmbiguousID)
	}
}

// escapeLike drops LIKE wildcards from a prefix; ids are UUIDs and never
// contain them.
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}

// MarkNotificationRead flags a notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, ref string) error {
	n, err := s.GetNotification(ctx, ref)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "UPDATE notifications SET status = ? WHERE id = ?",
		string(model.NotificationRead), n.ID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags every unread notification of the artisan as read.
func (s *Store) MarkAllRead(ctx context.Context, artisanID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET status = ? WHERE artisan_id = ? AND status <> ?",
		string(model.NotificationRead), artisanID, string(model.NotificationRead))
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// DeleteNotification removes a notification. Its escalation key becomes free
// again; invoice reminders are kept.
func (s *Store) DeleteNotification(ctx context.Context, ref string) error {
	n, err := s.GetNotification(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", n.ID); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread notifications of the artisan.
func (s *Store) CountUnread(ctx context.Context, artisanID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE artisan_id = ? AND status <> ?",
		artisanID, string(model.NotificationRead))
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
