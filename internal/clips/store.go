package clips

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clipvault/internal/config"
)

// ErrNotFound indicates no clip row matches the requested id.
var ErrNotFound = errors.New("clip not found")

// Store manages clip metadata persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the clips database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "clips.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Add inserts a new clip row and returns it.
func (s *Store) Add(ctx context.Context, nc NewClip) (*Clip, error) {
	if strings.TrimSpace(nc.Reference) == "" {
		return nil, errors.New("clips: reference required")
	}
	if strings.TrimSpace(nc.ObjectKey) == "" {
		return nil, errors.New("clips: object key required")
	}
	if !ValidEventType(string(nc.EventType)) {
		return nil, fmt.Errorf("clips: unknown event type %q", nc.EventType)
	}

	now := time.Now().UTC()
	clip := &Clip{
		ID:         uuid.NewString(),
		Reference:  strings.TrimSpace(nc.Reference),
		ObjectKey:  strings.TrimSpace(nc.ObjectKey),
		VideoURL:   strings.TrimSpace(nc.VideoURL),
		Player:     strings.TrimSpace(nc.Player),
		Tournament: strings.TrimSpace(nc.Tournament),
		EventType:  nc.EventType,
		Tags:       nc.Tags,
		Notes:      strings.TrimSpace(nc.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tags, err := encodeTags(clip.Tags)
	if err != nil {
		return nil, err
	}
	err = s.execWithRetry(ctx,
		`INSERT INTO clips (
            id, reference, object_key, video_url, player, tournament,
            event_type, tags, notes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.ID, clip.Reference, clip.ObjectKey, clip.VideoURL, clip.Player,
		clip.Tournament, string(clip.EventType), tags, clip.Notes,
		formatTime(clip.CreatedAt), formatTime(clip.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert clip: %w", err)
	}
	return clip, nil
}

// Get fetches one clip by id.
func (s *Store) Get(ctx context.Context, id string) (*Clip, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM clips WHERE id = ?", strings.TrimSpace(id))
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return clip, nil
}

// List returns clips newest first, narrowed by the filter.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]*Clip, error) {
	query := selectColumns + " FROM clips"
	var (
		conds []string
		args  []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		conds = append(conds, "(LOWER(player) LIKE ? OR LOWER(tournament) LIKE ? OR LOWER(notes) LIKE ?)")
		args = append(args, like, like, like)
	}
	if et := strings.TrimSpace(string(filter.EventType)); et != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, et)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var result []*Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		result = append(result, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return result, nil
}

// Update rewrites the caller-editable fields of an existing clip.
func (s *Store) Update(ctx context.Context, clip *Clip) error {
	if clip == nil || strings.TrimSpace(clip.ID) == "" {
		return errors.New("clips: clip with id required")
	}
	if !ValidEventType(string(clip.EventType)) {
		return fmt.Errorf("clips: unknown event type %q", clip.EventType)
	}
	tags, err := encodeTags(clip.Tags)
	if err != nil {
		return err
	}
	clip.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE clips SET player = ?, tournament = ?, event_type = ?, tags = ?,
            notes = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(clip.Player), strings.TrimSpace(clip.Tournament),
		string(clip.EventType), tags, strings.TrimSpace(clip.Notes),
		formatTime(clip.UpdatedAt), clip.ID,
	)
	if err != nil {
		return fmt.Errorf("update clip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update clip: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a clip row. The stored object is left alone: objects are
// content-addressed and may back other rows or future re-adds.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("remove clip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove clip: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored clips.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM clips").Scan(&count); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return count, nil
}

const selectColumns = `SELECT id, reference, object_key, video_url, player,
    tournament, event_type, tags, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (*Clip, error) {
	var (
		clip      Clip
		eventType string
		tags      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&clip.ID, &clip.Reference, &clip.ObjectKey, &clip.VideoURL, &clip.Player,
		&clip.Tournament, &eventType, &tags, &clip.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	clip.EventType = EventType(eventType)
	if err := json.Unmarshal([]byte(tags), &clip.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if clip.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if clip.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &clip, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
