package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediato115/internal/config"
	"mediato115/internal/sqlitex"
)

const taskColumns = "id, source_storage, source_path, source_kind, name, basename, target_storage, target_path, status, error_message, request_id, channel, user_id, created_at, updated_at"

// Store manages transfer task persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the transfer database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Transfer.QueuePath)
}

// OpenPath opens the transfer database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sqlitex.Open(dbPath)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file backing the store.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database accepts queries.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Enqueue inserts a pending task.
func (s *Store) Enqueue(ctx context.Context, task NewTask) (*Task, error) {
	if strings.TrimSpace(task.SourcePath) == "" {
		return nil, errors.New("source path is required")
	}
	if strings.TrimSpace(task.TargetStorage) == "" {
		return nil, errors.New("target storage is required")
	}
	if task.SourceStorage == "" {
		task.SourceStorage = "local"
	}
	if task.SourceKind == "" {
		task.SourceKind = SourceKindDir
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := sqlitex.Exec(
		ctx,
		s.db,
		`INSERT INTO transfer_tasks (
            source_storage, source_path, source_kind, name, basename, target_storage, target_path,
            status, request_id, channel, user_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.SourceStorage,
		task.SourcePath,
		task.SourceKind,
		task.Name,
		sqlitex.NullableString(task.Basename),
		task.TargetStorage,
		sqlitex.NullableString(task.TargetPath),
		StatusPending,
		sqlitex.NullableString(task.RequestID),
		sqlitex.NullableString(task.Channel),
		sqlitex.NullableString(task.UserID),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a task by identifier. It returns nil when no row matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM transfer_tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// FindActive returns the oldest pending or running task for the same source
// and target, or nil.
func (s *Store) FindActive(ctx context.Context, sourcePath, targetStorage string) (*Task, error) {
	args := []any{sourcePath, targetStorage}
	for _, status := range activeStatuses {
		args = append(args, status)
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM transfer_tasks
         WHERE source_path = ? AND target_storage = ? AND status IN (`+makePlaceholders(len(activeStatuses))+`)
         ORDER BY id LIMIT 1`,
		args...,
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active task: %w", err)
	}
	return task, nil
}

// List returns tasks in creation order, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM transfer_tasks`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateStatus moves a task to status and records message as its error text.
// An empty message clears any previous error.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status, message string) error {
	res, err := sqlitex.Exec(
		ctx,
		s.db,
		`UPDATE transfer_tasks SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		sqlitex.NullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

// Remove deletes the given tasks and returns how many rows were removed.
func (s *Store) Remove(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := sqlitex.Exec(ctx, s.db, `DELETE FROM transfer_tasks WHERE id IN (`+makePlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("remove tasks: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes tasks in the given statuses, or every task when none are given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := `DELETE FROM transfer_tasks`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	res, err := sqlitex.Exec(ctx, s.db, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear tasks: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of tasks grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM transfer_tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		task         Task
		basename     sql.NullString
		targetPath   sql.NullString
		statusStr    string
		errorMessage sql.NullString
		requestID    sql.NullString
		channel      sql.NullString
		userID       sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&task.ID,
		&task.SourceStorage,
		&task.SourcePath,
		&task.SourceKind,
		&task.Name,
		&basename,
		&task.TargetStorage,
		&targetPath,
		&statusStr,
		&errorMessage,
		&requestID,
		&channel,
		&userID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	task.Basename = basename.String
	task.TargetPath = targetPath.String
	task.Status = Status(statusStr)
	task.ErrorMessage = errorMessage.String
	task.RequestID = requestID.String
	task.Channel = channel.String
	task.UserID = userID.String
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		task.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		task.UpdatedAt = updated
	}
	return &task, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
