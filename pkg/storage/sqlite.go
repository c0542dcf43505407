package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	_ "github.com/mattn/go-sqlite3"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

// SQLiteRepository stores projects and tasks in a SQLite database through
// database/sql.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and migrates) the database at dbPath. The
// special path ":memory:" opens a private in-memory database.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection per :memory: database; writers are serialised.
	db.SetMaxOpenConns(1)

	pinger := retry.New[struct{}](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  20 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})
	if _, err := pinger.Do(context.Background(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT,
			title TEXT NOT NULL,
			code TEXT NOT NULL,
			start_date TEXT,
			end_date TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	query := `SELECT id, project_id, title, code, start_date, end_date, created_at FROM tasks`
	var args []any
	if filter.ProjectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, filter.ProjectID)
	}
	query += ` ORDER BY rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	tasks := []planning.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (*planning.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, code, start_date, end_date, created_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}
	return t, err
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, task *planning.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, code, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		nullString(task.ProjectID),
		task.Title,
		task.Code,
		task.StartDate.String(),
		task.EndDate.String(),
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}
	return nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]planning.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	projects := []planning.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*planning.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}
	return p, err
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, project *planning.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
		project.ID, project.Name, project.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*planning.Task, error) {
	var (
		t                     planning.Task
		projectID, start, end sql.NullString
		createdAt             string
	)
	if err := row.Scan(&t.ID, &projectID, &t.Title, &t.Code, &start, &end, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.ProjectID = projectID.String
	t.StartDate = calendar.ParseLenient(start.String)
	t.EndDate = calendar.ParseLenient(end.String)
	t.CreatedAt = parseTimestamp(createdAt)
	return &t, nil
}

func scanProject(row rowScanner) (*planning.Project, error) {
	var (
		p         planning.Project
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.CreatedAt = parseTimestamp(createdAt)
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
