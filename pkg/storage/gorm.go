package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

type projectRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

func (projectRecord) TableName() string { return "projects" }

type taskRecord struct {
	ID        string  `gorm:"primaryKey"`
	ProjectID *string `gorm:"column:project_id;index"`
	Title     string  `gorm:"not null"`
	Code      string  `gorm:"not null"`
	StartDate string  `gorm:"column:start_date"`
	EndDate   string  `gorm:"column:end_date"`
	CreatedAt time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func (r taskRecord) toTask() planning.Task {
	t := planning.Task{
		ID:        r.ID,
		Title:     r.Title,
		Code:      r.Code,
		StartDate: calendar.ParseLenient(r.StartDate),
		EndDate:   calendar.ParseLenient(r.EndDate),
		CreatedAt: r.CreatedAt,
	}
	if r.ProjectID != nil {
		t.ProjectID = *r.ProjectID
	}
	return t
}

func taskRecordOf(t *planning.Task) taskRecord {
	r := taskRecord{
		ID:        t.ID,
		Title:     t.Title,
		Code:      t.Code,
		StartDate: t.StartDate.String(),
		EndDate:   t.EndDate.String(),
		CreatedAt: t.CreatedAt,
	}
	if t.ProjectID != "" {
		pid := t.ProjectID
		r.ProjectID = &pid
	}
	return r
}

// GormRepository stores projects and tasks through GORM on SQLite.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository opens the database at dbPath and migrates the schema.
func NewGormRepository(dbPath string) (*GormRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access gorm connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&projectRecord{}, &taskRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate gorm schema: %w", err)
	}

	return &GormRepository{db: db}, nil
}

func (r *GormRepository) ListTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	q := r.db.WithContext(ctx).Order("rowid")
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}

	var records []taskRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks := make([]planning.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.toTask())
	}
	return tasks, nil
}

func (r *GormRepository) GetTask(ctx context.Context, id string) (*planning.Task, error) {
	var rec taskRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	t := rec.toTask()
	return &t, nil
}

func (r *GormRepository) CreateTask(ctx context.Context, task *planning.Task) error {
	rec := taskRecordOf(task)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *GormRepository) DeleteTask(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}
	return nil
}

func (r *GormRepository) ListProjects(ctx context.Context) ([]planning.Project, error) {
	var records []projectRecord
	if err := r.db.WithContext(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	projects := make([]planning.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, planning.Project{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt})
	}
	return projects, nil
}

func (r *GormRepository) GetProject(ctx context.Context, id string) (*planning.Project, error) {
	var rec projectRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	return &planning.Project{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt}, nil
}

func (r *GormRepository) CreateProject(ctx context.Context, project *planning.Project) error {
	rec := projectRecord{ID: project.ID, Name: project.Name, CreatedAt: project.CreatedAt}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
