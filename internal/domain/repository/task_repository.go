package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"taskbackend/internal/common"
	"taskbackend/internal/domain/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	// UpdateOwned applies a partial update to a task iff it belongs to
	// ownerID. A missing task and a task owned by someone else both come
	// back as ErrNotFound, so callers cannot probe foreign IDs.
	UpdateOwned(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error)
	// DeleteOwned removes a task with the same ownership semantics as
	// UpdateOwned.
	DeleteOwned(ctx context.Context, ownerID, taskID string) error
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks (id, owner_id, title, description, status, priority, due_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.OwnerID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	query := `SELECT id, owner_id, title, description, status, priority, due_date, created_at, updated_at
	          FROM tasks WHERE owner_id = $1
	          ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListByOwner: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.ListByOwner: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListByOwner: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) UpdateOwned(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.UpdateOwned: %w", err)
	}
	defer tx.Rollback()

	task, err := r.lockOwned(ctx, tx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	task.Apply(patch)

	query := `UPDATE tasks SET
	            title = $1, description = $2, status = $3, priority = $4, due_date = $5,
	            updated_at = CURRENT_TIMESTAMP
	          WHERE id = $6
	          RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, task.DueDate, task.ID,
	).Scan(&task.UpdatedAt); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.UpdateOwned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.UpdateOwned: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteOwned: %w", err)
	}
	defer tx.Rollback()

	task, err := r.lockOwned(ctx, tx, ownerID, taskID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID); err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteOwned: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgTaskRepository.DeleteOwned: %w", err)
	}
	return nil
}

// lockOwned fetches a task under a row lock so concurrent mutations of the
// same record serialize in the database. The lock is held until the caller's
// transaction ends. Both "no such task" and "task owned by someone else"
// return the bare ErrNotFound; the ownership denial is only logged.
func (r *pgTaskRepository) lockOwned(ctx context.Context, tx *sql.Tx, ownerID, taskID string) (*model.Task, error) {
	query := `SELECT id, owner_id, title, description, status, priority, due_date, created_at, updated_at
	          FROM tasks WHERE id = $1
	          FOR UPDATE`
	task := &model.Task{}
	err := tx.QueryRowContext(ctx, query, taskID).Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.lockOwned: %w", err)
	}
	if task.OwnerID != ownerID {
		log.Printf("ownership denied: user %s attempted access to task %s", ownerID, taskID)
		return nil, common.ErrNotFound
	}
	return task, nil
}
