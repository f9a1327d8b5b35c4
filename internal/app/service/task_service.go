package service

import (
	"context"
	"fmt"
	"time"

	"taskbackend/internal/common"
	"taskbackend/internal/domain/model"
	"taskbackend/internal/domain/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

type CreateTaskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      model.TaskStatus   `json:"status"`
	Priority    model.TaskPriority `json:"priority"`
	DueDate     *time.Time         `json:"dueDate"`
}

func (s *TaskService) Create(ctx context.Context, ownerID string, req CreateTaskRequest) (*model.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", common.ErrValidation)
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	if req.Priority == "" {
		req.Priority = model.PriorityLow
	}
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("unknown status %q: %w", req.Status, common.ErrValidation)
	}
	if !req.Priority.IsValid() {
		return nil, fmt.Errorf("unknown priority %q: %w", req.Priority, common.ErrValidation)
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if patch.Title != nil && *patch.Title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", common.ErrValidation)
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("unknown status %q: %w", *patch.Status, common.ErrValidation)
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return nil, fmt.Errorf("unknown priority %q: %w", *patch.Priority, common.ErrValidation)
	}

	task, err := s.taskRepo.UpdateOwned(ctx, ownerID, taskID, patch)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	return s.taskRepo.DeleteOwned(ctx, ownerID, taskID)
}
