package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeSearch   TaskType = "search"
	TaskTypeGenerate TaskType = "generate"
	TaskTypeUpload   TaskType = "upload"
	TaskTypeClaims   TaskType = "claims"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetUnitName() string
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID        string
	Type      TaskType
	UnitName  string
	StartedAt *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetUnitName() string {
	return t.UnitName
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, unitName string) Task {
	return Task{
		ID:       uuid.NewString(),
		Type:     taskType,
		UnitName: unitName,
	}
}

// Run executes task in the calling goroutine. Tasks are not retried.
func Run(ctx context.Context, task TaskInterface) error {
	task.Start()
	slog.Debug("Task started", "type", string(task.GetType()), "id", task.GetID(), "unit", task.GetUnitName())

	err := task.Execute(ctx)
	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration(), "error", err)
		return err
	}
	return nil
}
