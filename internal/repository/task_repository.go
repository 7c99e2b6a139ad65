package repository

import (
	"context"
	"errors"
	"time"

	"teamtasks/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter shapes the task list query: filters, substring search, and
// ordering. Zero values mean "no constraint".
type TaskFilter struct {
	Status         string
	AssigneeUserID *uuid.UUID
	DueDate        *time.Time
	Search         string
	OrderBy        string // "created_at" (default, newest first) or "due_date"
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListForUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, taskID, membershipID uuid.UUID) error
	ListAssignments(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID. Soft-deleted rows are returned too:
// callers decide whether a deleted task is visible (handlers report 404, the
// audit trail still resolves the row).
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListForUser retrieves active tasks in teams where the user holds a
// membership, applying the filter.
func (r *TaskRepository) ListForUser(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Joins("JOIN memberships ON memberships.team_id = tasks.team_id").
		Where("memberships.user_id = ?", userID).
		Where("tasks.is_deleted = ?", false)

	if filter.Status != "" {
		query = query.Where("tasks.status = ?", filter.Status)
	}
	if filter.AssigneeUserID != nil {
		query = query.Where(
			"tasks.id IN (?)",
			r.db.Model(&model.TaskAssignment{}).
				Select("task_assignments.task_id").
				Joins("JOIN memberships am ON am.id = task_assignments.membership_id").
				Where("am.user_id = ?", *filter.AssigneeUserID),
		)
	}
	if filter.DueDate != nil {
		dayStart := filter.DueDate.Truncate(24 * time.Hour)
		query = query.Where("tasks.due_date >= ? AND tasks.due_date < ?", dayStart, dayStart.Add(24*time.Hour))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("tasks.title ILIKE ? OR tasks.description ILIKE ?", pattern, pattern)
	}

	switch filter.OrderBy {
	case "due_date":
		query = query.Order("tasks.due_date ASC NULLS LAST")
	default:
		query = query.Order("tasks.created_at DESC")
	}

	var tasks []model.Task
	err := query.Distinct("tasks.*").Find(&tasks).Error
	return tasks, err
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SoftDelete flips is_deleted and stamps deleted_at. The row stays in the
// table; it just disappears from every normal query. There is no undelete.
func (r *TaskRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Assign appends a membership to the task's assignment set. The duplicate
// check and the insert run in one transaction with the task row locked, so a
// doubled request cannot silently produce two identical assignments: the
// second one fails with ErrAlreadyAssigned.
func (r *TaskRepository) Assign(ctx context.Context, taskID, membershipID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&task, "id = ? AND is_deleted = ?", taskID, false).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.TaskAssignment{}).
			Where("task_id = ? AND membership_id = ?", taskID, membershipID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyAssigned
		}

		assignment := model.TaskAssignment{TaskID: taskID, MembershipID: membershipID}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		// Legacy single-assignee column: first assignment fills it.
		if task.AssignedTo == nil {
			return tx.Model(&model.Task{}).Where("id = ?", taskID).Update("assigned_to", membershipID).Error
		}
		return nil
	})
}

// ListAssignments retrieves the task's assignment set with member details.
func (r *TaskRepository) ListAssignments(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	err := r.db.WithContext(ctx).
		Preload("Membership.User").
		Where("task_id = ?", taskID).
		Order("created_at").
		Find(&assignments).Error
	return assignments, err
}
