package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"teamtasks/internal/model"
	"teamtasks/internal/policy"
	"teamtasks/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo       repository.TaskRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	activityRepo   repository.ActivityRepositoryInterface
}

func NewTaskHandler(
	taskRepo repository.TaskRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	activityRepo repository.ActivityRepositoryInterface,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:       taskRepo,
		membershipRepo: membershipRepo,
		activityRepo:   activityRepo,
	}
}

type TaskCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	TeamID      string     `json:"team_id" binding:"required,uuid"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskAssignRequest struct {
	MembershipID string `json:"membership_id"`
	Email        string `json:"email"`
}

type TaskResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	DueDate     *string  `json:"due_date,omitempty"`
	TeamID      string   `json:"team_id"`
	CreatedBy   string   `json:"created_by"`
	AssignedTo  *string  `json:"assigned_to,omitempty"`
	Assignees   []string `json:"assignees"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func taskResponse(task *model.Task, assignments []model.TaskAssignment) TaskResponse {
	response := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		TeamID:      task.TeamID.String(),
		CreatedBy:   task.CreatedBy.String(),
		Assignees:   make([]string, len(assignments)),
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		dueDate := task.DueDate.Format(time.RFC3339)
		response.DueDate = &dueDate
	}
	if task.AssignedTo != nil {
		assignedTo := task.AssignedTo.String()
		response.AssignedTo = &assignedTo
	}
	for i, a := range assignments {
		response.Assignees[i] = a.MembershipID.String()
	}
	return response
}

func (h *TaskHandler) recordActivity(c *gin.Context, entry *model.ActivityLog) {
	if err := h.activityRepo.Record(c.Request.Context(), entry); err != nil {
		log.Printf("activity log write failed (action=%s): %v", entry.Action, err)
	}
}

// Create creates a task in a team the caller belongs to. created_by, status,
// is_deleted, and the assignment set are authority-assigned: whatever the
// client sends for them is ignored.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID format"})
		return
	}

	membership, err := h.membershipRepo.GetByTeamAndUser(c.Request.Context(), teamID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if !policy.CanCreateTask(membership) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.StatusTodo,
		DueDate:     req.DueDate,
		TeamID:      teamID,
		CreatedBy:   membership.ID,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	taskID := task.ID
	h.recordActivity(c, &model.ActivityLog{
		Action:      model.ActionTaskCreated,
		PerformedBy: userID,
		TeamID:      &teamID,
		TaskID:      &taskID,
		Details:     model.JSONMap{"title": task.Title},
	})

	c.JSON(http.StatusCreated, taskResponse(task, nil))
}

// GetAll lists active tasks across the caller's teams with filtering,
// search, and ordering
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		Search:  c.Query("search"),
		OrderBy: c.Query("order"),
	}

	if status := c.Query("status"); status != "" {
		if !model.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be 'todo', 'in_progress' or 'done'"})
			return
		}
		filter.Status = status
	}
	if assignee := c.Query("assignee"); assignee != "" {
		assigneeID, err := uuid.Parse(assignee)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		filter.AssigneeUserID = &assigneeID
	}
	if dueDate := c.Query("due_date"); dueDate != "" {
		parsed, err := time.Parse("2006-01-02", dueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be formatted as YYYY-MM-DD"})
			return
		}
		filter.DueDate = &parsed
	}

	tasks, err := h.taskRepo.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		assignments, err := h.taskRepo.ListAssignments(c.Request.Context(), tasks[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
			return
		}
		response[i] = taskResponse(&tasks[i], assignments)
	}
	c.JSON(http.StatusOK, response)
}

// getVisibleTask loads the task and the caller's membership in its team.
// Tasks in foreign teams and soft-deleted tasks both surface as 404.
func (h *TaskHandler) getVisibleTask(c *gin.Context, userID uuid.UUID) (*model.Task, *model.Membership) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return nil, nil
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return nil, nil
	}

	membership, err := h.membershipRepo.GetByTeamAndUser(c.Request.Context(), task.TeamID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return nil, nil
	}
	if !policy.CanViewTask(membership) || task.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return nil, nil
	}
	return task, membership
}

// GetByID returns one task; team members only
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, _ := h.getVisibleTask(c, userID)
	if task == nil {
		return
	}

	assignments, err := h.taskRepo.ListAssignments(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task, assignments))
}

// Update applies a partial update. The request body is decoded as a raw key
// map first: one field the caller's role may not touch rejects the whole
// request, nothing is partially applied. Members may change only status and
// description; admins also title and due_date.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, membership := h.getVisibleTask(c, userID)
	if task == nil {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	fields := make([]string, 0, len(raw))
	for key := range raw {
		fields = append(fields, key)
	}
	if ok, offending := policy.CanUpdateTask(membership, fields); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Field '" + offending + "' is not allowed in this update"})
		return
	}

	oldStatus := task.Status

	if data, present := raw["title"]; present {
		var title string
		if err := json.Unmarshal(data, &title); err != nil || title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be a non-empty string"})
			return
		}
		task.Title = title
	}
	if data, present := raw["description"]; present {
		var description string
		if err := json.Unmarshal(data, &description); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description must be a string"})
			return
		}
		task.Description = description
	}
	if data, present := raw["status"]; present {
		var status string
		if err := json.Unmarshal(data, &status); err != nil || !model.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be 'todo', 'in_progress' or 'done'"})
			return
		}
		task.Status = status
	}
	if data, present := raw["due_date"]; present {
		var dueDate *time.Time
		if err := json.Unmarshal(data, &dueDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Due date must be an RFC 3339 timestamp or null"})
			return
		}
		task.DueDate = dueDate
	}

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	// Log only genuine status transitions; an update that sets the same
	// status back is not one.
	if task.Status != oldStatus {
		teamID := task.TeamID
		taskID := task.ID
		h.recordActivity(c, &model.ActivityLog{
			Action:      model.ActionTaskStatusChanged,
			PerformedBy: userID,
			TeamID:      &teamID,
			TaskID:      &taskID,
			Details:     model.JSONMap{"old": oldStatus, "new": task.Status},
		})
	}

	assignments, err := h.taskRepo.ListAssignments(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task, assignments))
}

// Delete soft-deletes a task; admins only. The row stays for the audit
// trail, but the task is gone from every subsequent read.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, membership := h.getVisibleTask(c, userID)
	if task == nil {
		return
	}

	if !policy.CanDeleteTask(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can delete tasks"})
		return
	}

	if err := h.taskRepo.SoftDelete(c.Request.Context(), task.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Assign adds a member to the task's assignment set; admins only. The target
// is resolved by membership ID or member email within the task's team; a
// membership from another team is a 404. Assigning the same member twice is
// a 409.
func (h *TaskHandler) Assign(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, membership := h.getVisibleTask(c, userID)
	if task == nil {
		return
	}

	if !policy.CanAssignTask(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can assign tasks"})
		return
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.MembershipID == "" && req.Email == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "membership_id or email is required"})
		return
	}

	target, err := h.resolveAssignee(c, task.TeamID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve member"})
		return
	}
	if target == nil {
		// Covers unknown IDs, foreign-team memberships, and unknown emails
		// alike: all of them are simply not a member of this task's team.
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found in this team"})
		return
	}

	if err := h.taskRepo.Assign(c.Request.Context(), task.ID, target.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, gin.H{"error": "Member is already assigned to this task"})
		case errors.Is(err, repository.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign member"})
		}
		return
	}

	teamID := task.TeamID
	taskID := task.ID
	targetUserID := target.UserID
	h.recordActivity(c, &model.ActivityLog{
		Action:       model.ActionTaskAssigned,
		PerformedBy:  userID,
		TeamID:       &teamID,
		TaskID:       &taskID,
		TargetUserID: &targetUserID,
	})

	updated, err := h.taskRepo.GetByID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	assignments, err := h.taskRepo.ListAssignments(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(updated, assignments))
}

// resolveAssignee finds the target membership inside the given team, by
// membership ID or by member email. Returns nil when the target does not
// resolve to a member of that team.
func (h *TaskHandler) resolveAssignee(c *gin.Context, teamID uuid.UUID, req TaskAssignRequest) (*model.Membership, error) {
	if req.MembershipID != "" {
		membershipID, err := uuid.Parse(req.MembershipID)
		if err != nil {
			return nil, nil
		}
		target, err := h.membershipRepo.GetByID(c.Request.Context(), membershipID)
		if err != nil {
			return nil, err
		}
		if target == nil || target.TeamID != teamID {
			return nil, nil
		}
		return target, nil
	}
	return h.membershipRepo.FindByTeamAndEmail(c.Request.Context(), teamID, req.Email)
}
