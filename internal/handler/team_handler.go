package handler

import (
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

type TeamHandler struct {
	teamRepo       repository.TeamRepositoryInterface
	companyRepo    repository.CompanyRepositoryInterface
	membershipRepo repository.MembershipRepositoryInterface
	userRepo       repository.UserRepositoryInterface
	activityRepo   repository.ActivityRepositoryInterface
}

func NewTeamHandler(
	teamRepo repository.TeamRepositoryInterface,
	companyRepo repository.CompanyRepositoryInterface,
	membershipRepo repository.MembershipRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	activityRepo repository.ActivityRepositoryInterface,
) *TeamHandler {
	return &TeamHandler{
		teamRepo:       teamRepo,
		companyRepo:    companyRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		activityRepo:   activityRepo,
	}
}

type TeamRequest struct {
	Name      string `json:"name" binding:"required"`
	CompanyID string `json:"company_id" binding:"required,uuid"`
}

type TeamUpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type MemberResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type TeamResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	CompanyID   string           `json:"company_id"`
	CreatedAt   string           `json:"created_at"`
	Members     []MemberResponse `json:"members"`
	MemberCount int              `json:"member_count"`
}

func memberResponse(m *model.Membership) MemberResponse {
	return MemberResponse{
		ID:       m.ID.String(),
		UserID:   m.UserID.String(),
		Email:    m.User.Email,
		Name:     m.User.Name,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

func teamResponse(team *model.Team) TeamResponse {
	members := make([]MemberResponse, len(team.Memberships))
	for i := range team.Memberships {
		members[i] = memberResponse(&team.Memberships[i])
	}
	return TeamResponse{
		ID:          team.ID.String(),
		Name:        team.Name,
		CompanyID:   team.CompanyID.String(),
		CreatedAt:   team.CreatedAt.Format(time.RFC3339),
		Members:     members,
		MemberCount: len(members),
	}
}

// recordActivity appends an audit entry after a committed mutation. A failed
// write is logged and nothing else: the mutation stands.
func (h *TeamHandler) recordActivity(c *gin.Context, entry *model.ActivityLog) {
	if err := h.activityRepo.Record(c.Request.Context(), entry); err != nil {
		log.Printf("activity log write failed (action=%s): %v", entry.Action, err)
	}
}

// Create creates a team under a company the caller owns. The creator's admin
// membership is written in the same transaction as the team.
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID format"})
		return
	}

	company, err := h.companyRepo.GetByID(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		return
	}
	if company == nil || !policy.CanCreateTeamIn(userID, company) {
		// Reported as 404 so callers cannot probe for foreign companies.
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	team := &model.Team{
		Name:      req.Name,
		CompanyID: companyID,
	}

	if err := h.teamRepo.CreateWithAdmin(c.Request.Context(), team, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team"})
		return
	}

	created, err := h.teamRepo.GetByID(c.Request.Context(), team.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve created team"})
		return
	}

	c.JSON(http.StatusCreated, teamResponse(created))
}

// GetAll lists teams where the caller holds any membership
func (h *TeamHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	teams, err := h.teamRepo.GetForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	response := make([]TeamResponse, len(teams))
	for i := range teams {
		response[i] = teamResponse(&teams[i])
	}
	c.JSON(http.StatusOK, response)
}

// getTeamWithMembership loads the team plus the caller's membership in it.
// Teams the caller is not a member of come back as 404.
func (h *TeamHandler) getTeamWithMembership(c *gin.Context, userID uuid.UUID) (*model.Team, *model.Membership) {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team ID format"})
		return nil, nil
	}

	team, err := h.teamRepo.GetByID(c.Request.Context(), teamID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		return nil, nil
	}
	if team == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return nil, nil
	}

	membership, err := h.membershipRepo.GetByTeamAndUser(c.Request.Context(), teamID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return nil, nil
	}
	if !policy.CanViewTeam(membership) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return nil, nil
	}
	return team, membership
}

// GetByID returns team details; members only
func (h *TeamHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, _ := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	c.JSON(http.StatusOK, teamResponse(team))
}

// Update renames a team; admins only
func (h *TeamHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanManageTeam(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can update the team"})
		return
	}

	var req TeamUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	team.Name = req.Name
	if err := h.teamRepo.Update(c.Request.Context(), team); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
		return
	}

	c.JSON(http.StatusOK, teamResponse(team))
}

// Delete removes a team; admins only
func (h *TeamHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanManageTeam(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can delete the team"})
		return
	}

	if err := h.teamRepo.Delete(c.Request.Context(), team.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted"})
}

// AddMember adds a user to the team; admins only
func (h *TeamHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanManageTeam(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can add members"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'admin' or 'member'"})
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	target, err := h.userRepo.GetByID(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	added, err := h.membershipRepo.AddMember(c.Request.Context(), team.ID, targetID, role)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMember) {
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this team"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}
	added.User = *target

	teamID := team.ID
	h.recordActivity(c, &model.ActivityLog{
		Action:       model.ActionMemberAdded,
		PerformedBy:  userID,
		TeamID:       &teamID,
		TargetUserID: &targetID,
		Details:      model.JSONMap{"role": role},
	})

	c.JSON(http.StatusCreated, memberResponse(added))
}

// RemoveMember removes a user from the team; admins only. Removing yourself
// or the last remaining admin is rejected.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanManageTeam(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can remove members"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	err = h.membershipRepo.RemoveMember(c.Request.Context(), team.ID, targetID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfRemoval):
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot remove yourself from the team. Transfer ownership first."})
		case errors.Is(err, repository.ErrLastAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot remove the last admin. Transfer ownership first."})
		case errors.Is(err, repository.ErrNotAMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this team"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		}
		return
	}

	teamID := team.ID
	h.recordActivity(c, &model.ActivityLog{
		Action:       model.ActionMemberRemoved,
		PerformedBy:  userID,
		TeamID:       &teamID,
		TargetUserID: &targetID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Member removed from the team"})
}

// ChangeRole changes a member's role; admins only. Changing your own role or
// demoting the sole admin is rejected.
func (h *TeamHandler) ChangeRole(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanManageTeam(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can change roles"})
		return
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if !model.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be 'admin' or 'member'"})
		return
	}

	updated, err := h.membershipRepo.ChangeRole(c.Request.Context(), team.ID, targetID, userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfRoleChange):
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot change your own role. Ask another admin."})
		case errors.Is(err, repository.ErrLastAdmin):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot demote the last admin. Transfer ownership first."})
		case errors.Is(err, repository.ErrNotAMember):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this team"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change role"})
		}
		return
	}

	target, err := h.userRepo.GetByID(c.Request.Context(), targetID)
	if err == nil && target != nil {
		updated.User = *target
	}

	c.JSON(http.StatusOK, memberResponse(updated))
}

type ActivityResponse struct {
	ID           string        `json:"id"`
	Action       string        `json:"action"`
	PerformedBy  string        `json:"performed_by"`
	TaskID       *string       `json:"task_id,omitempty"`
	TargetUserID *string       `json:"target_user_id,omitempty"`
	Timestamp    string        `json:"timestamp"`
	Details      model.JSONMap `json:"details,omitempty"`
}

// GetActivity returns the team's audit trail, newest first; admins only
func (h *TeamHandler) GetActivity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	team, membership := h.getTeamWithMembership(c, userID)
	if team == nil {
		return
	}

	if !policy.CanViewActivity(membership) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only team admins can view the activity log"})
		return
	}

	entries, err := h.activityRepo.ListByTeam(c.Request.Context(), team.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity log"})
		return
	}

	response := make([]ActivityResponse, len(entries))
	for i, entry := range entries {
		response[i] = ActivityResponse{
			ID:          entry.ID.String(),
			Action:      entry.Action,
			PerformedBy: entry.PerformedBy.String(),
			Timestamp:   entry.Timestamp.Format(time.RFC3339),
			Details:     entry.Details,
		}
		if entry.TaskID != nil {
			taskID := entry.TaskID.String()
			response[i].TaskID = &taskID
		}
		if entry.TargetUserID != nil {
			targetID := entry.TargetUserID.String()
			response[i].TargetUserID = &targetID
		}
	}
	c.JSON(http.StatusOK, response)
}
