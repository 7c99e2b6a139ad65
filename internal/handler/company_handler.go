package handler

import (
	"net/http"
	"time"

	"teamtasks/internal/model"
	"teamtasks/internal/policy"
	"teamtasks/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CompanyHandler struct {
	companyRepo repository.CompanyRepositoryInterface
}

func NewCompanyHandler(companyRepo repository.CompanyRepositoryInterface) *CompanyHandler {
	return &CompanyHandler{companyRepo: companyRepo}
}

type CompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

func companyResponse(company *model.Company) CompanyResponse {
	return CompanyResponse{
		ID:        company.ID.String(),
		Name:      company.Name,
		OwnerID:   company.OwnerID.String(),
		CreatedAt: company.CreatedAt.Format(time.RFC3339),
	}
}

// Create creates a company owned by the caller. The owner is always the
// authenticated user, never taken from the request.
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	company := &model.Company{
		Name:    req.Name,
		OwnerID: userID,
	}

	if err := h.companyRepo.Create(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, companyResponse(company))
}

// GetAll lists the caller's own companies
func (h *CompanyHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	companies, err := h.companyRepo.GetOwned(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve companies"})
		return
	}

	response := make([]CompanyResponse, len(companies))
	for i := range companies {
		response[i] = companyResponse(&companies[i])
	}
	c.JSON(http.StatusOK, response)
}

// getVisibleCompany loads the company and applies the visibility rule.
// Companies the caller cannot see are reported as 404, never 403.
func (h *CompanyHandler) getVisibleCompany(c *gin.Context, userID uuid.UUID) *model.Company {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company ID format"})
		return nil
	}

	company, err := h.companyRepo.GetByID(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		return nil
	}
	if company == nil || !policy.CanViewCompany(userID, company) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return nil
	}
	return company
}

// GetByID returns one of the caller's companies
func (h *CompanyHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	company := h.getVisibleCompany(c, userID)
	if company == nil {
		return
	}

	c.JSON(http.StatusOK, companyResponse(company))
}

// Update renames a company; owner only
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	company := h.getVisibleCompany(c, userID)
	if company == nil {
		return
	}

	if !policy.CanUpdateCompany(userID, company) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can update the company"})
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	company.Name = req.Name
	if err := h.companyRepo.Update(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		return
	}

	c.JSON(http.StatusOK, companyResponse(company))
}

// Delete removes a company and cascades to its teams; owner only
func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	company := h.getVisibleCompany(c, userID)
	if company == nil {
		return
	}

	if !policy.CanDeleteCompany(userID, company) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete the company"})
		return
	}

	if err := h.companyRepo.Delete(c.Request.Context(), company.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted"})
}
