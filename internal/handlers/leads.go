package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"eduhub/api/internal/models"
	"eduhub/api/internal/repository"
)

type applicationRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender"`
	Nationality     string `json:"nationality"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	Country         string `json:"country"`
	ProgramType     string `json:"programType"`
	ProgramInterest string `json:"programInterest"`
	Intake          string `json:"intake"`
	LastSchool      string `json:"lastSchool"`
	LastDegree      string `json:"lastDegree"`
	GraduationYear  string `json:"graduationYear"`
	Percentage      string `json:"percentage"`
	ExtraCurricular string `json:"extraCurricular"`
	WhyJoin         string `json:"whyJoin"`
}

func (h HandlerSet) SubmitApplication(c *gin.Context) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.leadService.SubmitApplication(c.Request.Context(), models.Application{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		Nationality:     req.Nationality,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		ZipCode:         req.ZipCode,
		Country:         req.Country,
		ProgramType:     req.ProgramType,
		ProgramInterest: req.ProgramInterest,
		Intake:          req.Intake,
		LastSchool:      req.LastSchool,
		LastDegree:      req.LastDegree,
		GraduationYear:  req.GraduationYear,
		Percentage:      req.Percentage,
		ExtraCurricular: req.ExtraCurricular,
		WhyJoin:         req.WhyJoin,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("application submit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": app.ID, "submittedAt": app.SubmittedAt})
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

func (h HandlerSet) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.leadService.SubmitContact(c.Request.Context(), models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("contact submit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": contact.ID, "submittedAt": contact.SubmittedAt})
}

type campusVisitRequest struct {
	FullName        string `json:"fullName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone"`
	ProgramInterest string `json:"programInterest"`
	VisitDate       string `json:"visitDate" binding:"required"`
	VisitTime       string `json:"visitTime"`
}

func (h HandlerSet) SubmitCampusVisit(c *gin.Context) {
	var req campusVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visit, err := h.leadService.SubmitVisit(c.Request.Context(), models.CampusVisit{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		ProgramInterest: req.ProgramInterest,
		VisitDate:       req.VisitDate,
		VisitTime:       req.VisitTime,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("campus visit submit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": visit.ID, "submittedAt": visit.SubmittedAt})
}

// leadFilterFromQuery builds the admin listing filter from query params:
// window (7days|30days|90days|yearly|all), from/to (2006-01-02), q,
// limit and offset.
func leadFilterFromQuery(c *gin.Context) models.LeadFilter {
	filter := models.LeadFilter{
		Window: c.DefaultQuery("window", "all"),
		Search: c.Query("q"),
	}

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	if limit, ok := intQuery(c, "limit"); ok {
		filter.Limit = limit
	}
	if offset, ok := intQuery(c, "offset"); ok {
		filter.Offset = offset
	}
	return filter
}

func (h HandlerSet) ListApplications(c *gin.Context) {
	apps, err := h.leadService.ListApplications(c.Request.Context(), leadFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps, "count": len(apps)})
}

func (h HandlerSet) ListContacts(c *gin.Context) {
	contacts, err := h.leadService.ListContacts(c.Request.Context(), leadFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": contacts, "count": len(contacts)})
}

func (h HandlerSet) ListCampusVisits(c *gin.Context) {
	visits, err := h.leadService.ListVisits(c.Request.Context(), leadFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": visits, "count": len(visits)})
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h HandlerSet) UpdateApplicationStatus(c *gin.Context) {
	h.updateLeadStatus(c, h.leadService.UpdateApplicationStatus)
}

func (h HandlerSet) UpdateContactStatus(c *gin.Context) {
	h.updateLeadStatus(c, h.leadService.UpdateContactStatus)
}

func (h HandlerSet) UpdateCampusVisitStatus(c *gin.Context) {
	h.updateLeadStatus(c, h.leadService.UpdateVisitStatus)
}

func (h HandlerSet) updateLeadStatus(c *gin.Context, update func(ctx context.Context, id string, status models.LeadStatus) error) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseLeadStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	if err := update(c.Request.Context(), c.Param("id"), status); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": status})
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
