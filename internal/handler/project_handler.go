package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buildtrack/internal/domain/document"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/middleware"
	"buildtrack/internal/services"
	"buildtrack/internal/transport/httpdto"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	p, err := h.service.CreateProject(c.Request.Context(), actor, toProjectTemplate(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(p))
}

func (h *ProjectHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	projects, err := h.service.ListProjects(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(projects))
}

func (h *ProjectHandler) Detail(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}
	detail, err := h.service.GetProjectDetail(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(detail))
}

func (h *ProjectHandler) Timeline(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.service.ListTimeline(c.Request.Context(), actor, projectID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(entries))
}

func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.MilestoneTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	if err := h.service.AddMilestone(c.Request.Context(), actor, projectID, toMilestoneTemplate(req)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse[any](nil))
}

func (h *ProjectHandler) CreateDocumentType(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	var req httpdto.CreateDocumentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	t, err := h.service.CreateDocumentType(c.Request.Context(), actor, document.DocumentType{
		Name:              req.Name,
		AllowedExtensions: req.AllowedExtensions,
		MaxSizeBytes:      req.MaxSizeBytes,
		ApproverRole:      user.Role(req.ApproverRole),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(t))
}

func toProjectTemplate(req httpdto.CreateProjectRequest) services.ProjectTemplate {
	tpl := services.ProjectTemplate{Name: req.Name, Address: req.Address}
	for _, m := range req.Milestones {
		tpl.Milestones = append(tpl.Milestones, toMilestoneTemplate(m))
	}
	return tpl
}

func toMilestoneTemplate(req httpdto.MilestoneTemplateRequest) services.MilestoneTemplate {
	tpl := services.MilestoneTemplate{Name: req.Name, Assignees: req.Assignees}
	for _, r := range req.Requirements {
		tpl.Requirements = append(tpl.Requirements, services.RequirementTemplate{
			Name:           r.Name,
			DocumentTypeID: r.DocumentTypeID,
			Required:       r.Required,
		})
	}
	for _, item := range req.Checklist {
		tpl.Checklist = append(tpl.Checklist, services.ChecklistTemplate{
			Title:    item.Title,
			Required: item.Required,
		})
	}
	return tpl
}
