package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buildtrack/internal/domain/milestone"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/middleware"
	"buildtrack/internal/services"
	"buildtrack/internal/transport/httpdto"
)

type MilestoneHandler struct {
	workflow *services.WorkflowService
}

func NewMilestoneHandler(workflow *services.WorkflowService) *MilestoneHandler {
	return &MilestoneHandler{workflow: workflow}
}

// ChangeStatus is the manual status change path; role capability is
// checked here, once, so the auto-completion handler can share the
// service method without it.
func (h *MilestoneHandler) ChangeStatus(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if !user.CanManageAutomation(actor.Role) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("insufficient role", "PERMISSION_DENIED"))
		return
	}
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid milestone id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.ChangeMilestoneStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	err = h.workflow.ChangeMilestoneStatus(c.Request.Context(), actor, milestoneID, milestone.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MilestoneHandler) SetFlags(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if !user.CanManageAutomation(actor.Role) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("insufficient role", "PERMISSION_DENIED"))
		return
	}
	milestoneID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid milestone id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.MilestoneFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	err = h.workflow.SetMilestoneFlags(c.Request.Context(), actor, milestoneID, req.Blocked, req.FailedCheck)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MilestoneHandler) SetChecklistItemDone(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid checklist item id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.ChecklistItemDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	err = h.workflow.SetChecklistItemDone(c.Request.Context(), actor, itemID, req.Done)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
