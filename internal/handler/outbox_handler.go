package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"buildtrack/internal/domain/user"
	"buildtrack/internal/middleware"
	"buildtrack/internal/services"
	"buildtrack/internal/transport/httpdto"
)

// OutboxHandler exposes the outbox audit view. Failed and poisoned
// events surface nowhere else.
type OutboxHandler struct {
	audit *services.AuditService
}

func NewOutboxHandler(audit *services.AuditService) *OutboxHandler {
	return &OutboxHandler{audit: audit}
}

func (h *OutboxHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	if !user.CanManageAutomation(actor.Role) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("insufficient role", "PERMISSION_DENIED"))
		return
	}
	onlyUnprocessed := c.Query("unprocessed") == "true"
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.audit.ListEvents(c.Request.Context(), onlyUnprocessed, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(events))
}
