package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buildtrack/internal/middleware"
	"buildtrack/internal/services"
	"buildtrack/internal/storage"
	"buildtrack/internal/transport/httpdto"
	"buildtrack/pkg/logger"
)

type DocumentHandler struct {
	workflow *services.WorkflowService
	store    storage.ObjectStore
}

func NewDocumentHandler(workflow *services.WorkflowService, store storage.ObjectStore) *DocumentHandler {
	return &DocumentHandler{workflow: workflow, store: store}
}

// Upload records a confirmed upload against a requirement and hands
// back a presigned URL for the bytes.
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	requirementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid requirement id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	key := storage.DocumentKey(actor.WorkspaceID, requirementID, uuid.New(), req.FileName)
	doc, err := h.workflow.UploadDocument(c.Request.Context(), actor, requirementID, services.UploadInput{
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		StorageKey: key,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := httpdto.UploadDocumentResponse{
		DocumentID: doc.ID,
		Version:    doc.Version,
		StorageKey: doc.StorageKey,
	}
	if h.store != nil {
		url, err := h.store.PresignUpload(c.Request.Context(), doc.StorageKey)
		if err != nil {
			if log := logger.GetGlobalLogger(); log != nil {
				log.Errorf("presign upload for document %s: %v", doc.ID, err)
			}
		} else {
			resp.UploadURL = url
		}
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(resp))
}

func (h *DocumentHandler) Review(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid document id", "INVALID_REQUEST"))
		return
	}
	var req httpdto.ReviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}
	err = h.workflow.ReviewDocument(c.Request.Context(), actor, documentID, services.ReviewDecision(req.Decision), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}
