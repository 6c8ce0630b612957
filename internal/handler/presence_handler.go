package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-service/internal/dto"
	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

type PresenceHandler struct {
	presenceService service.PresenceService
}

func NewPresenceHandler(presenceService service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// Heartbeat godoc
// @Summary      Publish a heartbeat
// @Description  Upserts the session's presence record with the server's current time
// @Tags         presence
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        session path string true "Session ID"
// @Param        request body dto.HeartbeatRequest false "Display name"
// @Success      200 {object} response.SuccessResponse{data=dto.HeartbeatResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/presence/{session} [put]
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	var req dto.HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	workspaceID := c.Param("workspaceId")
	session := c.Param("session")
	if err := h.presenceService.Heartbeat(c.Request.Context(), workspaceID, session, req.UserName); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, dto.HeartbeatResponse{
		WorkspaceID: workspaceID,
		UserSession: session,
		UserName:    service.NormalizeName(req.UserName, session),
	})
}

// Leave godoc
// @Summary      Remove a session's presence
// @Tags         presence
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        session path string true "Session ID"
// @Success      200 {object} response.SuccessResponse
// @Failure      400 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/presence/{session} [delete]
func (h *PresenceHandler) Leave(c *gin.Context) {
	if err := h.presenceService.Remove(c.Request.Context(), c.Param("workspaceId"), c.Param("session")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}

// ListOnline godoc
// @Summary      List online users
// @Description  Sessions seen within the liveness window, in join order
// @Tags         presence
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=dto.PresenceResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/presence [get]
func (h *PresenceHandler) ListOnline(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	users, err := h.presenceService.ListOnline(c.Request.Context(), workspaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.NewPresenceResponse(workspaceID, users))
}

// Reap godoc
// @Summary      Delete stale presence records
// @Tags         presence
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=dto.ReapResponse}
// @Router       /workspaces/{workspaceId}/presence/reap [post]
func (h *PresenceHandler) Reap(c *gin.Context) {
	deleted, err := h.presenceService.Reap(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.ReapResponse{Deleted: deleted})
}
