package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

type WorkspaceHandler struct {
	workspaceService service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// CreateWorkspace godoc
// @Summary      Create a workspace
// @Description  Returns a fresh 13-character workspace id with its room name
// @Tags         workspaces
// @Produce      json
// @Success      201 {object} response.SuccessResponse{data=domain.WorkspaceInfo}
// @Failure      500 {object} response.ErrorResponse
// @Router       /workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	info, err := h.workspaceService.Create()
	if err != nil {
		handleServiceError(c, response.WrapAppError(response.ErrCodeInternal, "Failed to create workspace", err))
		return
	}
	response.SendSuccess(c, http.StatusCreated, info)
}

// GetWorkspace godoc
// @Summary      Describe a workspace
// @Tags         workspaces
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=domain.WorkspaceInfo}
// @Failure      400 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId} [get]
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	info, err := h.workspaceService.Describe(c.Param("workspaceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, info)
}
