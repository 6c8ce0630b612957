package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-service/internal/dto"
	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

type PreferenceHandler struct {
	itemService service.ItemService
}

func NewPreferenceHandler(itemService service.ItemService) *PreferenceHandler {
	return &PreferenceHandler{itemService: itemService}
}

// ListPreferences godoc
// @Summary      List every session's preferences
// @Tags         preferences
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=[]domain.Preference}
// @Router       /workspaces/{workspaceId}/preferences [get]
func (h *PreferenceHandler) ListPreferences(c *gin.Context) {
	prefs, err := h.itemService.ListPreferences(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, prefs)
}

// TogglePreference godoc
// @Summary      Toggle a preference
// @Description  Adds the value for the session when absent and removes it otherwise
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        request body dto.TogglePreferenceRequest true "Preference"
// @Success      200 {object} response.SuccessResponse{data=dto.TogglePreferenceResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/preferences [post]
func (h *PreferenceHandler) TogglePreference(c *gin.Context) {
	var req dto.TogglePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	selected, err := h.itemService.TogglePreference(c.Request.Context(), c.Param("workspaceId"), req.Session, req.PreferenceType, req.Value)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.TogglePreferenceResponse{
		PreferenceType: req.PreferenceType,
		Value:          req.Value,
		Selected:       selected,
	})
}
