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

type RecipeHandler struct {
	recipeService service.RecipeService
}

func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// SuggestRecipes godoc
// @Summary      Suggest recipes
// @Description  Generates three recipes from the workspace's ingredients and stores them
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        request body dto.SuggestRecipesRequest false "Requesting session"
// @Success      200 {object} response.SuccessResponse{data=domain.SuggestionContent}
// @Failure      400 {object} response.ErrorResponse "No ingredients"
// @Failure      502 {object} response.ErrorResponse "Text generation failed"
// @Router       /workspaces/{workspaceId}/recipes [post]
func (h *RecipeHandler) SuggestRecipes(c *gin.Context) {
	var req dto.SuggestRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	suggestion, err := h.recipeService.Suggest(c.Request.Context(), c.Param("workspaceId"), req.Session)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, suggestion)
}

// LatestRecipes godoc
// @Summary      Latest stored suggestion
// @Description  data is null when nothing has been suggested yet
// @Tags         recipes
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=domain.SuggestionContent}
// @Router       /workspaces/{workspaceId}/recipes [get]
func (h *RecipeHandler) LatestRecipes(c *gin.Context) {
	suggestion, err := h.recipeService.Latest(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, suggestion)
}
