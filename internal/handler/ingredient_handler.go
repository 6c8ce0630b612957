package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workspace-service/internal/dto"
	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

type IngredientHandler struct {
	itemService service.ItemService
}

func NewIngredientHandler(itemService service.ItemService) *IngredientHandler {
	return &IngredientHandler{itemService: itemService}
}

// ListIngredients godoc
// @Summary      List ingredients
// @Tags         ingredients
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Success      200 {object} response.SuccessResponse{data=[]domain.Ingredient}
// @Router       /workspaces/{workspaceId}/ingredients [get]
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.itemService.ListIngredients(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ingredients)
}

// AddIngredient godoc
// @Summary      Add an ingredient
// @Description  Appends after the current last position
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        request body dto.AddIngredientRequest true "Ingredient"
// @Success      201 {object} response.SuccessResponse{data=domain.Ingredient}
// @Failure      400 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/ingredients [post]
func (h *IngredientHandler) AddIngredient(c *gin.Context) {
	var req dto.AddIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ingredient, err := h.itemService.AddIngredient(c.Request.Context(), c.Param("workspaceId"), req.Session, req.UserName, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, ingredient)
}

// RenameIngredient godoc
// @Summary      Rename an ingredient
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        itemId path string true "Item ID (UUID)"
// @Param        request body dto.RenameIngredientRequest true "New name"
// @Success      200 {object} response.SuccessResponse{data=domain.Ingredient}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/ingredients/{itemId} [put]
func (h *IngredientHandler) RenameIngredient(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid item ID")
		return
	}

	var req dto.RenameIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	ingredient, err := h.itemService.RenameIngredient(c.Request.Context(), c.Param("workspaceId"), itemID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, ingredient)
}

// DeleteIngredient godoc
// @Summary      Delete an ingredient
// @Tags         ingredients
// @Produce      json
// @Param        workspaceId path string true "Workspace ID"
// @Param        itemId path string true "Item ID (UUID)"
// @Success      200 {object} response.SuccessResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /workspaces/{workspaceId}/ingredients/{itemId} [delete]
func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid item ID")
		return
	}

	if err := h.itemService.DeleteIngredient(c.Request.Context(), c.Param("workspaceId"), itemID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, nil)
}
