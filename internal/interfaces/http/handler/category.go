package handler

import (
	"github.com/gin-gonic/gin"
	categoryapp "github.com/gtfsreview/backend/internal/application/category"
)

// CategoryHandler serves review category administration and the GTFS
// reference drop-downs
type CategoryHandler struct {
	BaseHandler
	categories *categoryapp.Service
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *categoryapp.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// ListCategories godoc
// @Summary      List review categories
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory godoc
// @Summary      Add a review category for a GTFS field
// @Tags         admin
// @Produce      json
// @Accept       json
// @Security     BearerAuth
// @Router       /admin/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req categoryapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.categories.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCategory godoc
// @Summary      Category details with its widgets
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.categories.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteCategory godoc
// @Summary      Delete a review category
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChooseDataSelector godoc
// @Summary      Set how a category samples feed rows
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/categories/{id}/data-selector [put]
func (h *CategoryHandler) ChooseDataSelector(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req categoryapp.ChooseDataSelectorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.categories.ChooseDataSelector(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DataSelectorChoices godoc
// @Summary      Selectable sampling strategies
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/data-selectors [get]
func (h *CategoryHandler) DataSelectorChoices(c *gin.Context) {
	h.Success(c, h.categories.DataSelectorChoices())
}

// Tables godoc
// @Summary      Tables of the GTFS reference
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/gtfs/tables [get]
func (h *CategoryHandler) Tables(c *gin.Context) {
	h.Success(c, h.categories.Tables())
}

// FieldChoices godoc
// @Summary      Fields of a GTFS table
// @Tags         admin
// @Produce      json
// @Param        table      path  string true  "GTFS table name"
// @Security     BearerAuth
// @Router       /admin/gtfs/tables/{table}/fields [get]
func (h *CategoryHandler) FieldChoices(c *gin.Context) {
	choices, err := h.categories.FieldChoices(c.Param("table"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, choices)
}

// CascadingDropDown godoc
// @Summary      Every table with its fields
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/gtfs/dropdown [get]
func (h *CategoryHandler) CascadingDropDown(c *gin.Context) {
	h.Success(c, h.categories.CascadingDropDown())
}
