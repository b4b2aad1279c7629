package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	categoryapp "github.com/gtfsreview/backend/internal/application/category"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
)

// Multipart fields of the visual example form
const (
	VisualExampleNameField        = "name"
	VisualExampleDescriptionField = "description"
	VisualExampleImageField       = "image"
)

// WidgetHandler serves widget configuration
type WidgetHandler struct {
	BaseHandler
	categories *categoryapp.Service
}

// NewWidgetHandler creates a new WidgetHandler
func NewWidgetHandler(categories *categoryapp.Service) *WidgetHandler {
	return &WidgetHandler{categories: categories}
}

// widgetCall runs fn with the :id widget parameter and answers with the
// updated widget
func (h *WidgetHandler) widgetCall(c *gin.Context, fn func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error)) {
	widgetID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := fn(widgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetWidget godoc
// @Summary      Configuration page of a widget
// @Tags         admin
// @Produce      json
// @Param        type       path  string true  "Widget type (review, consistency, results_capture)"
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/{type}/{id} [get]
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.GetWidget(c.Request.Context(), c.Param("type"), widgetID)
	})
}

// ConfigureWidget godoc
// @Summary      Set the flags of a widget
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        type       path  string true  "Widget type (review, consistency, results_capture)"
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/{type}/{id} [put]
func (h *WidgetHandler) ConfigureWidget(c *gin.Context) {
	var req categoryapp.ConfigureWidgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.ConfigureWidget(c.Request.Context(), c.Param("type"), widgetID, req)
	})
}

// ViewReviewWidget godoc
// @Summary      Review widget as reviewers see it
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/review-widgets/{id} [get]
func (h *WidgetHandler) ViewReviewWidget(c *gin.Context) {
	widgetID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.categories.ViewReviewWidget(c.Request.Context(), widgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// AddRelatedField godoc
// @Summary      Show another field of the row next to the reviewed value
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/review/{id}/related-fields [post]
func (h *WidgetHandler) AddRelatedField(c *gin.Context) {
	var req categoryapp.AddRelatedFieldRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.AddRelatedField(c.Request.Context(), widgetID, req)
	})
}

// DeleteRelatedField godoc
// @Summary      Remove a related field
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Param        field_id   path  string true  "GTFS field ID"
// @Security     BearerAuth
// @Router       /admin/widgets/review/{id}/related-fields/{field_id} [delete]
func (h *WidgetHandler) DeleteRelatedField(c *gin.Context) {
	fieldID, ok := h.uuidParam(c, "field_id")
	if !ok {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.DeleteRelatedField(c.Request.Context(), widgetID, fieldID)
	})
}

// SetRelatedFieldOtherTable godoc
// @Summary      Describe a related field from another table
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/review/{id}/other-table [put]
func (h *WidgetHandler) SetRelatedFieldOtherTable(c *gin.Context) {
	var req categoryapp.SetOtherTableRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.SetRelatedFieldOtherTable(c.Request.Context(), widgetID, req)
	})
}

// AddVisualExample godoc
// @Summary      Upload a visual example
// @Tags         admin
// @Produce      json
// @Accept       multipart/form-data
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/consistency/{id}/visual-examples [post]
func (h *WidgetHandler) AddVisualExample(c *gin.Context) {
	widgetID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	fileName, data, err := formFile(c, VisualExampleImageField)
	if err != nil {
		h.BadRequest(c, "Malformed multipart form")
		return
	}
	if len(data) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "An image is required")
		return
	}
	in := categoryapp.AddVisualExampleInput{
		Name:        c.PostForm(VisualExampleNameField),
		Description: c.PostForm(VisualExampleDescriptionField),
		FileName:    fileName,
		Image:       data,
	}
	resp, err := h.categories.AddVisualExample(c.Request.Context(), widgetID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// DeleteVisualExample godoc
// @Summary      Remove a visual example and its image
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Param        example_id path  string true  "Visual example ID"
// @Security     BearerAuth
// @Router       /admin/widgets/consistency/{id}/visual-examples/{example_id} [delete]
func (h *WidgetHandler) DeleteVisualExample(c *gin.Context) {
	exampleID, ok := h.uuidParam(c, "example_id")
	if !ok {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.DeleteVisualExample(c.Request.Context(), widgetID, exampleID)
	})
}

// AddLink godoc
// @Summary      Attach an external reference
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/consistency/{id}/links [post]
func (h *WidgetHandler) AddLink(c *gin.Context) {
	var req categoryapp.AddLinkRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.AddLink(c.Request.Context(), widgetID, req)
	})
}

// DeleteLink godoc
// @Summary      Remove an external reference
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Param        link_id    path  string true  "Link ID"
// @Security     BearerAuth
// @Router       /admin/widgets/consistency/{id}/links/{link_id} [delete]
func (h *WidgetHandler) DeleteLink(c *gin.Context) {
	linkID, ok := h.uuidParam(c, "link_id")
	if !ok {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.DeleteLink(c.Request.Context(), widgetID, linkID)
	})
}

// SetOtherText godoc
// @Summary      Set the free text guidance
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/consistency/{id}/other-text [put]
func (h *WidgetHandler) SetOtherText(c *gin.Context) {
	var req categoryapp.SetOtherTextRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.SetOtherText(c.Request.Context(), widgetID, req)
	})
}

// AddScore godoc
// @Summary      Add a selectable score
// @Tags         admin
// @Produce      json
// @Accept       json
// @Param        id         path  string true  "ID"
// @Security     BearerAuth
// @Router       /admin/widgets/results_capture/{id}/scores [post]
func (h *WidgetHandler) AddScore(c *gin.Context) {
	var req categoryapp.AddScoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.AddScore(c.Request.Context(), widgetID, req)
	})
}

// DeleteScore godoc
// @Summary      Remove a score no result uses
// @Tags         admin
// @Produce      json
// @Param        id         path  string true  "ID"
// @Param        score_id   path  string true  "Score ID"
// @Security     BearerAuth
// @Router       /admin/widgets/results_capture/{id}/scores/{score_id} [delete]
func (h *WidgetHandler) DeleteScore(c *gin.Context) {
	scoreID, ok := h.uuidParam(c, "score_id")
	if !ok {
		return
	}
	h.widgetCall(c, func(widgetID uuid.UUID) (*categoryapp.WidgetResponse, error) {
		return h.categories.DeleteScore(c.Request.Context(), widgetID, scoreID)
	})
}
