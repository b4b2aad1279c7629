package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	evaluationapp "github.com/gtfsreview/backend/internal/application/evaluation"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
)

// ReviewHandler serves review results and the completed reviews archive
type ReviewHandler struct {
	BaseHandler
	evaluations *evaluationapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(evaluations *evaluationapp.Service) *ReviewHandler {
	return &ReviewHandler{evaluations: evaluations}
}

// ReviewResults godoc
// @Summary      Results of a review grouped by category
// @Tags         reviews
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Router       /reviews/{review_id}/results [get]
func (h *ReviewHandler) ReviewResults(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.ReviewResults(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetResult godoc
// @Summary      One result of a review
// @Tags         reviews
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Param        result_id  path  string true  "Result ID"
// @Router       /reviews/{review_id}/results/{result_id} [get]
func (h *ReviewHandler) GetResult(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resultID, ok := h.uuidParam(c, "result_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.GetResult(c.Request.Context(), reviewID, resultID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkComplete godoc
// @Summary      Complete a review whose results are all recorded
// @Tags         reviews
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Router       /reviews/{review_id}/complete [post]
func (h *ReviewHandler) MarkComplete(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.MarkReviewComplete(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SearchCompleted godoc
// @Summary      Search completed reviews
// @Tags         reviews
// @Produce      json
// @Param        agency     query string false "agency_id"
// @Param        mode       query int    false "GTFS route_type"
// @Param        page       query int    false "Page number"
// @Param        page_size  query int    false "Page size"
// @Router       /reviews/completed [get]
func (h *ReviewHandler) SearchCompleted(c *gin.Context) {
	var req evaluationapp.SearchReviewsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.evaluations.SearchCompletedReviews(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// ViewCompleted godoc
// @Summary      Results of a completed review
// @Tags         reviews
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Router       /reviews/completed/{review_id} [get]
func (h *ReviewHandler) ViewCompleted(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.ViewCompletedReview(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ViewCompletedResult godoc
// @Summary      One result of a completed review
// @Tags         reviews
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Param        result_id  path  string true  "Result ID"
// @Router       /reviews/completed/{review_id}/results/{result_id} [get]
func (h *ReviewHandler) ViewCompletedResult(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resultID, ok := h.uuidParam(c, "result_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.ViewCompletedResult(c.Request.Context(), reviewID, resultID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
