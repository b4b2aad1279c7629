package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	evaluationapp "github.com/gtfsreview/backend/internal/application/evaluation"
	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"github.com/gtfsreview/backend/internal/interfaces/http/middleware"
)

// Multipart fields of the result form
const (
	ResultScoreField         = "score_id"
	ResultReasonField        = "score_reason"
	ResultReferenceNameField = "reference_name"
	ResultReferenceURLField  = "reference_url"
	ResultPublishedDateField = "published_reference_date"
	ResultImageField         = "image"

	publishedDateLayout = "2006-01-02"
)

// NoFeedMessage answers evaluation requests made before an upload
const NoFeedMessage = "Please upload a GTFS feed before starting an evaluation."

// EvaluationHandler serves the reviewer's evaluation workflow
type EvaluationHandler struct {
	BaseHandler
	evaluations *evaluationapp.Service
	feeds       *feedapp.Service
}

// NewEvaluationHandler creates a new EvaluationHandler
func NewEvaluationHandler(evaluations *evaluationapp.Service, feeds *feedapp.Service) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, feeds: feeds}
}

// feedSession returns the session when it holds a feed, answering 422
// otherwise
func (h *EvaluationHandler) feedSession(c *gin.Context) (*middleware.SessionState, bool) {
	state, ok := h.session(c)
	if !ok {
		return nil, false
	}
	if !state.Data.HasFeed() {
		h.Error(c, http.StatusUnprocessableEntity, dto.ErrCodeNoFeed, NoFeedMessage)
		return nil, false
	}
	return state, true
}

// NewReviewOptions godoc
// @Summary      Agencies and modes of the session's feed
// @Tags         evaluation
// @Produce      json
// @Router       /evaluations/new [get]
func (h *EvaluationHandler) NewReviewOptions(c *gin.Context) {
	state, ok := h.feedSession(c)
	if !ok {
		return
	}
	options, err := h.feeds.NewReviewOptions(c.Request.Context(), state.Data.FeedDir)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// StartReview godoc
// @Summary      Sample the session's feed and start a review
// @Tags         evaluation
// @Produce      json
// @Accept       json
// @Router       /evaluations [post]
func (h *EvaluationHandler) StartReview(c *gin.Context) {
	state, ok := h.feedSession(c)
	if !ok {
		return
	}
	var req evaluationapp.StartReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.evaluations.StartReview(c.Request.Context(), evaluationapp.StartReviewInput{
		StartReviewRequest: req,
		FeedDir:            state.Data.FeedDir,
		FeedName:           state.Data.FeedName,
		FeedArchiveKey:     state.Data.FeedArchiveKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Progress godoc
// @Summary      Where to resume a review
// @Tags         evaluation
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Router       /evaluations/{review_id} [get]
func (h *EvaluationHandler) Progress(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resp, err := h.evaluations.Progress(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// EvaluateItem godoc
// @Summary      One item of a review with its widgets
// @Tags         evaluation
// @Produce      json
// @Param        review_id  path  string true  "Review ID"
// @Param        category_id path  string true  "Category ID"
// @Param        number     path  int    true  "Item number, starting at 1"
// @Router       /evaluations/{review_id}/categories/{category_id}/items/{number} [get]
func (h *EvaluationHandler) EvaluateItem(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	categoryID, ok := h.uuidParam(c, "category_id")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		h.BadRequest(c, "Invalid number")
		return
	}

	resp, err := h.evaluations.EvaluateItem(c.Request.Context(), reviewID, categoryID, number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordResult godoc
// @Summary      Record the reviewer's score for an item
// @Tags         evaluation
// @Produce      json
// @Accept       multipart/form-data
// @Param        review_id  path  string true  "Review ID"
// @Param        result_id  path  string true  "Result ID"
// @Router       /evaluations/{review_id}/results/{result_id} [post]
func (h *EvaluationHandler) RecordResult(c *gin.Context) {
	reviewID, ok := h.uuidParam(c, "review_id")
	if !ok {
		return
	}
	resultID, ok := h.uuidParam(c, "result_id")
	if !ok {
		return
	}
	in, ok := h.bindResultForm(c)
	if !ok {
		return
	}

	resp, err := h.evaluations.RecordResult(c.Request.Context(), reviewID, resultID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *EvaluationHandler) bindResultForm(c *gin.Context) (evaluationapp.RecordResultInput, bool) {
	var in evaluationapp.RecordResultInput

	fileName, data, err := formFile(c, ResultImageField)
	if err != nil {
		h.BadRequest(c, "Malformed multipart form")
		return in, false
	}
	in.ImageFileName, in.Image = fileName, data

	var details []dto.ValidationDetail
	if raw := strings.TrimSpace(c.PostForm(ResultScoreField)); raw != "" {
		scoreID, err := uuid.Parse(raw)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: ResultScoreField, Message: "Must be a valid UUID"})
		} else {
			in.ScoreID = &scoreID
		}
	}
	if raw := strings.TrimSpace(c.PostForm(ResultPublishedDateField)); raw != "" {
		date, err := time.Parse(publishedDateLayout, raw)
		if err != nil {
			details = append(details, dto.ValidationDetail{Field: ResultPublishedDateField, Message: "Must be a date (YYYY-MM-DD)"})
		} else {
			in.PublishedDate = &date
		}
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details))
		return in, false
	}

	in.ScoreReason = c.PostForm(ResultReasonField)
	in.ReferenceName = c.PostForm(ResultReferenceNameField)
	in.ReferenceURL = c.PostForm(ResultReferenceURLField)
	return in, true
}
