package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/session"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
	"github.com/gtfsreview/backend/internal/interfaces/http/middleware"
)

// Upload form field and flash messages
const (
	FeedFormField      = "gtfs_zip"
	FlashUploadSuccess = "Your GTFS file has been successfully uploaded and parsed!"
)

// FeedHandler serves feed upload and the pages built from the session's feed
type FeedHandler struct {
	BaseHandler
	feeds *feedapp.Service
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feeds *feedapp.Service) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// HomeResponse describes the feed uploaded in the session, if any
type HomeResponse struct {
	HasFeed  bool                     `json:"has_feed"`
	FeedName string                   `json:"feed_name,omitempty"`
	Summary  *feedapp.SummaryResponse `json:"summary,omitempty"`
}

// AboutResponse is the about page
type AboutResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Home godoc
// @Summary      Feed summary of the session
// @Tags         feed
// @Produce      json
// @Router       /home [get]
func (h *FeedHandler) Home(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}

	resp := HomeResponse{}
	if state.Data.HasFeed() {
		summary, err := h.feeds.Summary(c.Request.Context(), state.Data.FeedDir)
		switch {
		case err == nil:
			resp = HomeResponse{HasFeed: true, FeedName: state.Data.FeedName, Summary: summary}
		case errors.Is(err, shared.ErrNotFound):
			// swept or never written; forget it
			state.Data.ClearFeed()
		default:
			h.HandleError(c, err)
			return
		}
	}
	h.withMessages(c, http.StatusOK, state, resp)
}

// About godoc
// @Summary      About the tool
// @Tags         feed
// @Produce      json
// @Router       /about [get]
func (h *FeedHandler) About(c *gin.Context) {
	h.Success(c, AboutResponse{
		Name: "GTFS Manual Review",
		Description: "Upload a GTFS feed, then review samples of its data against " +
			"the categories defined by the administrator and record a score for each item.",
	})
}

// Upload godoc
// @Summary      Upload a GTFS zip
// @Tags         feed
// @Produce      json
// @Accept       multipart/form-data
// @Router       /feed [post]
func (h *FeedHandler) Upload(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}

	fileName, data, err := formFile(c, FeedFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "Malformed multipart form")
		return
	}
	if len(data) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, feedapp.ErrNoFile.Message)
		return
	}

	result, err := h.feeds.Upload(c.Request.Context(), fileName, data)
	if err != nil {
		h.uploadFailed(c, state, err)
		return
	}

	previous := state.Data.FeedDir
	state.Data.SetFeed(result.Dir, result.FeedName, result.ArchiveKey)
	state.Data.AddFlash(session.FlashSuccess, FlashUploadSuccess)
	flashes := state.Data.PopFlashes()
	if !h.saveSession(c, state) {
		h.feeds.Discard(c.Request.Context(), result.Dir)
		return
	}
	if previous != "" && previous != result.Dir {
		h.feeds.Discard(c.Request.Context(), previous)
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(HomeResponse{
		HasFeed:  true,
		FeedName: result.FeedName,
		Summary:  result.Summary,
	}).WithMessages(flashes))
}

// uploadFailed flashes the generic upload error and reports err. The
// previous feed of the session, if any, is kept.
func (h *FeedHandler) uploadFailed(c *gin.Context, state *middleware.SessionState, err error) {
	state.Data.AddFlash(session.FlashError, feedapp.ErrInvalidFeed.Message)
	flashes := state.Data.PopFlashes()
	if !h.saveSession(c, state) {
		return
	}

	code, status := dto.ErrCodeInternal, http.StatusInternalServerError
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = dto.NormalizeErrorCode(domainErr.Code)
		status = dto.GetHTTPStatus(code)
	}
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, feedapp.ErrInvalidFeed.Message, getRequestID(c)).WithMessages(flashes))
}

// Messages godoc
// @Summary      Pop pending flash messages
// @Tags         feed
// @Produce      json
// @Router       /messages [get]
func (h *FeedHandler) Messages(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	flashes := state.Data.PopFlashes()
	if !h.saveSession(c, state) {
		return
	}
	if flashes == nil {
		flashes = []session.Flash{}
	}
	h.Success(c, flashes)
}
