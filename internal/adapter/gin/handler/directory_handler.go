package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/internal/usecase/directory"
	apperrors "samaj-directory/pkg/errors"
	"samaj-directory/pkg/logger"
)

// maxBodyBytes caps POST bodies.
const maxBodyBytes = 1 << 20

// PageObserver records served pages. *metrics.Metrics implements it.
type PageObserver interface {
	ObservePage(collection string, search bool, items int)
}

// DirectoryHandler handles HTTP requests for directory collections
type DirectoryHandler struct {
	uc    directory.Usecase
	pages PageObserver
	log   *zap.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler instance. pages may be nil.
func NewDirectoryHandler(uc directory.Usecase, pages PageObserver, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		uc:    uc,
		pages: pages,
		log:   log,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListPage handles GET /v1/:collection
//
//	@Summary	List or search a collection
//	@Tags		directory
//	@Produce	json
//	@Param		collection	path		string	true	"organisations | arya_samajs | families | members | activities"
//	@Param		first		query		int		false	"page size (default 30, max 100)"
//	@Param		after		query		string	false	"end cursor of the previous page"
//	@Param		q			query		string	false	"search term; filters are ignored when set"
//	@Param		state		query		string	false	"address state"
//	@Param		district	query		string	false	"address district"
//	@Param		vidhansabha	query		string	false	"address vidhansabha"
//	@Param		type		query		string	false	"activity type"
//	@Success	200			{object}	directory.PageResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/v1/{collection} [get]
func (h *DirectoryHandler) ListPage(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}

	first := 0
	if s := c.Query("first"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_input",
				Message: "first must be a non-negative integer",
			})
			return
		}
		first = n
	}

	in := directory.ListPageRequest{
		Collection: coll,
		First:      first,
		After:      c.Query("after"),
		Query:      c.Query("q"),
		Filter: domain.Filter{
			State:        c.Query("state"),
			District:     c.Query("district"),
			Vidhansabha:  c.Query("vidhansabha"),
			ActivityType: domain.ActivityType(c.Query("type")),
		},
	}

	resp, err := h.uc.ListPage(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if h.pages != nil {
		h.pages.ObservePage(string(coll), in.Query != "", len(resp.Items))
	}
	c.JSON(http.StatusOK, resp)
}

// GetItem handles GET /v1/:collection/:id
//
//	@Summary	Get one item
//	@Tags		directory
//	@Produce	json
//	@Param		collection	path		string	true	"collection name"
//	@Param		id			path		string	true	"item id"
//	@Success	200			{object}	directory.ItemResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/v1/{collection}/{id} [get]
func (h *DirectoryHandler) GetItem(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetItem(c.Request.Context(), directory.GetItemRequest{Collection: coll, ID: c.Param("id")})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateItem handles POST /v1/:collection
//
//	@Summary	Create an item
//	@Tags		directory
//	@Accept		json
//	@Produce	json
//	@Param		collection	path		string	true	"collection name"
//	@Success	201			{object}	directory.ItemResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/v1/{collection} [post]
func (h *DirectoryHandler) CreateItem(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		h.handleError(c, apperrors.NewValidationError("body", "unreadable request body"))
		return
	}
	if len(body) > maxBodyBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "body_too_large",
			Message: "request body exceeds 1MiB",
		})
		return
	}

	resp, err := h.uc.CreateItem(c.Request.Context(), directory.CreateItemRequest{Collection: coll, Payload: body})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteItem handles DELETE /v1/:collection/:id
//
//	@Summary	Delete an item
//	@Tags		directory
//	@Param		collection	path	string	true	"collection name"
//	@Param		id			path	string	true	"item id"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/v1/{collection}/{id} [delete]
func (h *DirectoryHandler) DeleteItem(c *gin.Context) {
	coll, ok := h.collection(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteItem(c.Request.Context(), directory.DeleteItemRequest{Collection: coll, ID: c.Param("id")}); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Counts handles GET /v1/stats/counts
//
//	@Summary	Family and member totals
//	@Tags		stats
//	@Produce	json
//	@Success	200	{object}	domain.Counts
//	@Router		/v1/stats/counts [get]
func (h *DirectoryHandler) Counts(c *gin.Context) {
	counts, err := h.uc.Counts(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *DirectoryHandler) collection(c *gin.Context) (domain.Collection, bool) {
	coll, err := domain.ParseCollection(c.Param("collection"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
		return "", false
	}
	c.Request = c.Request.WithContext(logger.WithCollection(c.Request.Context(), string(coll)))
	return coll, true
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *DirectoryHandler) handleError(c *gin.Context, err error) {
	code := apperrors.HTTPStatus(err)
	log := logger.WithContext(c.Request.Context(), h.log)

	var resp ErrorResponse
	switch code {
	case http.StatusBadRequest:
		resp = ErrorResponse{Error: "invalid_input", Message: err.Error()}
	case http.StatusNotFound:
		resp = ErrorResponse{Error: "not_found", Message: err.Error()}
	case http.StatusConflict:
		resp = ErrorResponse{Error: "already_exists", Message: err.Error()}
	case http.StatusServiceUnavailable:
		resp = ErrorResponse{Error: "unavailable", Message: err.Error()}
	default:
		if errors.Is(err, context.Canceled) {
			// client went away; nothing useful to send
			c.Status(499)
			return
		}
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	}

	if code < http.StatusInternalServerError {
		log.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", code), zap.Error(err))
	}
	c.JSON(code, resp)
}
