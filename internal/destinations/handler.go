package destinations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gradtrack-backend/internal/shared/server/middleware"
	"gradtrack-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the destination record service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches destination record routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/destinations", h.submit)
	rg.GET("/destinations", h.list)
	rg.GET("/destinations/:id", h.get)
	rg.DELETE("/destinations/:id", h.delete)
	rg.POST("/destinations/:id/review", h.review)
	rg.POST("/destinations/bulk-review", h.bulkReview)
	rg.POST("/destinations/bulk-delete", h.bulkDelete)
}

type submitRequest struct {
	StudentID       string  `json:"studentId"`
	DestinationType string  `json:"destinationType"`
	Payload         Payload `json:"payload"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	// Manual submissions carry no originating batch.
	record, err := h.Svc.Upsert(c.Request.Context(), UpsertInput{
		StudentID:       req.StudentID,
		DestinationType: req.DestinationType,
		Payload:         req.Payload,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "student id and a known destination type are required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save destination record", nil)
		return
	}
	c.Set("recordId", record.ID)
	respond.JSON(c, http.StatusCreated, record)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		DestinationType: c.Query("type"),
		Status:          c.Query("status"),
		Query:           c.Query("q"),
		Limit:           queryInt(c, "limit", 20, 100),
		Offset:          queryInt(c, "offset", 0, -1),
	}

	records, total, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list destination records", nil)
		return
	}
	if records == nil {
		records = []Record{}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

func (h *Handler) get(c *gin.Context) {
	record, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "record id is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "destination record not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load destination record", nil)
		}
		return
	}
	respond.OK(c, record)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "record id is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete destination record", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type reviewRequest struct {
	Decision string  `json:"decision"`
	Comment  *string `json:"comment"`
}

func (h *Handler) review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	reviewer := middleware.IdentityFromContext(c)
	record, err := h.Svc.Review(c.Request.Context(), c.Param("id"), req.Decision, reviewer, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "decision must be approved or rejected", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "destination record not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", "record is no longer pending review", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to review destination record", nil)
		}
		return
	}
	c.Set("recordId", record.ID)
	respond.OK(c, record)
}

type bulkReviewRequest struct {
	RecordIDs []string `json:"recordIds"`
	Decision  string   `json:"decision"`
	Comment   *string  `json:"comment"`
}

func (h *Handler) bulkReview(c *gin.Context) {
	var req bulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.RecordIDs) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "recordIds must not be empty", nil)
		return
	}

	reviewer := middleware.IdentityFromContext(c)
	outcomes, err := h.Svc.BulkReview(c.Request.Context(), req.RecordIDs, req.Decision, reviewer, req.Comment)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "decision must be approved or rejected", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to bulk review", nil)
		return
	}
	respond.OK(c, gin.H{"outcomes": outcomes})
}

type bulkDeleteRequest struct {
	RecordIDs []string `json:"recordIds"`
}

func (h *Handler) bulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	deleted, err := h.Svc.BulkDelete(c.Request.Context(), req.RecordIDs)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to bulk delete", nil)
		return
	}
	respond.OK(c, gin.H{"deleted": deleted})
}

func queryInt(c *gin.Context, key string, def, max int) int {
	val := def
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			val = parsed
		}
	}
	if val < 0 {
		val = 0
	}
	if max > 0 && val > max {
		val = max
	}
	return val
}
