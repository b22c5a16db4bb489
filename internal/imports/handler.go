package imports

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gradtrack-backend/internal/shared/server/middleware"
	"gradtrack-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the import coordinator.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches import routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports", h.runImport)
	rg.GET("/imports", h.list)
	rg.GET("/imports/:id", h.get)
	rg.GET("/imports/:id/failures", h.listFailures)
	rg.DELETE("/imports/:id", h.delete)
}

type runImportRequest struct {
	Name       string `json:"name"`
	SourceFile string `json:"sourceFile"`
	Rows       []Row  `json:"rows"`
}

func (h *Handler) runImport(c *gin.Context) {
	var req runImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	batch, err := h.Svc.RunImport(c.Request.Context(), RunImportInput{
		Name:        req.Name,
		SourceFile:  req.SourceFile,
		Rows:        req.Rows,
		InitiatorID: middleware.IdentityFromContext(c),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "batch name is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "import failed before any row was processed", nil)
		return
	}
	c.Set("batchId", batch.ID)
	respond.JSON(c, http.StatusCreated, batch)
}

func (h *Handler) list(c *gin.Context) {
	limit := queryInt(c, "limit", 20, 100)
	offset := queryInt(c, "offset", 0, -1)

	batches, total, err := h.Svc.ListBatches(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list import batches", nil)
		return
	}
	if batches == nil {
		batches = []Batch{}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"batches": batches,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) get(c *gin.Context) {
	batch, err := h.Svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBatchError(c, err)
		return
	}
	respond.OK(c, batch)
}

func (h *Handler) listFailures(c *gin.Context) {
	failures, err := h.Svc.ListFailures(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBatchError(c, err)
		return
	}
	if failures == nil {
		failures = []RowFailure{}
	}
	respond.OK(c, gin.H{"failures": failures})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		respondBatchError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondBatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "batch id is required", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "import batch not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "import batch operation failed", nil)
	}
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
