package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/sales-dashboard/internal/aggregate"
	"github.com/ginjaninja78/sales-dashboard/internal/pipeline"
	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// dateParamLayout is the form of the ?date= query parameter.
const dateParamLayout = "2006-01-02"

// uploadField is the multipart field holding the spreadsheet.
const uploadField = "file"

// DatasetHandler serves uploads and the views computed from them.
type DatasetHandler struct {
	store     *Store
	opts      pipeline.Options
	maxUpload int64
}

// NewDatasetHandler creates a handler backed by store. maxUpload bounds the
// request body in bytes; zero means no limit.
func NewDatasetHandler(store *Store, opts pipeline.Options, maxUpload int64) *DatasetHandler {
	return &DatasetHandler{store: store, opts: opts, maxUpload: maxUpload}
}

// uploadSummary is the response to an upload.
type uploadSummary struct {
	ID          string            `json:"id"`
	Records     int               `json:"records"`
	DroppedRows int               `json:"dropped_rows"`
	Columns     []string          `json:"columns"`
	Diagnostics types.Diagnostics `json:"diagnostics"`
}

func summarizeUpload(id string, ds *types.Dataset) uploadSummary {
	return uploadSummary{
		ID:          id,
		Records:     ds.Len(),
		DroppedRows: ds.Diagnostics.DroppedRows,
		Columns:     ds.Columns,
		Diagnostics: ds.Diagnostics,
	}
}

// =============================================================================
// UPLOADS
// =============================================================================

// Upload handles POST /api/datasets.
func (h *DatasetHandler) Upload(c *gin.Context) {
	ds, ok := h.readUpload(c)
	if !ok {
		return
	}
	id := h.store.Add(ds)
	c.JSON(http.StatusCreated, summarizeUpload(id, ds))
}

// Replace handles PUT /api/datasets/:id. The new upload replaces the old
// dataset entirely.
func (h *DatasetHandler) Replace(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Get(id); !ok {
		respondNotFound(c, id)
		return
	}

	ds, ok := h.readUpload(c)
	if !ok {
		return
	}
	if !h.store.Replace(id, ds) {
		respondNotFound(c, id)
		return
	}
	c.JSON(http.StatusOK, summarizeUpload(id, ds))
}

// Delete handles DELETE /api/datasets/:id.
func (h *DatasetHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(id) {
		respondNotFound(c, id)
		return
	}
	c.Status(http.StatusNoContent)
}

// readUpload runs the pipeline on the uploaded file. On failure it writes
// the error response and reports false.
func (h *DatasetHandler) readUpload(c *gin.Context) (*types.Dataset, bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		respondError(c, http.StatusBadRequest, fmt.Errorf("missing %q upload: %w", uploadField, err))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return nil, false
	}
	defer file.Close()

	result, err := pipeline.Run(c.Request.Context(), pipeline.Source{
		Name:   header.Filename,
		Reader: file,
	}, h.opts)
	if err != nil {
		respondError(c, pipelineStatus(err), err)
		return nil, false
	}
	return result.Dataset, true
}

// pipelineStatus maps a pipeline failure to an HTTP status.
func pipelineStatus(err error) int {
	var parseErr *types.ParseError
	var schemaErr *types.SchemaError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &schemaErr), errors.Is(err, types.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// VIEWS
// =============================================================================

// Products handles GET /api/datasets/:id/products?search=.
func (h *DatasetHandler) Products(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		c.JSON(http.StatusOK, aggregate.SearchProducts(ds, c.Query("search")))
	}
}

// Customers handles GET /api/datasets/:id/customers.
func (h *DatasetHandler) Customers(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		c.JSON(http.StatusOK, aggregate.CustomerTotals(ds))
	}
}

// DailyTotals handles GET /api/datasets/:id/daily.
func (h *DatasetHandler) DailyTotals(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		c.JSON(http.StatusOK, aggregate.DailyTotals(ds))
	}
}

// DailyProducts handles GET /api/datasets/:id/daily/products?date=. Without
// a date the earliest date in the dataset is used.
func (h *DatasetHandler) DailyProducts(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	day, ok := dateParam(c)
	if !ok {
		return
	}

	if day == nil {
		c.JSON(http.StatusOK, aggregate.DailyProductBreakdownDefault(ds))
		return
	}
	c.JSON(http.StatusOK, aggregate.DailyProductBreakdown(ds, *day))
}

// Ranking handles GET /api/datasets/:id/ranking.
func (h *DatasetHandler) Ranking(c *gin.Context) {
	if ds, ok := h.dataset(c); ok {
		c.JSON(http.StatusOK, aggregate.ProductRanking(ds))
	}
}

// Views handles GET /api/datasets/:id/views?search=&date=.
func (h *DatasetHandler) Views(c *gin.Context) {
	ds, ok := h.dataset(c)
	if !ok {
		return
	}
	day, ok := dateParam(c)
	if !ok {
		return
	}

	views, err := aggregate.ComputeViews(c.Request.Context(), ds, aggregate.Query{
		Search: c.Query("search"),
		Date:   day,
	})
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// dataset looks up the :id parameter, answering 404 when it is unknown.
func (h *DatasetHandler) dataset(c *gin.Context) (*types.Dataset, bool) {
	id := c.Param("id")
	ds, ok := h.store.Get(id)
	if !ok {
		respondNotFound(c, id)
		return nil, false
	}
	return ds, true
}

// dateParam reads ?date=. A missing parameter yields nil; a malformed one
// answers 400.
func dateParam(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return nil, true
	}
	day, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw))
		return nil, false
	}
	return &day, true
}

// =============================================================================
// RESPONSES
// =============================================================================

func respondError(c *gin.Context, status int, err error) {
	_ = c.Error(err)

	body := gin.H{"error": err.Error()}
	var schemaErr *types.SchemaError
	if errors.As(err, &schemaErr) {
		body["missing"] = schemaErr.Missing
	}
	c.AbortWithStatusJSON(status, body)
}

func respondNotFound(c *gin.Context, id string) {
	respondError(c, http.StatusNotFound, fmt.Errorf("dataset %q not found", id))
}
