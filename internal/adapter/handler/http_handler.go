package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/ticket-inventory/internal/adapter/remote"
	"github.com/rl1809/ticket-inventory/internal/core/domain"
	"github.com/rl1809/ticket-inventory/internal/core/service"
	"github.com/rl1809/ticket-inventory/internal/metrics"
)

const idempotencyHeader = "Idempotency-Key"

type HTTPHandler struct {
	manager *service.TableManager
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type listingsResponse struct {
	Rows        []service.Row `json:"rows"`
	Total       int           `json:"total"`
	AllSelected bool          `json:"allSelected"`
}

type selectionResponse struct {
	IDs         []string `json:"ids"`
	AllSelected bool     `json:"allSelected"`
}

type editCellRequest struct {
	Field string          `json:"field" binding:"required"`
	Value json.RawMessage `json:"value" binding:"required"`
}

type toggleFilterRequest struct {
	Field string          `json:"field" binding:"required"`
	Value json.RawMessage `json:"value" binding:"required"`
}

type toggleGroupRequest struct {
	MatchEvent string `json:"matchEvent" binding:"required"`
}

func NewHTTPHandler(manager *service.TableManager, logger *zap.Logger, m *metrics.Metrics) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{manager: manager, logger: logger, metrics: m}
}

// Router builds the gin engine serving the inventory API.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.observe())

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := r.Group("/api")
	api.POST("/reload", h.Reload)

	api.GET("/listings", h.ListListings)
	api.POST("/listings", h.CreateListing)
	api.PATCH("/listings/:id", h.EditCell)
	api.POST("/listings/:id/clone", h.CloneListing)
	api.DELETE("/listings/:id", h.DeleteListing)

	api.GET("/groups", h.ListGroups)
	api.POST("/groups/toggle", h.ToggleGroup)

	api.GET("/selection", h.GetSelection)
	api.POST("/selection/:id/toggle", h.ToggleSelect)
	api.POST("/selection/toggle-all", h.ToggleSelectAll)
	api.POST("/selection/clone", h.CloneSelection)
	api.DELETE("/selection", h.DeleteSelection)

	api.GET("/filters", h.GetFilters)
	api.POST("/filters/toggle", h.ToggleFilter)
	api.DELETE("/filters", h.ClearFilters)
	api.GET("/filters/:field/options", h.FilterOptions)

	api.GET("/recently-cloned", h.RecentlyCloned)
	api.DELETE("/recently-cloned", h.ClearRecentlyCloned)
	api.GET("/write-failures", h.WriteFailures)
	api.GET("/overview", h.Overview)

	return r
}

func (h *HTTPHandler) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status())
		h.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) Reload(c *gin.Context) {
	if err := h.manager.Load(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"count": len(h.manager.Items())}})
}

func (h *HTTPHandler) ListListings(c *gin.Context) {
	rows := h.manager.Rows()
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: listingsResponse{
		Rows:        rows,
		Total:       len(rows),
		AllSelected: h.manager.AllSelected(),
	}})
}

func (h *HTTPHandler) CreateListing(c *gin.Context) {
	var item domain.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	created, err := h.manager.CreateRequest(c.Request.Context(), c.GetHeader(idempotencyHeader), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: "listing created", Data: created})
}

func (h *HTTPHandler) EditCell(c *gin.Context) {
	var req editCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: "field and value are required"})
		return
	}

	updated, err := h.manager.EditCell(c.Request.Context(), c.Param("id"), req.Field, rawValue(req.Value))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: updated})
}

func (h *HTTPHandler) CloneListing(c *gin.Context) {
	clone, err := h.manager.Clone(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: "listing cloned", Data: clone})
}

func (h *HTTPHandler) DeleteListing(c *gin.Context) {
	if err := h.manager.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "listing deleted"})
}

func (h *HTTPHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.Groups()})
}

func (h *HTTPHandler) ToggleGroup(c *gin.Context) {
	var req toggleGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: "matchEvent is required"})
		return
	}
	collapsed := h.manager.ToggleGroup(req.MatchEvent)
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"matchEvent": req.MatchEvent, "collapsed": collapsed}})
}

func (h *HTTPHandler) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.selection()})
}

func (h *HTTPHandler) ToggleSelect(c *gin.Context) {
	if err := h.manager.ToggleSelect(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.selection()})
}

func (h *HTTPHandler) ToggleSelectAll(c *gin.Context) {
	h.manager.ToggleSelectAll()
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.selection()})
}

func (h *HTTPHandler) CloneSelection(c *gin.Context) {
	clones, err := h.manager.CloneSelected(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: clones})
}

func (h *HTTPHandler) DeleteSelection(c *gin.Context) {
	deleted, err := h.manager.DeleteSelected(c.Request.Context())
	if err != nil {
		h.logger.Error("bulk delete stopped", zap.Int("deleted", deleted), zap.Error(err))
		c.JSON(http.StatusBadGateway, APIResponse{
			Success: false,
			Message: "bulk delete stopped at a failed listing",
			Data:    gin.H{"deleted": deleted, "remaining": h.manager.Selection()},
		})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"deleted": deleted}})
}

func (h *HTTPHandler) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.Filters()})
}

func (h *HTTPHandler) ToggleFilter(c *gin.Context) {
	var req toggleFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: "field and value are required"})
		return
	}
	field, err := domain.ParseField(req.Field)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
		return
	}

	h.manager.SetFilter(field, rawValue(req.Value))
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.Filters()})
}

func (h *HTTPHandler) ClearFilters(c *gin.Context) {
	h.manager.ClearFilters()
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "filters cleared"})
}

func (h *HTTPHandler) FilterOptions(c *gin.Context) {
	field, err := domain.ParseField(c.Param("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.FilterOptions(field)})
}

func (h *HTTPHandler) RecentlyCloned(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.RecentlyCloned()})
}

func (h *HTTPHandler) ClearRecentlyCloned(c *gin.Context) {
	h.manager.ClearRecentlyCloned()
	c.JSON(http.StatusOK, APIResponse{Success: true})
}

func (h *HTTPHandler) WriteFailures(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.WriteFailures()})
}

func (h *HTTPHandler) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: h.manager.Overview(c.Request.Context())})
}

func (h *HTTPHandler) selection() selectionResponse {
	return selectionResponse{IDs: h.manager.Selection(), AllSelected: h.manager.AllSelected()}
}

// fail maps a service error onto a status code and response body.
func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status, message := statusFor(err)
	resp := APIResponse{Success: false, Message: message}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Data = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, service.ErrInvalidField),
		errors.Is(err, service.ErrInvalidValue):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid listing"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, service.ErrClosed):
		return http.StatusServiceUnavailable, "shutting down"
	case errors.Is(err, remote.ErrUnavailable), errors.Is(err, remote.ErrInvalidPayload):
		return http.StatusBadGateway, "ticket feed unavailable"
	}
	return http.StatusBadGateway, "store unavailable"
}

// rawValue accepts a JSON string, number or boolean and returns its text.
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
