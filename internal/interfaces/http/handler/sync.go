package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// SyncCoordinator is the part of scheduler.SyncCoordinator the API drives
type SyncCoordinator interface {
	TriggerSync(ctx context.Context, opts scheduler.SyncOptions) (*reconciliation.SyncRun, error)
	TriggerOrderSync(ctx context.Context, opts scheduler.OrderSyncOptions) (*reconciliation.SyncRun, error)
	GetStatus() scheduler.Status
	GetHistory(limit int) []*reconciliation.SyncRun
	ScheduleRecurring(intervalMinutes int) error
	StopRecurring()
}

// HealthChecker pings channel adapters
type HealthChecker interface {
	CheckHealth(ctx context.Context, channels []channel.Channel) []reconciliation.ChannelHealth
}

// SyncHandler exposes the sync coordinator over HTTP
type SyncHandler struct {
	BaseHandler
	coordinator SyncCoordinator
	health      HealthChecker
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(coordinator SyncCoordinator, health HealthChecker) *SyncHandler {
	return &SyncHandler{
		coordinator: coordinator,
		health:      health,
	}
}

// TriggerInventorySync godoc
// @Summary      Reconcile inventory with the marketplaces
// @Description  Runs one reconciliation synchronously. Rejected with 409 while another run is active.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body dto.TriggerSyncRequest false "Channels and auto-correct flag"
// @Success      200 {object} dto.Response{data=dto.TriggerSyncResponse}
// @Failure      409 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /sync/inventory [post]
func (h *SyncHandler) TriggerInventorySync(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	channels, err := channel.ParseList(req.Channels)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	run, err := h.coordinator.TriggerSync(c.Request.Context(), scheduler.SyncOptions{
		Channels:    channels,
		AutoCorrect: req.AutoSync,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.TriggerSyncResponse{
		Results: dto.NewSyncRunResponse(run),
		Message: run.Message(),
	})
}

// TriggerOrderSync godoc
// @Summary      Ingest marketplace orders
// @Description  Pulls orders placed since the given time (default: the configured lookback). Shares the run guard with inventory sync.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body dto.TriggerOrderSyncRequest false "Channels and lower bound"
// @Success      200 {object} dto.Response{data=dto.TriggerSyncResponse}
// @Failure      409 {object} dto.Response
// @Router       /sync/orders [post]
func (h *SyncHandler) TriggerOrderSync(c *gin.Context) {
	var req dto.TriggerOrderSyncRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	channels, err := channel.ParseList(req.Channels)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var since time.Time
	if req.Since != nil {
		since = *req.Since
	}

	run, err := h.coordinator.TriggerOrderSync(c.Request.Context(), scheduler.OrderSyncOptions{
		Channels: channels,
		Since:    since,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.TriggerSyncResponse{
		Results: dto.NewSyncRunResponse(run),
		Message: run.Message(),
	})
}

// GetStatus godoc
// @Summary      Sync coordinator status
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.SyncStatusResponse}
// @Router       /sync/status [get]
func (h *SyncHandler) GetStatus(c *gin.Context) {
	h.Success(c, dto.NewSyncStatusResponse(h.coordinator.GetStatus()))
}

// GetHistory godoc
// @Summary      Recent sync runs, newest first
// @Tags         sync
// @Produce      json
// @Param        limit query int false "Maximum runs (1-100)"
// @Success      200 {object} dto.Response{data=[]dto.SyncRunResponse}
// @Router       /sync/history [get]
func (h *SyncHandler) GetHistory(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Success(c, dto.NewSyncRunListResponse(h.coordinator.GetHistory(q.Limit)))
}

// Schedule godoc
// @Summary      Enable the recurring auto-correcting sync
// @Description  Replaces any existing schedule.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body dto.ScheduleRequest true "Interval"
// @Success      200 {object} dto.Response{data=dto.SyncStatusResponse}
// @Router       /sync/schedule [post]
func (h *SyncHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if err := h.coordinator.ScheduleRecurring(req.IntervalMinutes); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncStatusResponse(h.coordinator.GetStatus()))
}

// Unschedule godoc
// @Summary      Disable the recurring sync
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.SyncStatusResponse}
// @Router       /sync/schedule [delete]
func (h *SyncHandler) Unschedule(c *gin.Context) {
	h.coordinator.StopRecurring()
	h.Success(c, dto.NewSyncStatusResponse(h.coordinator.GetStatus()))
}

// GetHealth godoc
// @Summary      Ping every marketplace adapter
// @Tags         sync
// @Produce      json
// @Param        channel query []string false "Restrict to these channels"
// @Success      200 {object} dto.Response{data=dto.SyncHealthResponse}
// @Router       /sync/health [get]
func (h *SyncHandler) GetHealth(c *gin.Context) {
	var q dto.HealthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	channels, err := channel.ParseList(q.Channels)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncHealthResponse(h.health.CheckHealth(c.Request.Context(), channels)))
}

// bindOptionalJSON binds the body when there is one; an empty body keeps the zero request
func (h *SyncHandler) bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}
