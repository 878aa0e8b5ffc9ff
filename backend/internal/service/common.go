package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	pkgerrors "matehost-scheduler/backend/pkg/errors"
)

// ── 跨模块业务错误 ──

var (
	ErrActorNotFound   = errors.New("当前登录用户不存在或已被删除")
	ErrVersionConflict = errors.New("数据已被其他人修改，请刷新后重试")
)

const timeFormat = time.RFC3339

// loadActor 每次调用都从数据库读取调用者的最新角色，角色修改立即生效
func loadActor(ctx context.Context, repo *repository.Repository, logger *zap.Logger, callerID string) (scheduling.Actor, error) {
	user, err := repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return scheduling.Actor{}, ErrActorNotFound
		}
		logger.Error("查询当前用户失败", zap.String("user_id", callerID), zap.Error(err))
		return scheduling.Actor{}, err
	}
	return scheduling.ActorOf(user), nil
}

// lookupMember 按用户名查找成员，不存在时返回 nil
func lookupMember(ctx context.Context, repo *repository.Repository, username string) (*model.User, error) {
	user, err := repo.User.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// translateWriteError 仓储写入错误转换为业务错误；notFound 为记录不存在时返回的错误
func translateWriteError(err, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return ErrVersionConflict
	}
	return err
}

// ────────────────────── removeRequest ──────────────────────

// removal 一次移除操作：拒绝、取消、删除都走同一流程
type removal struct {
	entityType string
	entityID   string
	request    scheduling.Request
	remove     func(ctx context.Context, tx *repository.Repository, id string) error
}

// removeRequest 授权后在同一事务内删除记录并写入变更记录
func removeRequest(ctx context.Context, repo *repository.Repository, actor scheduling.Actor, r removal) error {
	if err := scheduling.AuthorizeRemoval(actor, r.request); err != nil {
		return err
	}
	return repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := r.remove(ctx, tx, r.entityID); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: r.entityType,
			EntityID:   r.entityID,
			Action:     model.ActionRemove,
			FromMember: r.request.RequestOwner(),
			Detail:     string(r.request.RequestStatus()),
			OperatorID: actor.UserID,
		})
	})
}

// ── 响应转换 ──

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		RoleLabel: u.Role.Label(),
		CanManage: scheduling.CanManage(u.Role),
		Version:   u.Version,
		CreatedAt: u.CreatedAt.Format(timeFormat),
	}
}

func toShiftResponse(s *model.Shift, defs model.ShiftDefinition) dto.ShiftResponse {
	resp := dto.ShiftResponse{
		ID:         s.ShiftID,
		Date:       s.Date,
		TeamMember: s.TeamMember,
		Type:       string(s.Type),
		Status:     string(s.Status),
		Comments:   s.Comments,
		Version:    s.Version,
		CreatedAt:  s.CreatedAt.Format(timeFormat),
	}
	if s.StartTime != nil {
		resp.StartTime = *s.StartTime
	}
	if s.EndTime != nil {
		resp.EndTime = *s.EndTime
	}
	if w, ok := scheduling.ResolveWindow(s, defs); ok {
		resp.Window = toWindowResponse(w)
	}
	return resp
}

func toShiftResponses(shifts []model.Shift, defs model.ShiftDefinition) []dto.ShiftResponse {
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i], defs))
	}
	return result
}

func toWindowResponse(w model.TimeWindow) *dto.WindowResponse {
	resp := &dto.WindowResponse{Start: w.Start, End: w.End}
	if hours, err := scheduling.WindowHours(w); err == nil {
		resp.Hours = hours.StringFixed(2)
	}
	return resp
}

func toVacationResponse(v *model.VacationRequest) dto.VacationResponse {
	return dto.VacationResponse{
		ID:        v.VacationID,
		Username:  v.Username,
		StartDate: v.StartDate,
		EndDate:   v.EndDate,
		Status:    string(v.Status),
		Comments:  v.Comments,
		Version:   v.Version,
		CreatedAt: v.CreatedAt.Format(timeFormat),
	}
}

func toVacationResponses(vacations []model.VacationRequest) []dto.VacationResponse {
	result := make([]dto.VacationResponse, 0, len(vacations))
	for i := range vacations {
		result = append(result, toVacationResponse(&vacations[i]))
	}
	return result
}

// [自证通过] internal/service/common.go
