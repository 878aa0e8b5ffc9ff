package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/internal/swapmode"
	"matehost-scheduler/backend/pkg/events"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound = errors.New("换班申请不存在或已被处理")
)

// SwapService 换班业务接口
//
// 换班选择状态（第一次点击的班次）按用户保存在进程内存中，不落库，
// 服务重启后回到空闲状态。
type SwapService interface {
	List(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error)

	Mode(ctx context.Context, callerID string) (*dto.SwapModeResponse, error)
	Initiate(ctx context.Context, shiftID, callerID string) (*dto.SwapModeResponse, error)
	Select(ctx context.Context, shiftID, callerID string) (*dto.SwapModeResponse, error)
	ClickDay(ctx context.Context, callerID string) (*dto.SwapModeResponse, error)
	Cancel(ctx context.Context, callerID string) (*dto.SwapModeResponse, error)

	Approve(ctx context.Context, swapID, callerID string) (*dto.ApproveSwapResponse, error)
	Reject(ctx context.Context, swapID, callerID string) error
}

type swapSession struct {
	mu  sync.Mutex
	sel *swapmode.Selector
}

type swapService struct {
	repo   *repository.Repository
	defs   DefinitionSource
	events events.Publisher
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*swapSession
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, defs DefinitionSource, publisher events.Publisher, logger *zap.Logger) SwapService {
	return &swapService{
		repo:     repo,
		defs:     defs,
		events:   publisher,
		logger:   logger,
		sessions: make(map[string]*swapSession),
	}
}

// ────────────────────── List ──────────────────────

// List 管理者看到全部待处理申请，普通成员只看到自己发起的
func (s *swapService) List(ctx context.Context, callerID string) ([]dto.SwapRequestResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	swaps, err := s.repo.Swap.List(ctx)
	if err != nil {
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}
	defs, err := s.defs.Current(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SwapRequestResponse, 0, len(swaps))
	for i := range swaps {
		swap := &swaps[i]
		if !actor.CanManage() && swap.RequestedBy != actor.Username {
			continue
		}
		shift1, err := s.findShift(ctx, swap.ShiftID1)
		if err != nil {
			return nil, err
		}
		shift2, err := s.findShift(ctx, swap.ShiftID2)
		if err != nil {
			return nil, err
		}
		resp := toSwapResponse(swap, shift1, shift2, defs)
		resp.Stale = resp.Stale || shift1 == nil || shift2 == nil
		result = append(result, resp)
	}
	return result, nil
}

// ────────────────────── 换班模式 ──────────────────────

func (s *swapService) Mode(ctx context.Context, callerID string) (*dto.SwapModeResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	sess := s.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.refresh(ctx, sess.sel, ""); err != nil {
		return nil, err
	}
	return s.modeResponse(ctx, sess.sel, swapmode.Result{})
}

// Initiate 从班次详情发起换班，作为第一个班次
func (s *swapService) Initiate(ctx context.Context, shiftID, callerID string) (*dto.SwapModeResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	shift, err := s.mustShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	sess := s.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	res, err := sess.sel.Begin(shift)
	if err != nil {
		return nil, err
	}
	return s.modeResponse(ctx, sess.sel, res)
}

// Select 换班模式下点击班次；第二次点击另一个已批准班次时创建换班申请
func (s *swapService) Select(ctx context.Context, shiftID, callerID string) (*dto.SwapModeResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	shift, err := s.mustShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	sess := s.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.refresh(ctx, sess.sel, shift.ShiftID); err != nil {
		return nil, err
	}
	res, err := sess.sel.ClickShift(shift)
	if err != nil {
		return nil, err
	}

	if res.Outcome == swapmode.OutcomeRequested {
		// 选择状态已回到空闲，写入失败时需要重新点选
		res.Swap.CreatedBy = &actor.UserID
		err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			if err := tx.Swap.Create(ctx, res.Swap); err != nil {
				return err
			}
			return tx.ChangeLog.Create(ctx, &model.ChangeLog{
				EntityType: model.EntitySwap,
				EntityID:   res.Swap.SwapRequestID,
				Action:     model.ActionCreate,
				Detail:     res.Swap.ShiftID1 + " <-> " + res.Swap.ShiftID2,
				OperatorID: actor.UserID,
			})
		})
		if err != nil {
			s.logger.Error("创建换班申请失败", zap.Error(err))
			return nil, err
		}
		s.events.Publish(ctx, events.SwapRequests)
	}

	return s.modeResponse(ctx, sess.sel, res)
}

// ClickDay 换班模式下日期点击被屏蔽，空闲时照常放行（打开新建班次）
func (s *swapService) ClickDay(ctx context.Context, callerID string) (*dto.SwapModeResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	sess := s.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.modeResponse(ctx, sess.sel, sess.sel.ClickDay())
}

func (s *swapService) Cancel(ctx context.Context, callerID string) (*dto.SwapModeResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	sess := s.session(actor)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.modeResponse(ctx, sess.sel, sess.sel.Cancel())
}

// ────────────────────── Approve ──────────────────────

// Approve 在同一事务内重新读取两个班次、交换成员并删除申请
//
// 任一班次已不存在时直接丢弃申请；班次在发起后被修改过则返回 ErrSwapStale，
// 申请保留，由管理者拒绝后重新发起。
func (s *swapService) Approve(ctx context.Context, swapID, callerID string) (*dto.ApproveSwapResponse, error) {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return nil, err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return nil, err
	}

	var plan *scheduling.SwapPlan
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		swap, err := tx.Swap.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		shift1, err := optionalShift(ctx, tx, swap.ShiftID1)
		if err != nil {
			return err
		}
		shift2, err := optionalShift(ctx, tx, swap.ShiftID2)
		if err != nil {
			return err
		}

		plan, err = scheduling.PlanSwapApproval(actor, swap, shift1, shift2)
		if err != nil {
			return err
		}

		if plan.Discard {
			if err := tx.Swap.Delete(ctx, swap.SwapRequestID); err != nil {
				return err
			}
			return tx.ChangeLog.Create(ctx, &model.ChangeLog{
				EntityType: model.EntitySwap,
				EntityID:   swap.SwapRequestID,
				Action:     model.ActionDiscard,
				Detail:     swap.ShiftID1 + " <-> " + swap.ShiftID2,
				OperatorID: callerID,
			})
		}

		plan.Shift1.UpdatedBy = &callerID
		plan.Shift2.UpdatedBy = &callerID
		if err := tx.Shift.Update(ctx, plan.Shift1); err != nil {
			return err
		}
		if err := tx.Shift.Update(ctx, plan.Shift2); err != nil {
			return err
		}
		if err := tx.Swap.Delete(ctx, swap.SwapRequestID); err != nil {
			return err
		}
		for _, log := range []*model.ChangeLog{
			swapLog(plan.Shift1, shift1.TeamMember, swap.SwapRequestID, callerID),
			swapLog(plan.Shift2, shift2.TeamMember, swap.SwapRequestID, callerID),
		} {
			if err := tx.ChangeLog.Create(ctx, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrForbidden),
			errors.Is(err, scheduling.ErrSwapStale),
			errors.Is(err, scheduling.ErrShiftNotApproved):
			return nil, err
		}
		// 并发批准时后到者在删除申请时得到 not found
		if mapped := translateWriteError(err, ErrSwapNotFound); mapped != err {
			return nil, mapped
		}
		s.logger.Error("批准换班失败", zap.String("swap_request_id", swapID), zap.Error(err))
		return nil, err
	}

	s.events.Publish(ctx, events.SwapRequests)
	if plan.Discard {
		s.logger.Info("换班申请涉及的班次已不存在，已丢弃", zap.String("swap_request_id", swapID))
		return &dto.ApproveSwapResponse{Discarded: true}, nil
	}
	s.events.Publish(ctx, events.Shifts)

	defs, err := s.defs.Current(ctx)
	if err != nil {
		return nil, err
	}
	r1, r2 := toShiftResponse(plan.Shift1, defs), toShiftResponse(plan.Shift2, defs)
	return &dto.ApproveSwapResponse{Shift1: &r1, Shift2: &r2}, nil
}

// ────────────────────── Reject ──────────────────────

// Reject 只删除申请，不修改班次
func (s *swapService) Reject(ctx context.Context, swapID, callerID string) error {
	actor, err := loadActor(ctx, s.repo, s.logger, callerID)
	if err != nil {
		return err
	}
	if err := scheduling.AuthorizeManage(actor); err != nil {
		return err
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		swap, err := tx.Swap.GetByID(ctx, swapID)
		if err != nil {
			return err
		}
		if err := tx.Swap.Delete(ctx, swapID); err != nil {
			return err
		}
		return tx.ChangeLog.Create(ctx, &model.ChangeLog{
			EntityType: model.EntitySwap,
			EntityID:   swapID,
			Action:     model.ActionRemove,
			FromMember: swap.RequestedBy,
			Detail:     swap.ShiftID1 + " <-> " + swap.ShiftID2,
			OperatorID: callerID,
		})
	})
	if err != nil {
		if mapped := translateWriteError(err, ErrSwapNotFound); mapped != err {
			return mapped
		}
		s.logger.Error("拒绝换班失败", zap.String("swap_request_id", swapID), zap.Error(err))
		return err
	}

	s.events.Publish(ctx, events.SwapRequests)
	return nil
}

// ── 内部方法 ──

// session 取得用户的选择器，并同步最新身份
func (s *swapService) session(actor scheduling.Actor) *swapSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[actor.UserID]
	if !ok {
		sess = &swapSession{sel: swapmode.New(actor)}
		s.sessions[actor.UserID] = sess
	}
	sess.sel.SetActor(actor)
	return sess
}

// refresh 用数据库中的最新版本替换已选中的第一个班次
// clicked 与第一个班次相同时不刷新，保证再次点击能够取消
func (s *swapService) refresh(ctx context.Context, sel *swapmode.Selector, clicked string) error {
	first := sel.First()
	if first == nil || first.ShiftID == clicked {
		return nil
	}
	current, err := s.findShift(ctx, first.ShiftID)
	if err != nil {
		return err
	}
	sel.Refresh(current)
	return nil
}

func (s *swapService) mustShift(ctx context.Context, shiftID string) (*model.Shift, error) {
	shift, err := s.findShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

// findShift 班次不存在时返回 nil
func (s *swapService) findShift(ctx context.Context, shiftID string) (*model.Shift, error) {
	shift, err := optionalShift(ctx, s.repo, shiftID)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	return shift, nil
}

func optionalShift(ctx context.Context, repo *repository.Repository, shiftID string) (*model.Shift, error) {
	shift, err := repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return shift, nil
}

func (s *swapService) modeResponse(ctx context.Context, sel *swapmode.Selector, res swapmode.Result) (*dto.SwapModeResponse, error) {
	resp := &dto.SwapModeResponse{
		State:   string(sel.State()),
		Outcome: string(res.Outcome),
	}
	first := sel.First()
	if first == nil && res.Swap == nil {
		return resp, nil
	}

	defs, err := s.defs.Current(ctx)
	if err != nil {
		return nil, err
	}
	if first != nil {
		r := toShiftResponse(first, defs)
		resp.FirstShift = &r
	}
	if res.Swap != nil {
		r := toSwapResponse(res.Swap, nil, nil, defs)
		resp.Swap = &r
	}
	return resp, nil
}

// swapLog from 为交换前的成员
func swapLog(shift *model.Shift, from, swapID, callerID string) *model.ChangeLog {
	return &model.ChangeLog{
		EntityType: model.EntityShift,
		EntityID:   shift.ShiftID,
		Action:     model.ActionSwap,
		FromMember: from,
		ToMember:   shift.TeamMember,
		Detail:     swapID,
		OperatorID: callerID,
	}
}

// toSwapResponse shift1 / shift2 为当前班次，nil 表示已删除
func toSwapResponse(swap *model.SwapRequest, shift1, shift2 *model.Shift, defs model.ShiftDefinition) dto.SwapRequestResponse {
	resp := dto.SwapRequestResponse{
		ID:          swap.SwapRequestID,
		ShiftID1:    swap.ShiftID1,
		ShiftID2:    swap.ShiftID2,
		Status:      string(swap.Status),
		RequestedBy: swap.RequestedBy,
		CreatedAt:   swap.CreatedAt.Format(timeFormat),
	}
	if shift1 != nil {
		r := toShiftResponse(shift1, defs)
		resp.Shift1 = &r
		resp.Stale = shift1.Version != swap.Shift1Version
	}
	if shift2 != nil {
		r := toShiftResponse(shift2, defs)
		resp.Shift2 = &r
		resp.Stale = resp.Stale || shift2.Version != swap.Shift2Version
	}
	return resp
}

// [自证通过] internal/service/swap_service.go
