// Package swapmode 实现换班的两步选择：先点第一个班次，再点第二个班次
//
// 选择状态只属于当前会话，不持久化，丢失后重新点选即可。
// Selector 不是并发安全的，由调用方加锁。
package swapmode

import (
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/scheduling"
)

// State 选择状态
type State string

const (
	StateIdle                State = "idle"
	StateAwaitingSecondShift State = "awaiting_second_shift"
)

// Outcome 一次点击的结果
type Outcome string

const (
	OutcomeEntered    Outcome = "entered"    // 已选中第一个班次
	OutcomeCancelled  Outcome = "cancelled"  // 退出换班模式，未创建申请
	OutcomeIgnored    Outcome = "ignored"    // 点击无效（待审批班次等）
	OutcomeRequested  Outcome = "requested"  // 已生成换班申请
	OutcomeSuppressed Outcome = "suppressed" // 换班模式下屏蔽日期点击
	OutcomePassed     Outcome = "passed"     // 空闲状态下的日期点击照常处理
)

// Result 点击结果；Outcome 为 requested 时 Swap 非空
type Result struct {
	Outcome Outcome
	Swap    *model.SwapRequest
}

// Selector 单个用户的换班选择状态机
type Selector struct {
	actor scheduling.Actor
	first *model.Shift
}

// New 创建空闲状态的选择器
func New(actor scheduling.Actor) *Selector {
	return &Selector{actor: actor}
}

// State 当前状态
func (s *Selector) State() State {
	if s.first == nil {
		return StateIdle
	}
	return StateAwaitingSecondShift
}

// First 已选中的第一个班次，空闲时为 nil
func (s *Selector) First() *model.Shift {
	return s.first
}

// SetActor 更新操作者（角色或用户名变化后）
func (s *Selector) SetActor(actor scheduling.Actor) {
	s.actor = actor
}

// Begin 从班次详情发起换班；只有已批准的班次可以作为第一个班次
// 已处于等待状态时以新班次重新开始
func (s *Selector) Begin(shift *model.Shift) (Result, error) {
	if err := scheduling.CheckSwappable(shift); err != nil {
		return Result{Outcome: OutcomeIgnored}, err
	}
	first := *shift
	s.first = &first
	return Result{Outcome: OutcomeEntered}, nil
}

// Refresh 用最新的第一个班次替换快照；班次已不存在或不再可换时回到空闲
func (s *Selector) Refresh(current *model.Shift) {
	if s.first == nil {
		return
	}
	if current == nil || current.ShiftID != s.first.ShiftID || scheduling.CheckSwappable(current) != nil {
		s.first = nil
		return
	}
	first := *current
	s.first = &first
}

// ClickShift 点击一个班次
//
//   - 空闲：已批准班次进入等待状态，其余忽略
//   - 等待：再次点击同一班次取消；待审批班次忽略；其他已批准班次生成换班申请并回到空闲
func (s *Selector) ClickShift(shift *model.Shift) (Result, error) {
	if s.first == nil {
		if shift.Status != model.StatusApproved {
			return Result{Outcome: OutcomeIgnored}, nil
		}
		return s.Begin(shift)
	}

	if shift.ShiftID == s.first.ShiftID {
		s.first = nil
		return Result{Outcome: OutcomeCancelled}, nil
	}
	if shift.Status != model.StatusApproved {
		return Result{Outcome: OutcomeIgnored}, nil
	}

	swap, err := scheduling.NewSwapRequest(s.actor, s.first, shift)
	if err != nil {
		return Result{Outcome: OutcomeIgnored}, err
	}
	s.first = nil
	return Result{Outcome: OutcomeRequested, Swap: swap}, nil
}

// ClickDay 点击日期格
func (s *Selector) ClickDay() Result {
	if s.first != nil {
		return Result{Outcome: OutcomeSuppressed}
	}
	return Result{Outcome: OutcomePassed}
}

// Cancel 主动退出换班模式
func (s *Selector) Cancel() Result {
	if s.first == nil {
		return Result{Outcome: OutcomeIgnored}
	}
	s.first = nil
	return Result{Outcome: OutcomeCancelled}
}
