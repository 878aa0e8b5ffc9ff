package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/internal/swapmode"
	"matehost-scheduler/backend/pkg/events"
)

func setupTestSwapService() (SwapService, *mocks) {
	m := newMocks()
	return NewSwapService(m.repo, defaultDefs(), m.events, zap.NewNop()), m
}

// requestSwap 以 caller 身份点选 first、second 生成换班申请
func requestSwap(t *testing.T, svc SwapService, callerID, first, second string) string {
	t.Helper()
	if _, err := svc.Initiate(context.Background(), first, callerID); err != nil {
		t.Fatalf("Initiate 应成功: %v", err)
	}
	resp, err := svc.Select(context.Background(), second, callerID)
	if err != nil {
		t.Fatalf("Select 应成功: %v", err)
	}
	if resp.Outcome != string(swapmode.OutcomeRequested) || resp.Swap == nil {
		t.Fatalf("期望生成换班申请，实际=%+v", resp)
	}
	return resp.Swap.ID
}

// ── 换班模式测试 ──

func TestSwapService_ModeFlow(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	p := m.addShift("2024-03-16", "alice", model.ShiftMorning, model.StatusPending)

	mode, err := svc.Mode(context.Background(), bob.UserID)
	if err != nil || mode.State != string(swapmode.StateIdle) {
		t.Fatalf("初始应为空闲状态: %+v, %v", mode, err)
	}
	if day, _ := svc.ClickDay(context.Background(), bob.UserID); day.Outcome != string(swapmode.OutcomePassed) {
		t.Errorf("空闲时日期点击应放行，实际=%s", day.Outcome)
	}

	if _, err := svc.Initiate(context.Background(), p.ShiftID, bob.UserID); !errors.Is(err, scheduling.ErrShiftNotApproved) {
		t.Errorf("待审批班次发起换班期望 ErrShiftNotApproved，实际: %v", err)
	}

	entered, err := svc.Initiate(context.Background(), a.ShiftID, bob.UserID)
	if err != nil {
		t.Fatalf("Initiate 应成功: %v", err)
	}
	if entered.State != string(swapmode.StateAwaitingSecondShift) || entered.FirstShift == nil || entered.FirstShift.ID != a.ShiftID {
		t.Errorf("应进入等待第二个班次状态: %+v", entered)
	}
	if day, _ := svc.ClickDay(context.Background(), bob.UserID); day.Outcome != string(swapmode.OutcomeSuppressed) {
		t.Errorf("换班模式下日期点击应被屏蔽，实际=%s", day.Outcome)
	}
	if ignored, _ := svc.Select(context.Background(), p.ShiftID, bob.UserID); ignored.Outcome != string(swapmode.OutcomeIgnored) {
		t.Errorf("点击待审批班次应被忽略，实际=%s", ignored.Outcome)
	}

	cancelled, err := svc.Select(context.Background(), a.ShiftID, bob.UserID)
	if err != nil {
		t.Fatalf("再次点击同一班次应成功: %v", err)
	}
	if cancelled.Outcome != string(swapmode.OutcomeCancelled) || cancelled.State != string(swapmode.StateIdle) {
		t.Errorf("再次点击同一班次应退出换班模式: %+v", cancelled)
	}
	if len(m.swaps.swaps) != 0 {
		t.Error("取消时不应创建换班申请")
	}
}

func TestSwapService_SessionsArePerUser(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	alice := m.addUser("alice", model.RoleMateHost)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)

	if _, err := svc.Initiate(context.Background(), a.ShiftID, bob.UserID); err != nil {
		t.Fatalf("Initiate 应成功: %v", err)
	}
	mode, _ := svc.Mode(context.Background(), alice.UserID)
	if mode.State != string(swapmode.StateIdle) {
		t.Errorf("其他用户的选择状态应独立，实际=%s", mode.State)
	}
}

func TestSwapService_FirstShiftDeletedResetsMode(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)

	if _, err := svc.Initiate(context.Background(), a.ShiftID, bob.UserID); err != nil {
		t.Fatalf("Initiate 应成功: %v", err)
	}
	delete(m.shifts.shifts, a.ShiftID)

	mode, err := svc.Mode(context.Background(), bob.UserID)
	if err != nil {
		t.Fatalf("Mode 应成功: %v", err)
	}
	if mode.State != string(swapmode.StateIdle) || mode.FirstShift != nil {
		t.Errorf("第一个班次被删除后应回到空闲状态: %+v", mode)
	}
}

// ── 发起换班测试 ──

func TestSwapService_Select_CreatesRequest(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)

	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	stored, ok := m.swaps.swaps[id]
	if !ok {
		t.Fatal("换班申请应已保存")
	}
	if stored.RequestedBy != "bob" || stored.Shift1Version != 1 || stored.Shift2Version != 1 {
		t.Errorf("换班申请内容错误: %+v", stored)
	}
	if !m.events.has(events.SwapRequests) {
		t.Error("应发布 swap_requests 变更")
	}
	if a2 := m.shifts.shifts[a.ShiftID]; a2.TeamMember != "bob" {
		t.Error("发起换班不应修改班次")
	}
}

// ── 批准测试 ──

func TestSwapService_Approve_ExchangesMembers(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	if _, err := svc.Approve(context.Background(), id, bob.UserID); !errors.Is(err, scheduling.ErrForbidden) {
		t.Errorf("普通成员批准期望 ErrForbidden，实际: %v", err)
	}

	resp, err := svc.Approve(context.Background(), id, admin.UserID)
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if resp.Discarded {
		t.Fatal("班次都存在时不应丢弃")
	}

	s1, s2 := m.shifts.shifts[a.ShiftID], m.shifts.shifts[b.ShiftID]
	if s1.TeamMember != "alice" || s2.TeamMember != "bob" {
		t.Errorf("成员应已交换，实际 %s / %s", s1.TeamMember, s2.TeamMember)
	}
	if s1.Date != "2024-03-15" || s1.Type != model.ShiftMorning || s2.Type != model.ShiftEvening {
		t.Error("只交换成员，日期与类型保持不变")
	}
	if _, ok := m.swaps.swaps[id]; ok {
		t.Error("批准后换班申请应被删除")
	}
	if got := m.logs.actions(); len(got) != 3 || got[1] != "shift:swap" || got[2] != "shift:swap" {
		t.Errorf("变更记录错误: %v", got)
	}

	if _, err := svc.Approve(context.Background(), id, admin.UserID); !errors.Is(err, ErrSwapNotFound) {
		t.Errorf("重复批准期望 ErrSwapNotFound，实际: %v", err)
	}
}

func TestSwapService_Approve_DiscardsWhenShiftMissing(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	delete(m.shifts.shifts, b.ShiftID)

	list, _ := svc.List(context.Background(), admin.UserID)
	if len(list) != 1 || !list[0].Stale || list[0].Shift2 != nil {
		t.Errorf("班次被删除的申请应标记为过期: %+v", list)
	}

	resp, err := svc.Approve(context.Background(), id, admin.UserID)
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if !resp.Discarded {
		t.Error("班次不存在时应丢弃申请")
	}
	if _, ok := m.swaps.swaps[id]; ok {
		t.Error("丢弃后换班申请应被删除")
	}
	if s1 := m.shifts.shifts[a.ShiftID]; s1.TeamMember != "bob" || s1.Version != 1 {
		t.Error("丢弃时不应修改剩余班次")
	}
}

func TestSwapService_Approve_StaleVersion(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	// 发起后班次被修改
	changed := m.shifts.shifts[b.ShiftID]
	changed.Comments = "调整"
	changed.Version++
	m.shifts.shifts[b.ShiftID] = changed

	_, err := svc.Approve(context.Background(), id, admin.UserID)
	if !errors.Is(err, scheduling.ErrSwapStale) {
		t.Fatalf("期望 ErrSwapStale，实际: %v", err)
	}
	if _, ok := m.swaps.swaps[id]; !ok {
		t.Error("过期的申请应保留，等待管理者拒绝")
	}
	if s1 := m.shifts.shifts[a.ShiftID]; s1.TeamMember != "bob" {
		t.Error("过期时不应修改班次")
	}
}

func TestSwapService_Approve_WriteFailure(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	boom := errors.New("disk full")
	m.shifts.failUpdate, m.shifts.failOn = boom, 2

	if _, err := svc.Approve(context.Background(), id, admin.UserID); !errors.Is(err, boom) {
		t.Errorf("期望透传写入错误，实际: %v", err)
	}
	if m.events.has(events.Shifts) {
		t.Error("写入失败时不应发布 shifts 变更")
	}
}

func TestSwapService_Approve_Concurrent(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	// mock 不是并发安全的，用锁串行化事务，模拟数据库行锁
	var mu sync.Mutex
	m.repo.Tx = lockedTx{mu: &mu, inner: m.tx}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(context.Background(), id, admin.UserID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrSwapNotFound):
			t.Errorf("后到的批准期望 ErrSwapNotFound，实际: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("只能有一次批准成功，实际=%d", succeeded)
	}
	if s1 := m.shifts.shifts[a.ShiftID]; s1.TeamMember != "alice" {
		t.Errorf("成员只应交换一次，实际=%s", s1.TeamMember)
	}
}

// ── 拒绝 / 列表测试 ──

func TestSwapService_Reject(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	asis := m.addUser("asis", model.RoleAssistant)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	id := requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	if err := svc.Reject(context.Background(), id, bob.UserID); !errors.Is(err, scheduling.ErrForbidden) {
		t.Errorf("普通成员拒绝期望 ErrForbidden，实际: %v", err)
	}
	if err := svc.Reject(context.Background(), id, asis.UserID); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}
	if len(m.swaps.swaps) != 0 {
		t.Error("拒绝后换班申请应被删除")
	}
	if s1 := m.shifts.shifts[a.ShiftID]; s1.TeamMember != "bob" || s1.Version != 1 {
		t.Error("拒绝不应修改班次")
	}
}

func TestSwapService_List_VisibleToRequesterOnly(t *testing.T) {
	svc, m := setupTestSwapService()
	bob := m.addUser("bob", model.RoleMateHost)
	alice := m.addUser("alice", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)
	a := m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	b := m.addShift("2024-03-16", "alice", model.ShiftEvening, model.StatusApproved)
	requestSwap(t, svc, bob.UserID, a.ShiftID, b.ShiftID)

	for _, tc := range []struct {
		caller string
		want   int
	}{{bob.UserID, 1}, {alice.UserID, 0}, {admin.UserID, 1}} {
		list, err := svc.List(context.Background(), tc.caller)
		if err != nil {
			t.Fatalf("List 应成功: %v", err)
		}
		if len(list) != tc.want {
			t.Errorf("用户 %s 期望看到 %d 条，实际=%d", tc.caller, tc.want, len(list))
		}
	}
}

type lockedTx struct {
	mu    *sync.Mutex
	inner *mockTxManager
}

func (l lockedTx) WithinTx(ctx context.Context, fn func(tx *repository.Repository) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.WithinTx(ctx, fn)
}
