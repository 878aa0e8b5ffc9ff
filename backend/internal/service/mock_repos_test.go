package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/repository"
	"matehost-scheduler/backend/internal/scheduling"
	pkgerrors "matehost-scheduler/backend/pkg/errors"
)

// mock 仓储保存副本，调用方修改返回值不会影响存储，版本号语义与 GORM 实现一致

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return pkgerrors.ErrDuplicate
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	if user.Version == 0 {
		user.Version = 1
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cur, ok := m.users[user.UserID]
	if !ok || cur.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	m.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]model.Shift
	order  []string
	seq    int
	// failUpdate 非空时第 failOn 次 Update 返回该错误
	failUpdate error
	failOn     int
	updates    int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%d", m.seq)
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	m.shifts[shift.ShiftID] = *shift
	m.order = append(m.order, shift.ShiftID)
	return nil
}

func (m *mockShiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		if err := m.Create(ctx, &shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, f repository.ShiftFilter) ([]model.Shift, error) {
	var result []model.Shift
	for _, id := range m.order {
		s, ok := m.shifts[id]
		if !ok {
			continue
		}
		if (f.From != "" && s.Date < f.From) || (f.To != "" && s.Date > f.To) {
			continue
		}
		if (f.Member != "" && s.TeamMember != f.Member) || (f.Status != "" && s.Status != f.Status) {
			continue
		}
		result = append(result, s)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	m.updates++
	if m.failUpdate != nil && m.updates == m.failOn {
		return m.failUpdate
	}
	cur, ok := m.shifts[shift.ShiftID]
	if !ok || cur.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	m.shifts[shift.ShiftID] = *shift
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.shifts, id)
	return nil
}

// ── Mock VacationRepository ──

type mockVacationRepo struct {
	vacations map[string]model.VacationRequest
	order     []string
	seq       int
}

func newMockVacationRepo() *mockVacationRepo {
	return &mockVacationRepo{vacations: make(map[string]model.VacationRequest)}
}

func (m *mockVacationRepo) Create(_ context.Context, v *model.VacationRequest) error {
	if v.VacationID == "" {
		m.seq++
		v.VacationID = fmt.Sprintf("vac-%d", m.seq)
	}
	if v.Version == 0 {
		v.Version = 1
	}
	m.vacations[v.VacationID] = *v
	m.order = append(m.order, v.VacationID)
	return nil
}

func (m *mockVacationRepo) GetByID(_ context.Context, id string) (*model.VacationRequest, error) {
	if v, ok := m.vacations[id]; ok {
		return &v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVacationRepo) List(_ context.Context, f repository.VacationFilter) ([]model.VacationRequest, error) {
	var result []model.VacationRequest
	for _, id := range m.order {
		v, ok := m.vacations[id]
		if !ok {
			continue
		}
		if (f.Username != "" && v.Username != f.Username) || (f.Status != "" && v.Status != f.Status) {
			continue
		}
		result = append(result, v)
	}
	return result, nil
}

func (m *mockVacationRepo) Update(_ context.Context, v *model.VacationRequest) error {
	cur, ok := m.vacations[v.VacationID]
	if !ok || cur.Version != v.Version {
		return pkgerrors.ErrOptimisticLock
	}
	v.Version++
	m.vacations[v.VacationID] = *v
	return nil
}

func (m *mockVacationRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.vacations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.vacations, id)
	return nil
}

// ── Mock SwapRepository ──

type mockSwapRepo struct {
	swaps map[string]model.SwapRequest
	order []string
	seq   int
}

func newMockSwapRepo() *mockSwapRepo {
	return &mockSwapRepo{swaps: make(map[string]model.SwapRequest)}
}

func (m *mockSwapRepo) Create(_ context.Context, swap *model.SwapRequest) error {
	if swap.SwapRequestID == "" {
		m.seq++
		swap.SwapRequestID = fmt.Sprintf("swap-%d", m.seq)
	}
	m.swaps[swap.SwapRequestID] = *swap
	m.order = append(m.order, swap.SwapRequestID)
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	if s, ok := m.swaps[id]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRepo) List(_ context.Context) ([]model.SwapRequest, error) {
	var result []model.SwapRequest
	for _, id := range m.order {
		if s, ok := m.swaps[id]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockSwapRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.swaps[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.swaps, id)
	return nil
}

// ── Mock ShiftDefinitionRepository ──

type mockShiftDefinitionRepo struct {
	def *model.ShiftDefinition
}

func (m *mockShiftDefinitionRepo) Get(_ context.Context) (*model.ShiftDefinition, error) {
	if m.def == nil {
		return nil, gorm.ErrRecordNotFound
	}
	d := *m.def
	return &d, nil
}

func (m *mockShiftDefinitionRepo) Replace(_ context.Context, def *model.ShiftDefinition) error {
	def.UpdatedAt = time.Now()
	d := *def
	m.def = &d
	return nil
}

// ── Mock ChangeLogRepository ──

type mockChangeLogRepo struct {
	logs []model.ChangeLog
}

func (m *mockChangeLogRepo) Create(_ context.Context, log *model.ChangeLog) error {
	if log.ChangeLogID == "" {
		log.ChangeLogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockChangeLogRepo) List(_ context.Context, entityType string, offset, limit int) ([]model.ChangeLog, int64, error) {
	var filtered []model.ChangeLog
	for _, l := range m.logs {
		if entityType == "" || l.EntityType == entityType {
			filtered = append(filtered, l)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockChangeLogRepo) actions() []string {
	result := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		result = append(result, l.EntityType+":"+l.Action)
	}
	return result
}

// ── Mock TxManager ──

// mockTxManager 直接在同一组 mock 上执行，不模拟回滚
type mockTxManager struct {
	repo  *repository.Repository
	calls int
}

func (m *mockTxManager) WithinTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.calls++
	return fn(m.repo)
}

// ── Mock Publisher ──

type mockPublisher struct {
	mu        sync.Mutex
	published []string
}

func (m *mockPublisher) Publish(_ context.Context, collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, collection)
}

func (m *mockPublisher) has(collection string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.published {
		if c == collection {
			return true
		}
	}
	return false
}

// ── 测试夹具 ──

type mocks struct {
	repo      *repository.Repository
	users     *mockUserRepo
	shifts    *mockShiftRepo
	vacations *mockVacationRepo
	swaps     *mockSwapRepo
	defs      *mockShiftDefinitionRepo
	logs      *mockChangeLogRepo
	tx        *mockTxManager
	events    *mockPublisher
}

func newMocks() *mocks {
	m := &mocks{
		users:     newMockUserRepo(),
		shifts:    newMockShiftRepo(),
		vacations: newMockVacationRepo(),
		swaps:     newMockSwapRepo(),
		defs:      &mockShiftDefinitionRepo{},
		logs:      &mockChangeLogRepo{},
		events:    &mockPublisher{},
	}
	m.repo = &repository.Repository{
		User:            m.users,
		Shift:           m.shifts,
		Vacation:        m.vacations,
		Swap:            m.swaps,
		ShiftDefinition: m.defs,
		ChangeLog:       m.logs,
	}
	m.tx = &mockTxManager{repo: m.repo}
	m.repo.Tx = m.tx
	return m
}

// addUser 预置用户，ID 为 "user-" + username
func (m *mocks) addUser(username string, role model.Role) *model.User {
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$placeholder",
		Role:         role,
	}
	if err := m.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (m *mocks) addShift(date, member string, t model.ShiftType, status model.RequestStatus) *model.Shift {
	s := &model.Shift{Date: date, TeamMember: member, Type: t, Status: status}
	if err := m.shifts.Create(context.Background(), s); err != nil {
		panic(err)
	}
	return s
}

func (m *mocks) addVacation(username, start, end string, status model.RequestStatus) *model.VacationRequest {
	v := &model.VacationRequest{Username: username, StartDate: start, EndDate: end, Status: status}
	if err := m.vacations.Create(context.Background(), v); err != nil {
		panic(err)
	}
	return v
}

// staticDefinitions 固定的班次定义
type staticDefinitions struct {
	def model.ShiftDefinition
}

func (s staticDefinitions) Current(context.Context) (model.ShiftDefinition, error) {
	return s.def, nil
}

func defaultDefs() DefinitionSource {
	return staticDefinitions{def: scheduling.DefaultDefinitions()}
}

// [自证通过] internal/service/mock_repos_test.go
