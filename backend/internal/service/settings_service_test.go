package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
	"matehost-scheduler/backend/internal/scheduling"
	"matehost-scheduler/backend/pkg/events"
)

func setupTestSettingsService() (SettingsService, *mocks) {
	m := newMocks()
	return NewSettingsService(m.repo, m.events, zap.NewNop()), m
}

func TestSettingsService_Defaults(t *testing.T) {
	svc, _ := setupTestSettingsService()

	resp, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if !resp.IsDefault {
		t.Error("未保存过设置时应返回默认值")
	}
	if resp.Morning.Start != "08:00" || resp.Evening.End != "00:00" || resp.Evening.Hours != "8.00" {
		t.Errorf("默认班次定义错误: %+v", resp)
	}
}

func TestSettingsService_Replace(t *testing.T) {
	svc, m := setupTestSettingsService()
	admin := m.addUser("admin", model.RoleAdministrator)

	resp, err := svc.Replace(context.Background(), &dto.ShiftDefinitionRequest{
		Morning: dto.WindowRequest{Start: "07:00", End: "15:00"},
		Evening: dto.WindowRequest{Start: "15:00", End: "23:30"},
	}, admin.UserID)
	if err != nil {
		t.Fatalf("Replace 应成功: %v", err)
	}
	if resp.IsDefault || resp.Evening.Hours != "8.50" {
		t.Errorf("替换结果错误: %+v", resp)
	}

	current, _ := svc.Current(context.Background())
	if current.Morning.Start != "07:00" {
		t.Errorf("Current 应返回新定义，实际=%+v", current)
	}
	if !m.events.has(events.Settings) || !m.events.has(events.Shifts) {
		t.Errorf("应同时发布 settings 与 shifts 变更，实际=%v", m.events.published)
	}
}

func TestSettingsService_Replace_Rejected(t *testing.T) {
	svc, m := setupTestSettingsService()
	bob := m.addUser("bob", model.RoleMateHost)
	admin := m.addUser("admin", model.RoleAdministrator)

	req := &dto.ShiftDefinitionRequest{
		Morning: dto.WindowRequest{Start: "07:00", End: "15:00"},
		Evening: dto.WindowRequest{Start: "15:00", End: "23:00"},
	}
	if _, err := svc.Replace(context.Background(), req, bob.UserID); !errors.Is(err, scheduling.ErrForbidden) {
		t.Errorf("普通成员修改设置期望 ErrForbidden，实际: %v", err)
	}

	req.Evening.End = "25:00"
	if _, err := svc.Replace(context.Background(), req, admin.UserID); !errors.Is(err, scheduling.ErrInvalidTime) {
		t.Errorf("非法时间期望 ErrInvalidTime，实际: %v", err)
	}
	if m.defs.def != nil {
		t.Error("失败时不应保存设置")
	}
}
