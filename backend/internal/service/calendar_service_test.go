package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"matehost-scheduler/backend/internal/dto"
	"matehost-scheduler/backend/internal/model"
)

func setupTestCalendarService() (CalendarService, *mocks) {
	m := newMocks()
	now := func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }
	return NewCalendarService(m.repo, defaultDefs(), now, zap.NewNop()), m
}

func TestCalendarService_Month(t *testing.T) {
	svc, m := setupTestCalendarService()
	m.addShift("2024-03-15", "bob", model.ShiftMorning, model.StatusApproved)
	m.addShift("2024-03-15", "bob", model.ShiftEvening, model.StatusPending)
	m.addShift("2024-04-01", "bob", model.ShiftMorning, model.StatusApproved)
	m.addVacation("alice", "2024-02-28", "2024-03-02", model.StatusApproved)
	m.addVacation("carla", "2024-03-01", "2024-03-01", model.StatusPending)

	resp, err := svc.Month(context.Background(), &dto.CalendarRequest{Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("Month 应成功: %v", err)
	}
	if len(resp.Days) != 31 || resp.LeadingBlanks != 5 {
		t.Fatalf("2024 年 3 月应有 31 天且前置 5 个空白格，实际 %d / %d", len(resp.Days), resp.LeadingBlanks)
	}

	day15 := resp.Days[14]
	if !day15.IsToday || len(day15.Shifts) != 2 {
		t.Errorf("15 日应为今天且有 2 个班次（含待审批），实际 today=%v shifts=%d", day15.IsToday, len(day15.Shifts))
	}
	if day15.Shifts[0].Window == nil || day15.Shifts[0].Window.Start != "08:00" {
		t.Errorf("班次应带有时间段: %+v", day15.Shifts[0])
	}

	if v := resp.Days[0].Vacations; len(v) != 1 || v[0].Username != "alice" {
		t.Errorf("1 日应只显示已批准的休假，实际=%+v", v)
	}
	if v := resp.Days[2].Vacations; len(v) != 0 {
		t.Errorf("3 日不应有休假，实际=%+v", v)
	}
	for _, d := range resp.Days {
		for _, s := range d.Shifts {
			if s.Date != d.Date {
				t.Errorf("班次 %s 出现在错误的日期 %s", s.Date, d.Date)
			}
		}
	}
}

func TestCalendarService_Day(t *testing.T) {
	svc, m := setupTestCalendarService()
	m.addShift("2024-03-16", "bob", model.ShiftMorning, model.StatusApproved)

	resp, err := svc.Day(context.Background(), "2024-03-16")
	if err != nil {
		t.Fatalf("Day 应成功: %v", err)
	}
	if resp.IsToday || resp.Day != 16 || len(resp.Shifts) != 1 {
		t.Errorf("单日投影错误: %+v", resp)
	}
}
