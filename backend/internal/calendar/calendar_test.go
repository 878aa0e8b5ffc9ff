package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matehost-scheduler/backend/internal/model"
)

func dayOf(t *testing.T, m Month, key string) Day {
	t.Helper()
	for _, d := range m.Days {
		if d.Date == key {
			return d
		}
	}
	t.Fatalf("月历中没有 %s", key)
	return Day{}
}

func TestBuildMonth_Layout(t *testing.T) {
	today := time.Date(2024, time.March, 15, 18, 0, 0, 0, time.Local)

	m, err := BuildMonth(2024, time.March, today, nil, nil)
	require.NoError(t, err)

	// 2024-03-01 是周五
	assert.Equal(t, 5, m.LeadingBlanks)
	assert.Len(t, m.Days, 31)
	assert.Equal(t, "2024-03-01", m.Days[0].Date)
	assert.Equal(t, "2024-03-31", m.Days[30].Date)

	todays := 0
	for _, d := range m.Days {
		if d.IsToday {
			todays++
			assert.Equal(t, "2024-03-15", d.Date)
		}
		assert.NotNil(t, d.Shifts)
		assert.NotNil(t, d.Vacations)
	}
	assert.Equal(t, 1, todays)

	feb, err := BuildMonth(2024, time.February, today, nil, nil)
	require.NoError(t, err)
	assert.Len(t, feb.Days, 29)
	assert.Equal(t, 4, feb.LeadingBlanks)

	sept, err := BuildMonth(2024, time.September, today, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sept.LeadingBlanks, "周日开头的月份没有空白格")
}

func TestBuildMonth_ShiftsByExactDate(t *testing.T) {
	shifts := []model.Shift{
		{ShiftID: "1", Date: "2024-03-15", TeamMember: "alice"},
		{ShiftID: "2", Date: "2024-03-16", TeamMember: "bob"},
		{ShiftID: "3", Date: "2024-03-15", TeamMember: "bob", Status: model.StatusPending},
		{ShiftID: "4", Date: "2024-04-15", TeamMember: "carol"},
	}

	m, err := BuildMonth(2024, time.March, time.Now(), shifts, nil)
	require.NoError(t, err)

	got := dayOf(t, m, "2024-03-15").Shifts
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ShiftID)
	assert.Equal(t, "3", got[1].ShiftID)
	assert.Len(t, dayOf(t, m, "2024-03-16").Shifts, 1)
	assert.Empty(t, dayOf(t, m, "2024-03-14").Shifts)
}

func TestBuildMonth_VacationRangeInclusive(t *testing.T) {
	vacations := []model.VacationRequest{
		{VacationID: "v1", Username: "bob", StartDate: "2024-03-10", EndDate: "2024-03-12", Status: model.StatusApproved},
		{VacationID: "v2", Username: "carol", StartDate: "2024-03-10", EndDate: "2024-03-12", Status: model.StatusPending},
		{VacationID: "v3", Username: "dave", StartDate: "2024-02-28", EndDate: "2024-03-01", Status: model.StatusApproved},
	}

	m, err := BuildMonth(2024, time.March, time.Now(), nil, vacations)
	require.NoError(t, err)

	assert.Empty(t, dayOf(t, m, "2024-03-09").Vacations)
	for _, key := range []string{"2024-03-10", "2024-03-11", "2024-03-12"} {
		v := dayOf(t, m, key).Vacations
		require.Len(t, v, 1, key)
		assert.Equal(t, "v1", v[0].VacationID, "待审批休假不应出现")
	}
	assert.Empty(t, dayOf(t, m, "2024-03-13").Vacations)

	first := dayOf(t, m, "2024-03-01").Vacations
	require.Len(t, first, 1)
	assert.Equal(t, "v3", first[0].VacationID, "跨月休假应出现在下个月的第一天")
}

func TestBuildMonth_InvalidMonth(t *testing.T) {
	_, err := BuildMonth(2024, time.Month(13), time.Now(), nil, nil)
	assert.Error(t, err)
}

func TestBuildDay(t *testing.T) {
	shifts := []model.Shift{{ShiftID: "1", Date: "2024-03-15"}}
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local)

	d, err := BuildDay("2024-03-15", today, shifts, nil)
	require.NoError(t, err)
	assert.True(t, d.IsToday)
	assert.Equal(t, 15, d.Day)
	assert.Len(t, d.Shifts, 1)

	_, err = BuildDay("15.03.2024", today, shifts, nil)
	assert.Error(t, err)
}
