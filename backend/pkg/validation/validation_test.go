package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Date  string  `json:"date"  validate:"required,datekey"`
	Start *string `json:"start" validate:"omitempty,hhmm"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("RegisterOn 失败: %v", err)
	}
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator(t)
	good, bad := "08:30", "8.30"

	if err := v.Struct(sample{Date: "2024-03-15", Start: &good}); err != nil {
		t.Errorf("合法参数校验失败: %v", err)
	}
	if err := v.Struct(sample{Date: "2024-03-15"}); err != nil {
		t.Errorf("可选时间为空时应通过: %v", err)
	}

	err := v.Struct(sample{Date: "15/03/2024", Start: &bad})
	if err == nil {
		t.Fatal("期望校验失败")
	}
	details := Describe(err)
	if !strings.Contains(details, "date: datekey") || !strings.Contains(details, "start: hhmm") {
		t.Errorf("details 应使用 json 字段名，实际=%s", details)
	}
}
