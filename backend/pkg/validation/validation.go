// Package validation 注册请求参数的自定义校验标签
//
//	datekey  YYYY-MM-DD
//	hhmm     HH:MM（00:00 - 23:59）
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"matehost-scheduler/backend/internal/scheduling"
)

// Register 在 gin 默认校验器上注册自定义标签
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验器类型不是 validator.Validate")
	}
	return RegisterOn(v)
}

// RegisterOn 在指定校验器上注册自定义标签
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("datekey", stringRule(scheduling.ValidDateKey)); err != nil {
		return fmt.Errorf("注册 datekey 校验失败: %w", err)
	}
	if err := v.RegisterValidation("hhmm", stringRule(scheduling.ValidClock)); err != nil {
		return fmt.Errorf("注册 hhmm 校验失败: %w", err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return nil
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return ok(fl.Field().String())
	}
}

// Describe 将校验错误整理为 "字段: 规则" 列表，用于响应 details
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+": "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
