package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"edusync/backend/internal/scheduling"
)

// 自定义校验 tag
const (
	weekdayTag = "weekday"
	clockTag   = "clock"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则，并以 json / form tag 作为字段名
// 重复调用返回首次注册的结果
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("校验引擎类型不支持: %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		rules := map[string]validator.Func{
			weekdayTag: weekdayValidation,
			clockTag:   clockValidation,
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

func weekdayValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := scheduling.ParseWeekday(s)
	return err == nil
}

func clockValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := scheduling.ParseClock(s)
	return err == nil
}

// ValidationDetails 将校验错误整理为 "字段: 规则" 列表，非校验错误原样返回
func ValidationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s: 必填", fe.Field()))
		case weekdayTag:
			parts = append(parts, fmt.Sprintf("%s: 应为 Mon-Sun 或 Monday-Sunday", fe.Field()))
		case clockTag:
			parts = append(parts, fmt.Sprintf("%s: 应为 HH:MM:SS", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
