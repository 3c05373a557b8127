package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/qs3c/edu_go_server/internal/model"
)

// RegisterValidators 注册自定义 binding 校验规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("plantype", func(fl validator.FieldLevel) bool {
		return model.ValidPlan(fl.Field().String())
	})
}
