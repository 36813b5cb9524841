package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"mentorly/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the project's custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// weekday: an English weekday name in any case.
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseWeekday(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs struct-tag validation and folds failures into a ValidationError.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &models.ValidationError{Message: err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return &models.ValidationError{Message: "validation failed: " + strings.Join(msgs, "; ")}
}
