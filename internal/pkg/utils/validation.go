package utils

import (
	"reflect"
	"strings"
	"telemed-service/internal/pkg/constvars"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("date_only", validateDateOnly)
	validate.RegisterValidation("time_of_day", validateTimeOfDay)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateDateOnly(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(constvars.DateOnlyLayout) {
		return false
	}
	_, err := time.Parse(constvars.DateOnlyLayout, value)
	return err == nil
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len(constvars.TimeOfDayLayout) {
		return false
	}
	_, err := time.Parse(constvars.TimeOfDayLayout, value)
	return err == nil
}
