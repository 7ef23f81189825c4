package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/ParishReservationService/internal/domain"
	"github.com/m04kA/ParishReservationService/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateFormat, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := types.ParseTimeString(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate проверяет DTO по тегам validate и возвращает сообщение с именем первого неверного поля
func Validate(dto interface{}) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "date":
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	case "hhmm":
		return fmt.Errorf("%s must be a time in HH:MM format", field)
	case "gt", "gte", "min":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "lt", "lte", "max":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

// ParseDate разбирает дату формата YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	return time.Parse(domain.DateFormat, value)
}

// ParseOptionalDate разбирает необязательную дату из query
func ParseOptionalDate(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", name)
	}
	return &date, nil
}
