package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("gender", validateGender)

	// Report fields by their JSON names, the form and API use those
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateGender(fl validator.FieldLevel) bool {
	switch models.Gender(fl.Field().String()) {
	case models.GenderMale, models.GenderFemale, models.GenderUnknown:
		return true
	}
	return false
}

// validateStruct runs the struct tags and converts failures to field errors
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(models.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &models.ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	case "gender":
		return "Gender must be male, female or unknown"
	case "email":
		return "A valid email address is required"
	case "min":
		return fmt.Sprintf("%s is too short", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
