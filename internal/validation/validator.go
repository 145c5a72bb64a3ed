package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the go-playground validator with domain rules and error
// formatting for the console's form boundary.
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	// decimal.Decimal fields validate as their float value
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("positive_amount", validatePositiveAmount)
	_ = v.RegisterValidation("branch_code", validateBranchCode)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct and returns a map of field names to
// error messages, or nil when the struct is valid.
func (v *Validator) ValidateStruct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		fieldErrors["_"] = err.Error()
		return fieldErrors
	}

	for _, fe := range validationErrors {
		fieldErrors[fe.Field()] = messageForTag(fe)
	}

	return fieldErrors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "account_number":
		return "must be a 9-12 digit account number"
	case "positive_amount":
		return "must be a positive amount"
	case "branch_code":
		return "must be an alphanumeric branch code"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateAccountNumber validates that an account number is 9-12 digits.
func validateAccountNumber(fl validator.FieldLevel) bool {
	var accountNumber string
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int64:
		accountNumber = fmt.Sprintf("%d", fl.Field().Int())
	default:
		accountNumber = fl.Field().String()
	}

	matched, _ := regexp.MatchString(`^\d{9,12}$`, accountNumber)
	return matched
}

// validatePositiveAmount validates that an amount is greater than 0.
func validatePositiveAmount(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() > 0
	case reflect.Float32, reflect.Float64:
		return fl.Field().Float() > 0
	default:
		return false
	}
}

// validateBranchCode validates that a branch code is short alphanumeric.
func validateBranchCode(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z0-9-]{1,20}$`, fl.Field().String())
	return matched
}
