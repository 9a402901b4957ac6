package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

// customRule carries the error code and message template of a registered tag.
type customRule struct {
	code    string
	message string // fmt template taking the field name
}

var (
	rulesMu     sync.RWMutex
	customRules = map[string]customRule{}
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(fieldName)
}

// fieldName reports fields by their query or json name so errors match what the client sent.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"query", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// RegisterValidation adds a validation tag with its own error code and message.
func RegisterValidation(tag, code, message string, fn validator.Func) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	rulesMu.Lock()
	customRules[tag] = customRule{code: code, message: message}
	rulesMu.Unlock()
	return nil
}

// ReadAndValidateRequest fills defaults, binds the request over them and validates.
// Defaults go first so an explicit zero from the client survives.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(err)
	}

	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validatorDefaultRules(err)
	}

	return nil
}

// DecodeAndValidate is ReadAndValidateRequest for a raw JSON payload, such as a websocket frame.
func DecodeAndValidate(ctx context.Context, data []byte, req interface{}) interface{} {
	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(err)
	}

	if err := json.Unmarshal(data, req); err != nil {
		return []ValidationError{{
			Code:    "ERR_MALFORMED_JSON",
			Message: err.Error(),
		}}
	}

	if err := validate.StructCtx(ctx, req); err != nil {
		return validatorDefaultRules(err)
	}

	return nil
}

func validatorDefaultRules(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Code:    getErrorCode(e),
				Field:   e.Field(),
				Message: getErrorMessage(e),
				Params:  getErrorParams(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

func lookupRule(tag string) (customRule, bool) {
	rulesMu.RLock()
	defer rulesMu.RUnlock()
	r, ok := customRules[tag]
	return r, ok
}

func getErrorCode(fe validator.FieldError) string {
	if r, ok := lookupRule(fe.Tag()); ok && r.code != "" {
		return r.code
	}
	return "ERR_" + strings.ToUpper(fe.Tag())
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	if r, ok := lookupRule(fe.Tag()); ok && r.message != "" {
		return fmt.Sprintf(r.message, field)
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func getErrorParams(fe validator.FieldError) map[string]interface{} {
	params := make(map[string]interface{})

	switch fe.Tag() {
	case "min", "gte":
		params["min"] = fe.Param()
	case "max", "lte":
		params["max"] = fe.Param()
	case "oneof":
		params["options"] = strings.Split(fe.Param(), " ")
	}
	if s, ok := fe.Value().(string); ok && fe.Tag() != "required" {
		params["value"] = s
	}

	return params
}
