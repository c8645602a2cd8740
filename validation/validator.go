// Package validation checks request payloads before they reach the
// repositories. Create bodies are validated from struct tags; partial
// updates are validated field by field against a PatchRules table.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly-api/sqlbuild"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var handlePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// GetValidator returns the shared validator instance. Field names in errors
// are taken from json tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			return handlePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidationError describes one failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string { return e.Message }

// RequestValidationError collects every failure found in a request.
type RequestValidationError struct {
	Errors []ValidationError `json:"errors"`
}

func (e *RequestValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Messages returns the individual failure messages in order.
func (e *RequestValidationError) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return msgs
}

// Unwrap lets errors.Is match sqlbuild.ErrInvalid so callers treat request
// and storage validation failures alike.
func (e *RequestValidationError) Unwrap() error { return sqlbuild.ErrInvalid }

func (e *RequestValidationError) add(field, tag, param, msg string) {
	e.Errors = append(e.Errors, ValidationError{Field: field, Tag: tag, Param: param, Message: msg})
}

// ValidateStruct runs the validate tags of s. It returns nil or a
// *RequestValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	out := &RequestValidationError{}
	for _, fe := range verrs {
		out.add(fe.Field(), fe.Tag(), fe.Param(), translate(fe, fe.Field()))
	}
	return out
}

// FieldRule constrains one field of a partial update.
type FieldRule struct {
	Kind     sqlbuild.Kind
	Integer  bool
	Nullable bool
	// Tag is a validator tag applied to the non-null value.
	Tag string
}

// PatchRules lists the fields a partial update may touch.
type PatchRules map[string]FieldRule

var (
	CompanyPatch = PatchRules{
		"name":         {Kind: sqlbuild.KindText, Tag: "min=1"},
		"description":  {Kind: sqlbuild.KindText},
		"numEmployees": {Kind: sqlbuild.KindNumber, Integer: true, Nullable: true, Tag: "min=0"},
		"logoUrl":      {Kind: sqlbuild.KindText, Nullable: true, Tag: "url"},
	}

	JobPatch = PatchRules{
		"title":  {Kind: sqlbuild.KindText, Tag: "min=1"},
		"salary": {Kind: sqlbuild.KindNumber, Integer: true, Nullable: true, Tag: "min=0"},
		"equity": {Kind: sqlbuild.KindNumber, Nullable: true, Tag: "min=0,max=1"},
	}
)

// ValidatePatch checks fields against rules. Unknown fields, nulls in
// non-nullable fields, wrong kinds and failed tags are all reported. An
// empty patch is left for the repository to reject.
func ValidatePatch(fields sqlbuild.Fields, rules PatchRules) error {
	out := &RequestValidationError{}
	data := make(map[string]any, len(fields))
	tags := make(map[string]any, len(fields))

	for _, key := range fields.Keys() {
		v := fields[key]
		rule, ok := rules[key]
		switch {
		case !ok:
			out.add(key, "unknown", "", fmt.Sprintf("%s is not an updatable field", key))
			continue
		case v.IsNull():
			if !rule.Nullable {
				out.add(key, "required", "", fmt.Sprintf("%s cannot be null", key))
			}
			continue
		case v.Kind() != rule.Kind:
			out.add(key, "type", rule.Kind.String(), fmt.Sprintf("%s must be a %s", key, rule.Kind))
			continue
		}
		val := v.Any()
		if _, isInt := val.(int64); rule.Integer && !isInt {
			out.add(key, "type", "integer", fmt.Sprintf("%s must be an integer", key))
			continue
		}
		if rule.Tag != "" {
			data[key] = val
			tags[key] = rule.Tag
		}
	}

	failed := GetValidator().ValidateMap(data, tags)
	keys := make([]string, 0, len(failed))
	for k := range failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var verrs validator.ValidationErrors
		if err, ok := failed[key].(error); ok && errors.As(err, &verrs) {
			for _, fe := range verrs {
				out.add(key, fe.Tag(), fe.Param(), translate(fe, key))
			}
			continue
		}
		out.add(key, "invalid", "", fmt.Sprintf("%s is invalid", key))
	}

	if len(out.Errors) == 0 {
		return nil
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

func translate(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "max":
		return translateMinMax(fe, field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "handle":
		return fmt.Sprintf("%s must be a lower-case slug of letters, digits, '-' or '_'", field)
	case "lowercase":
		return fmt.Sprintf("%s must be lower-case", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func translateMinMax(fe validator.FieldError, field string) string {
	bound := "at least"
	if fe.Tag() == "max" {
		bound = "at most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters long", field, bound, fe.Param())
	case reflect.Slice, reflect.Map, reflect.Array:
		return fmt.Sprintf("%s must contain %s %s items", field, bound, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", field, bound, fe.Param())
	}
}
