// Package validation checks untrusted upstream payloads against the shapes
// the network adapters expect before any field is trusted.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/LavaJover/affiliate-aggregator/internal/domain"
)

// SchemaError lists every field that did not match the expected shape.
type SchemaError struct {
	Violations []domain.Violation
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "Data validation error: " + strings.Join(msgs, ", ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "xml"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
	return validate
}

// Struct validates v, which must be a struct or pointer to struct.
func Struct(v any) error {
	return convert("", instance().Struct(v))
}

// Slice validates every element of a slice of structs, prefixing violations
// with the element index.
func Slice(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("validation: expected slice, got %s", rv.Kind())
	}
	var all []domain.Violation
	for i := 0; i < rv.Len(); i++ {
		err := convert(fmt.Sprintf("[%d]", i), instance().Struct(rv.Index(i).Interface()))
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			all = append(all, schemaErr.Violations...)
		} else if err != nil {
			return err
		}
	}
	if len(all) > 0 {
		return &SchemaError{Violations: all}
	}
	return nil
}

// DecodeJSON decodes body into dst and validates the result. Type mismatches
// and malformed JSON are reported as schema violations.
func DecodeJSON(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return decodeError(err)
	}
	rv := reflect.Indirect(reflect.ValueOf(dst))
	if rv.Kind() == reflect.Slice {
		return Slice(rv.Interface())
	}
	return Struct(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}
		return &SchemaError{Violations: []domain.Violation{{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("%s: expected %s, received %s", field, typeErr.Type, typeErr.Value),
		}}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{Violations: []domain.Violation{{
			Field:   "(root)",
			Rule:    "json",
			Message: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr),
		}}}
	}
	return fmt.Errorf("decode json: %w", err)
}

func convert(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	violations := make([]domain.Violation, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(prefix+trimRoot(fe.Namespace()), ".")
		violations = append(violations, domain.Violation{
			Field:   field,
			Rule:    fe.Tag(),
			Message: message(field, fe),
		})
	}
	return &SchemaError{Violations: violations}
}

// trimRoot drops the struct type name validator puts in front of every namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return "." + ns[i+1:]
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + ": Required"
	case "min":
		return fmt.Sprintf("%s: must contain at least %s element(s)", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
}
