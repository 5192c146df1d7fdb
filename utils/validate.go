package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/webhookx-io/eventsvc/pkg/errs"
)

var ErrValidation = errors.New("request validation")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "yaml"} {
			name, _, _ := strings.Cut(f.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Validate checks v's `validate` tags. Failures are reported as an
// *errs.ValidateError whose fields nest like the struct, keyed by tag name.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := errs.NewValidateError(ErrValidation)
	for _, fe := range fieldErrs {
		path := strings.Split(fe.Namespace(), ".")[1:]
		node := verr.Fields
		for _, name := range path[:len(path)-1] {
			child, ok := node[name].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[name] = child
			}
			node = child
		}
		node[path[len(path)-1]] = describe(fe)
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "oneof":
		return fmt.Sprintf("invalid value: %v", fe.Value())
	case "gt", "gte", "lt", "lte":
		op := map[string]string{"gt": ">", "gte": ">=", "lt": "<", "lte": "<="}[fe.Tag()]
		return fmt.Sprintf("value must be %s %s", op, fe.Param())
	case "min":
		return "length must be at least " + fe.Param()
	}
	return fe.Error()
}
