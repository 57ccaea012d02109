package httpapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type fieldError struct {
	Msg  string `json:"msg"`
	Path string `json:"path"`
}

// writeValidationErrors itemizes every failed field as {msg, path}.
func writeValidationErrors(w http.ResponseWriter, err error) {
	out := []fieldError{}
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range errs {
			out = append(out, fieldError{Msg: fieldMessage(fe), Path: fieldPath(fe)})
		}
	} else {
		out = append(out, fieldError{Msg: "Invalid request body"})
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": out})
}

// fieldPath strips the root struct name from the namespace so the client sees
// the same path it sent ("fullName.firstName").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
