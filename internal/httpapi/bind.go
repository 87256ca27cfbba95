package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BindError is returned by Bind when the request body is unusable.
type BindError struct {
	Details []ValidationError
}

func (e *BindError) Error() string {
	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		msgs[i] = d.Message
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// Bind decodes a JSON body into dst, fills `default` tags and validates the
// `validate` tags. An empty body binds to the defaults.
func Bind(r *http.Request, dst interface{}) error {
	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return &BindError{Details: []ValidationError{{Code: "ERR_DECODE", Message: err.Error()}}}
		}
	}

	if err := defaults.Set(dst); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make([]ValidationError, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				details = append(details, ValidationError{
					Code:    "ERR_" + strings.ToUpper(fe.Tag()),
					Field:   fe.Field(),
					Message: fieldMessage(fe),
				})
			}
			return &BindError{Details: details}
		}
		return err
	}
	return nil
}

// WriteBindError writes err as a 400 with field details when available.
func WriteBindError(w http.ResponseWriter, r *http.Request, err error) {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		Write(w, r, http.StatusBadRequest, ErrorBody{Error: "invalid request", Details: bindErr.Details})
		return
	}
	WriteError(w, r, http.StatusBadRequest, err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
