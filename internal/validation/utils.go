package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/deppfellow/issue-tracker/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

// FormBinder is implemented by payloads that need the whole urlencoded body,
// including keys no struct field binds.
type FormBinder interface {
	BindForm(values url.Values)
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the struct from path, query (GET/DELETE) and
//     body (JSON or urlencoded form). Form payloads implementing FormBinder
//     then receive the whole body.
//  2. payload.Validate() applies validation rules.
//
// A body that cannot be decoded is a 400 *errs.HTTPError. Validate errors
// that are already *errs.ResultError or *errs.HTTPError are returned as is.
func BindAndValidate(c echo.Context, payload Validatable) error {
	req := c.Request()
	isForm := hasMediaType(req, echo.MIMEApplicationForm)

	if isForm {
		if err := parseFormBody(req); err != nil {
			return errs.NewBadRequestError("Invalid request body", false, nil, nil)
		}
	}

	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if binder, ok := payload.(FormBinder); ok && isForm {
		binder.BindForm(req.PostForm)
	}

	if err := payload.Validate(); err != nil {
		var resultErr *errs.ResultError
		var httpErr *errs.HTTPError
		if errors.As(err, &resultErr) || errors.As(err, &httpErr) {
			return err
		}

		msg, fieldErrors := extractValidationError(err)
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

func hasMediaType(req *http.Request, mediaType string) bool {
	base, _, _ := strings.Cut(req.Header.Get(echo.HeaderContentType), ";")
	return strings.TrimSpace(base) == mediaType
}

// parseFormBody fills req.PostForm for methods whose bodies net/http does
// not parse (it only reads POST, PUT and PATCH bodies). The body is restored
// so echo can still read it.
func parseFormBody(req *http.Request) error {
	if req.PostForm != nil {
		return nil
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return req.ParseForm()
	}
	if req.Body == nil {
		return nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return err
	}
	req.PostForm = values
	return nil
}

// bindError maps echo's binding failures without depending on the format of
// their messages.
func bindError(err error) error {
	var bindErr *echo.BindingError
	if errors.As(err, &bindErr) {
		return errs.NewBadRequestError("Invalid request parameters", false, nil, []errs.FieldError{
			{Field: bindErr.Field, Error: "has an invalid value"},
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code != http.StatusBadRequest {
			// 415 and friends are reported with their own status.
			return echoErr
		}
		message := "Invalid request body"
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			message = msg
		}
		return errs.NewBadRequestError(message, false, nil, nil)
	}

	return errs.NewBadRequestError("Invalid request body", false, nil, nil)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed: " + err.Error(), nil
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "uuid":
			msg = "must be a valid UUID"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
