package auth

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Response is the JSON envelope every auth endpoint answers with. Data and
// Errors are mutually exclusive; Success tells the client which one to read.
type Response struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail ties an error to the request field it concerns
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// SuccessResponse wraps a payload in a successful envelope
func SuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse builds a failed envelope with a single error entry
func ErrorResponse(field, message, code string) Response {
	return Response{
		Success: false,
		Errors: []ErrorDetail{
			{Field: field, Message: message, Code: code},
		},
	}
}

// ResponseFromError renders any error as a failed envelope. Rich errors keep
// their text code and the field recorded in their metadata; validation errors
// fan out into one entry per failed field; anything else becomes a generic
// server error.
func ResponseFromError(err error) Response {
	if details := validationErrorDetails(err); len(details) > 0 {
		return Response{Success: false, Errors: details}
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		field := "request"
		if f, ok := rich.Metadata["field"].(string); ok && f != "" {
			field = f
		}

		code := rich.TextCode
		if code == "" {
			code = "INTERNAL_ERROR"
		}

		return ErrorResponse(field, rich.Message, code)
	}

	return ErrorResponse("request", "internal server error", "INTERNAL_ERROR")
}

func validationErrorDetails(err error) []ErrorDetail {
	verrs, ok := err.(validation.Errors)
	if !ok {
		return nil
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]ErrorDetail, 0, len(fields))
	for _, field := range fields {
		details = append(details, ErrorDetail{
			Field:   field,
			Message: verrs[field].Error(),
			Code:    "VALIDATION_ERROR",
		})
	}

	return details
}
