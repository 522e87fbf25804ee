package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Kind    string            `json:"kind,omitempty"`    // validation, state or infrastructure
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper. Decimal fields are
// validated as numbers, and errors are reported under their JSON names.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &ValidationHelper{
		validator: v,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendServiceError maps a cashier error onto its HTTP status. Infrastructure
// failures never leak their cause to the client.
func SendServiceError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	status := StatusFor(err)

	message := err.Error()
	switch kind {
	case KindInfrastructure:
		message = "temporarily unavailable, please retry"
	case KindUnknown:
		log.Printf("[ERROR] unclassified cashier error: %v", err)
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Kind: kind.String()})
}

// StatusFor returns the HTTP status used for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRegisterNotFound), errors.Is(err, ErrTransactionNotFound):
		return http.StatusNotFound
	}

	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindState:
		return http.StatusConflict
	case KindInfrastructure:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
