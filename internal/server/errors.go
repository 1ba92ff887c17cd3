package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	categorydomain "github.com/smallbiznis/stockroom/internal/category/domain"
	colordomain "github.com/smallbiznis/stockroom/internal/color/domain"
	movementdomain "github.com/smallbiznis/stockroom/internal/movement/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	sizedomain "github.com/smallbiznis/stockroom/internal/size/domain"
	variantdomain "github.com/smallbiznis/stockroom/internal/variant/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// bindError turns a gin binding failure into field level validation errors.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Field:   toSnake(fe.Field()),
				Code:    fe.Tag(),
				Message: "failed on " + fe.Tag(),
			})
		}
		return &ValidationErrors{Errors: out}
	}
	return invalidRequestError()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the access log with the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status == http.StatusInternalServerError {
		return payload.Type, err.Error()
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Message
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCategoryValidationError(err),
		isColorValidationError(err),
		isSizeValidationError(err),
		isProductValidationError(err),
		isVariantValidationError(err),
		isMovementValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, categorydomain.ErrAlreadyExists),
		errors.Is(err, categorydomain.ErrInUse),
		errors.Is(err, colordomain.ErrAlreadyExists),
		errors.Is(err, colordomain.ErrInUse),
		errors.Is(err, sizedomain.ErrAlreadyExists),
		errors.Is(err, sizedomain.ErrInUse),
		errors.Is(err, productdomain.ErrAlreadyExists),
		errors.Is(err, variantdomain.ErrAlreadyExists):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, colordomain.ErrNotFound),
		errors.Is(err, sizedomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, variantdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	for _, sentinel := range []error{
		categorydomain.ErrNotFound,
		colordomain.ErrNotFound,
		sizedomain.ErrNotFound,
		productdomain.ErrNotFound,
		variantdomain.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "not found"
}

// validationErrorCode unwraps batch position prefixes so the client sees the
// sentinel code.
func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "empty_batch":
		return "batch must contain at least one item"
	default:
		return "invalid value"
	}
}

func isCategoryValidationError(err error) bool {
	return errors.Is(err, categorydomain.ErrInvalidID) ||
		errors.Is(err, categorydomain.ErrInvalidName)
}

func isColorValidationError(err error) bool {
	return errors.Is(err, colordomain.ErrInvalidID) ||
		errors.Is(err, colordomain.ErrInvalidName) ||
		errors.Is(err, colordomain.ErrInvalidCode) ||
		errors.Is(err, colordomain.ErrEmptyBatch)
}

func isSizeValidationError(err error) bool {
	return errors.Is(err, sizedomain.ErrInvalidID) ||
		errors.Is(err, sizedomain.ErrInvalidName) ||
		errors.Is(err, sizedomain.ErrInvalidHeightRange) ||
		errors.Is(err, sizedomain.ErrInvalidWeightRange) ||
		errors.Is(err, sizedomain.ErrEmptyBatch)
}

func isProductValidationError(err error) bool {
	return errors.Is(err, productdomain.ErrInvalidID) ||
		errors.Is(err, productdomain.ErrInvalidName) ||
		errors.Is(err, productdomain.ErrInvalidPrice) ||
		errors.Is(err, productdomain.ErrInvalidCategory)
}

func isVariantValidationError(err error) bool {
	return errors.Is(err, variantdomain.ErrInvalidID) ||
		errors.Is(err, variantdomain.ErrInvalidProduct) ||
		errors.Is(err, variantdomain.ErrInvalidColor) ||
		errors.Is(err, variantdomain.ErrInvalidSize) ||
		errors.Is(err, variantdomain.ErrInvalidQuantity) ||
		errors.Is(err, variantdomain.ErrEmptyBatch)
}

func isMovementValidationError(err error) bool {
	return errors.Is(err, movementdomain.ErrInvalidID) ||
		errors.Is(err, movementdomain.ErrInvalidReason)
}

func toSnake(field string) string {
	var (
		b         strings.Builder
		prevLower bool
	)
	for _, r := range field {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}
