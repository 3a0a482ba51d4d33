package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/go-playground/validator/v10"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error sending response", "error", err)
	}
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Status maps a service error kind to an HTTP status.
func Status(kind svcerr.Kind) int {
	switch kind {
	case svcerr.KindValidation:
		return http.StatusBadRequest
	case svcerr.KindUnauthenticated:
		return http.StatusUnauthorized
	case svcerr.KindForbidden:
		return http.StatusForbidden
	case svcerr.KindNotFound:
		return http.StatusNotFound
	case svcerr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as an error response. Unclassified errors are logged and
// their details are not exposed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := svcerr.As(err)
	if !ok {
		slog.ErrorContext(r.Context(), "Error handling request",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		JSON(w, r, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})

		return
	}

	if e.Kind == svcerr.KindConflict {
		slog.WarnContext(r.Context(), "Request conflicted", "path", r.URL.Path, "error", err)
	}

	JSON(w, r, Status(e.Kind), errorBody{Error: e.Message, Fields: e.Fields})
}

// BadRequest writes a validation error built from a decoding or validation failure.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldName(fe)] = describe(fe)
		}
		Error(w, r, svcerr.Validation("invalid request").WithFields(fields))

		return
	}

	Error(w, r, svcerr.Validation("invalid request: %v", err))
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}

	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
