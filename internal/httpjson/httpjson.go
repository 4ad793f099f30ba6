package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-playground/validator/v10"
)

type (
	// ErrorBody is the only shape used to report failures to clients.
	ErrorBody struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	}

	// Normalizer is implemented by request bodies that need cleanup
	// (trimming, lower casing) before validation.
	Normalizer interface {
		Normalize()
	}

	ValidationError struct {
		Message string
		Fields  map[string]string
	}
)

const (
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeValidation         = "validation_error"
	CodeDuplicateIdentity  = "duplicate_identity"
	CodeInvalidCredentials = "invalid_credentials"
	CodeServerError        = "server_error"

	MaxBodySize = 1_000_000
)

var (
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (v *ValidationError) Error() string {
	return v.Message
}

// Write encodes v as the response body with the given status.
func Write(w http.ResponseWriter, status int, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("httpjson: unable to encode response, cause %w", err)
	}
	writeRaw(w, status, buf)
	return nil
}

func writeRaw(w http.ResponseWriter, status int, buf []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

// WriteCacheable behaves like Write with status 200, but tags the response
// with an ETag and answers 304 when the client already has the same body.
func WriteCacheable(w http.ResponseWriter, r *http.Request, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("httpjson: unable to encode response, cause %w", err)
	}
	etag := ETag(buf)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); len(match) > 0 && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	writeRaw(w, http.StatusOK, buf)
	return nil
}

func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}

func Error(w http.ResponseWriter, status int, code, message string) {
	Write(w, status, ErrorBody{Error: code, Message: message})
}

func InvalidInput(w http.ResponseWriter, err *ValidationError) {
	Write(w, http.StatusBadRequest, ErrorBody{
		Error:   CodeValidation,
		Message: err.Message,
		Fields:  err.Fields,
	})
}

func ServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, CodeServerError, "Server error")
}

// Decode reads a JSON body into dst, normalizes and validates it.
// Every failure is reported as a *ValidationError.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Message: "Request body is required"}
		}
		return &ValidationError{Message: "Request body is not valid JSON"}
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return Validate(dst)
}

// Validate checks the `validate` struct tags of v.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: "Invalid request"}
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg := describe(fe)
		if len(out.Message) == 0 {
			out.Message = msg
		}
		out.Fields[fieldPath(fe)] = msg
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	name := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%v is required", name)
	case "email":
		return fmt.Sprintf("%v must be a valid email", name)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%v must be at least %v characters long", name, fe.Param())
		}
		return fmt.Sprintf("%v must have at least %v items", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%v must be at most %v characters long", name, fe.Param())
		}
		return fmt.Sprintf("%v must have at most %v items", name, fe.Param())
	case "url":
		return fmt.Sprintf("%v must be a valid url", name)
	default:
		return fmt.Sprintf("%v is invalid", name)
	}
}
