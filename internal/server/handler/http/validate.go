package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/atinyakov/portfolio-api/internal/auth"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// requestValidator is shared by all handlers; validator caches struct
// metadata and is safe for concurrent use.
var requestValidator = newValidator()

// newValidator returns a validator that reports JSON field names and knows
// the "strongpassword" and "bcryptlen" rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	return v
}

// strongPassword requires at least 8 characters with a lower case letter,
// an upper case letter, a digit and a symbol.
func strongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// decodeJSON reads the body into dst. dst may be prefilled; fields absent
// from the body keep their value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.ErrBadRequest, "request body is empty")
		}
		return apperr.Wrap(apperr.ErrBadRequest, "invalid JSON body", err)
	}
	return nil
}

// validate checks v and turns rule violations into a BadRequest listing
// every failing field.
func validateRequest(v any) error {
	err := requestValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.New(apperr.ErrBadRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), namespaceRoot(fe))
	switch fe.Tag() {
	case "required":
		return field + " should not be empty"
	case "email":
		return field + " must be an email"
	case "url":
		return field + " must be a URL"
	case "min":
		return fmt.Sprintf("%s must contain at least %s elements", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "strongpassword":
		return field + " is not strong enough"
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", field, auth.MaxPasswordBytes)
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

// namespaceRoot returns the "Struct." prefix of a field namespace.
func namespaceRoot(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
