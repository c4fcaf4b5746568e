// Package inputval validates request payloads declared as fixed structs
// with `validate` tags, and turns failures into readable field messages.
package inputval

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BloodGroups is the closed set of ABO/Rh groups accepted on input.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// DateLayout is the calendar date format used for donation and
// last-donation dates.
const DateLayout = "2006-01-02"

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the failures from one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if !r.HasErrors() {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Error makes a Result usable as an error value.
func (r *Result) Error() string { return r.All() }

// Err returns r as an error, or nil when there are no failures.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return r
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(label)
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			return IsValidDate(fl.Field().String())
		})
		_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
			return IsValidBloodGroup(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// label names a field in messages: the `label` tag, else the JSON name,
// else the Go name.
func label(fld reflect.StructField) string {
	if l := fld.Tag.Get("label"); l != "" {
		return l
	}
	if j := strings.Split(fld.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
		return j
	}
	return fld.Name
}

// Validate checks v's `validate` tags plus the custom rules objectid, ymd,
// bloodgroup and httpurl.
func Validate(v any) *Result {
	res := &Result{}
	err := instance().Struct(v)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required."
	case "email":
		return "A valid email address is required."
	case "max":
		if isString(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", name, fe.Param())
	case "min":
		if isString(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "objectid":
		return name + " must be a valid id."
	case "ymd":
		return name + " must be a date in YYYY-MM-DD format."
	case "bloodgroup":
		return name + " must be a valid blood group."
	case "httpurl":
		return name + " must be a valid http(s) URL."
	}
	return name + " is invalid."
}

func isString(k reflect.Kind) bool { return k == reflect.String }

// IsValidEmail is a strict check for a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t") || strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || domain == "" {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// IsValidObjectID reports whether s (trimmed) is a 24-hex-digit ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.ToLower(strings.TrimSpace(s)))
	return err == nil
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsValidBloodGroup reports whether s is one of BloodGroups.
func IsValidBloodGroup(s string) bool {
	for _, g := range BloodGroups {
		if s == g {
			return true
		}
	}
	return false
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
