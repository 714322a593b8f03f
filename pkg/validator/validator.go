package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	roles           = []string{"super_admin", "clinic_admin", "staff", "patient"}
	tiers           = []string{"basic", "professional", "enterprise"}
	subscriptionSts = []string{"trialing", "active", "past_due", "canceled"}
	appointmentSts  = []string{"scheduled", "confirmed", "completed", "cancelled", "no_show"}
)

// FieldError is the client-facing description of one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required":            "is required",
	"email":               "must be a valid email",
	"min":                 "is too short",
	"max":                 "is too long",
	"gte":                 "must not be negative",
	"gt":                  "must be positive",
	"slug":                "must be lower-case letters, digits and single dashes",
	"role":                "must be a known role",
	"plan_tier":           "must be basic, professional or enterprise",
	"subscription_status": "must be trialing, active, past_due or canceled",
	"appointment_status":  "must be a known appointment status",
	"required_without":    "is required",
	"excluded_with":       "cannot be combined with another field",
	"uuid":                "must be a UUID",
}

var registerOnce sync.Once

// Register adds the custom tags to v and reports JSON field names in errors.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"slug":                validateSlug,
		"role":                oneOf(roles),
		"plan_tier":           oneOf(tiers),
		"subscription_status": oneOf(subscriptionSts),
		"appointment_status":  oneOf(appointmentSts),
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterGin installs the custom tags on gin's binding engine once.
func RegisterGin() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not validator/v10")
			return
		}
		err = Register(v)
	})
	return err
}

// IsSlug reports whether s is a valid organization or location slug.
func IsSlug(s string) bool {
	return len(s) >= 3 && len(s) <= 63 && slugPattern.MatchString(s)
}

// IsAppointmentStatus reports whether s names an appointment status.
func IsAppointmentStatus(s string) bool {
	for _, a := range appointmentSts {
		if s == a {
			return true
		}
	}
	return false
}

// Describe converts validation errors into field messages.
// Other errors yield nil.
func Describe(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg, ok := messages[e.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}

func validateSlug(fl validator.FieldLevel) bool {
	return IsSlug(fl.Field().String())
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}
