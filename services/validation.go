package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"train-booking-backend/models"
)

var (
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	idProofPattern    = regexp.MustCompile(`^[0-9]{12}$`)

	minFare = decimal.RequireFromString("0.01")
	maxFare = decimal.RequireFromString("999999.99")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so field errors line up with the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("idproof", func(fl validator.FieldLevel) bool {
		return idProofPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return v
}

// isStrongPassword requires 8+ characters drawn from letters, digits and @$!%*?&,
// with at least one of each class.
func isStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// validateStruct runs tag validation and converts failures into FieldErrors.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = fieldMessage(fe)
	}
	return out
}

// fieldPath drops the leading struct name: "CreateBookingInput.passengers[0].name" -> "passengers[0].name".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain only digits"
	case "datetime":
		if fe.Param() == models.DateLayout {
			return "must be a date in YYYY-MM-DD format"
		}
		return "must match the format " + fe.Param()
	case "personname":
		return "must contain only letters and spaces"
	case "idproof":
		return "must be exactly 12 digits"
	case "strongpassword":
		return "must be at least 8 characters with one lowercase letter, one uppercase letter, one digit and one special character (@$!%*?&)"
	default:
		return "is invalid"
	}
}

// checkMoney validates a positive amount with at most two fractional digits.
func checkMoney(fe FieldErrors, field string, amount decimal.Decimal) {
	switch {
	case amount.LessThan(minFare):
		fe[field] = "must be at least " + minFare.String()
	case amount.GreaterThan(maxFare):
		fe[field] = "must be at most " + maxFare.StringFixed(2)
	case !amount.Equal(amount.Round(2)):
		fe[field] = "must have at most 2 decimal places"
	}
}

// mergeFieldErrors combines tag validation output with hand written checks.
func mergeFieldErrors(err error, extra FieldErrors) error {
	if err == nil && len(extra) == 0 {
		return nil
	}
	var fe FieldErrors
	if err != nil && !errors.As(err, &fe) {
		return err
	}
	if fe == nil {
		fe = FieldErrors{}
	}
	for k, v := range extra {
		if _, exists := fe[k]; !exists {
			fe[k] = v
		}
	}
	return fe
}

// startOfDay returns t's calendar date as midnight UTC, the representation used
// for every journey_date value.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, strings.TrimSpace(s), time.UTC)
}
