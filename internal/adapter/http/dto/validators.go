package dto

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"

	"stablecoin-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	addressRe    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-\.:]{0,127}$`)
)

// maxDecimalPlaces bounds precision accepted on the wire.
const maxDecimalPlaces = 18

var errInvalidAmount = errors.New("invalid amount")

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations installs the ledger's custom tags on v.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("safe_id", validateSafeID)
	_ = v.RegisterValidation("address", validateAddress)
	_ = v.RegisterValidation("positive_decimal", validatePositiveDecimal)
	_ = v.RegisterValidation("kyc_tier", validateKycTier)
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateAddress accepts opaque wallet identifiers. The reserve sentinels are
// never valid wallet addresses.
func validateAddress(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == domain.ReserveMintAddress || s == domain.ReserveBurnAddress {
		return false
	}
	return addressRe.MatchString(s)
}

// validatePositiveDecimal accepts plain decimal strings greater than zero.
func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := ParseAmount(fl.Field().String())
	return err == nil && d.IsPositive()
}

func validateKycTier(fl validator.FieldLevel) bool {
	_, err := domain.ParseKycTier(fl.Field().String())
	return err == nil
}

// ParseAmount parses a wire amount. Exponent notation and excess precision are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, errInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if -d.Exponent() > maxDecimalPlaces {
		return decimal.Zero, errInvalidAmount
	}
	return d, nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer. Nested struct pointers are
// sanitized too.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			switch elem.Kind() {
			case reflect.String:
				elem.SetString(sanitize(elem.String()))
			case reflect.Struct:
				sanitizeFields(elem)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
