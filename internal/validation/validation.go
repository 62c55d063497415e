package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"currency-converter-api/internal/models"
)

// ConvertRequest carries the route parameters of a conversion request.
type ConvertRequest struct {
	BaseCode   string          `param:"baseCode" validate:"required,currency_code,not_restricted"`
	TargetCode string          `param:"targetCode" validate:"required,currency_code,not_restricted"`
	Amount     decimal.Decimal `param:"amount" validate:"gte=0.001"`
}

// LatestRequest carries the route parameters of a latest-rates request.
type LatestRequest struct {
	Code string `param:"code" validate:"required,currency_code"`
}

// HistoryRequest carries the route parameters of a historical-series request.
// Only the currency code is validated; date ordering is left to the upstream.
type HistoryRequest struct {
	BeginDate time.Time `param:"beginDate"`
	EndDate   time.Time `param:"endDate"`
	Code      string    `param:"code" validate:"required,currency_code"`
}

// currencyCodePattern rejects anything but exactly three uppercase letters.
// Lowercase input is a validation failure, not something we normalize away.
var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// restrictedCurrencies are codes the upstream provider does not support
// reliably. Conversion requests naming them are rejected up front.
var restrictedCurrencies = map[string]struct{}{
	"TRY": {},
	"PLN": {},
	"THB": {},
	"MXN": {},
}

// Validator checks request structs and reports field-level violations. It is
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom currency rules registered.
func New() *Validator {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("param")
		if name == "" {
			return field.Name
		}
		return name
	})

	// Amounts are compared through their float rendering, which is exact
	// enough for the 0.001 granularity bound.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if value, ok := field.Interface().(decimal.Decimal); ok {
			floatValue, _ := value.Float64()
			return floatValue
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return currencyCodePattern.MatchString(fl.Field().String())
	})

	_ = validate.RegisterValidation("not_restricted", func(fl validator.FieldLevel) bool {
		_, restricted := restrictedCurrencies[strings.ToUpper(fl.Field().String())]
		return !restricted
	})

	return &Validator{validate: validate}
}

// Check validates a request struct, returning nil when valid or a non-empty
// violation list otherwise. It never mutates its input and performs no I/O.
func (v *Validator) Check(request interface{}) []models.FieldViolation {
	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []models.FieldViolation{{Field: "request", Message: err.Error()}}
	}

	violations := make([]models.FieldViolation, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		violations = append(violations, models.FieldViolation{
			Field:   fieldError.Field(),
			Message: violationMessage(fieldError),
		})
	}
	return violations
}

func violationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "currency_code":
		return "must be a three-letter uppercase currency code"
	case "not_restricted":
		return "must not be one of the following values: TRY, PLN, THB, MXN"
	case "gte":
		return "must be at least " + fieldError.Param()
	default:
		return "is invalid"
	}
}
