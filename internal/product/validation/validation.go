// Package validation decides whether a product candidate may enter the store.
package validation

import (
	"errors"
	"math"
	"reflect"
	"strings"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

// Field names as reported in Violations.
const (
	FieldName     = "name"
	FieldType     = "type"
	FieldQuantity = "quantity"
	FieldPrice    = "price"
)

// Candidate is an unvalidated, unidentified product payload submitted for creation or edit.
type Candidate struct {
	Name     string  `json:"name" validate:"nonblank"`
	Type     string  `json:"type" validate:"nonblank"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" validate:"finite,gt=0"`
}

// messages holds the single message reported for each field. Every field carries exactly one rule.
var messages = map[string]string{
	FieldName:     "Product name is required",
	FieldType:     "Product type is required",
	FieldQuantity: "Quantity cannot be negative",
	FieldPrice:    "Price must be greater than zero",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names so violations line up with the form inputs
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("nonblank", nonBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("finite", finite); err != nil {
		panic(err)
	}
	return v
}

// nonBlank fails for strings that are empty after trimming whitespace.
func nonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// finite fails for NaN and infinite floats.
func finite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Violations maps a field name to the message describing why it was rejected.
// An empty Violations means the candidate was accepted.
type Violations map[string]string

// OK reports whether the candidate passed every rule.
func (v Violations) OK() bool {
	return len(v) == 0
}

// Err returns a *errors.ValidationError carrying the violations, or nil when there are none.
func (v Violations) Err() error {
	if v.OK() {
		return nil
	}
	fields := make(map[string]string, len(v))
	for k, msg := range v {
		fields[k] = msg
	}
	return &producterrors.ValidationError{Fields: fields}
}

// Validate checks all field rules in one pass and returns every violation found.
func Validate(c Candidate) Violations {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		// Struct only fails this way for non-struct input, which Candidate never is.
		panic(err)
	}
	violations := make(Violations, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations[fe.Field()] = messages[fe.Field()]
	}
	return violations
}
