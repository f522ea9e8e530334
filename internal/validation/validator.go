package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/kashmkari-orderflow/internal/orders"
)

// New returns a configured validator. Field errors are reported under their JSON names.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// order_date must be readable by the monthly analytics
	_ = v.RegisterValidation("orderdate", func(fl validatorv10.FieldLevel) bool {
		_, ok := orders.ParseOrderDate(fl.Field().String())
		return ok
	})

	return v
}
