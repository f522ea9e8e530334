package validation

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// Bind decodes the JSON body into out. On failure it writes a 422 response and
// returns the error so the handler can short-circuit.
func Bind(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "invalid_request_body",
			"detail": err.Error(),
		})
		return err
	}
	return nil
}

// BindAndValidate binds the JSON body into the struct pointed to by out and runs validation.
// Any failure is answered with 422 and nothing else happens.
func BindAndValidate(c *gin.Context, out any, v *validatorv10.Validate) error {
	if err := Bind(c, out); err != nil {
		return err
	}

	if err := v.Struct(out); err != nil {
		fields := validationErrorsToMap(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"detail": summarize(fields),
			"fields": fields,
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

// fieldPath drops the top-level struct name: "product_items[0].quantity".
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "orderdate":
		return "must be a date in YYYY-MM-DD form"
	case "gte", "min":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func summarize(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for f, msg := range fields {
		parts = append(parts, f+" "+msg)
	}
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}
