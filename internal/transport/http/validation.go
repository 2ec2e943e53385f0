package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

// newValidator returns a validator with the workflow's custom rules.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()

	// hhmm accepts a zero-padded 24h "HH:MM" time of day (reopen times).
	_ = v.RegisterValidation("hhmm", func(fl validatorv10.FieldLevel) bool {
		return domain.ValidReopenTime(fl.Field().String())
	})

	return v
}

// bindAndValidate binds the JSON body into out and runs validation. On
// failure it writes a 400 and returns an error so handlers short-circuit.
func bindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
