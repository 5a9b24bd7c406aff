package handler

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/HD3-run/Rcommitra/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	}
}

// bindAndValidate binds the JSON body and runs the binding tags. Returns
// false after writing the 400 response — the caller should return
// immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			violations := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				violations = append(violations, fe.Field()+": "+fe.Tag())
			}
			c.JSON(http.StatusBadRequest, apierror.Response{
				Message:    "Validation failed",
				Violations: violations,
			})
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// fail hands the error to the ErrorHandler middleware, which maps it through
// the apierror taxonomy.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// pathID parses a numeric path parameter, writing the 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid " + name})
		return 0, false
	}
	return id, true
}
