package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Report fields by their wire name so error messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like QR codes that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	_ = v.RegisterValidation("category", enum(model.Categories))
	_ = v.RegisterValidation("gametype", enum(model.GameTypes))
	_ = v.RegisterValidation("usertype", enum(model.UserTypes))
	_ = v.RegisterValidation("couponstatus", enum([]model.CouponStatus{
		model.CouponStatusActive, model.CouponStatusUsed, model.CouponStatusExpired,
	}))

	return v
}

// enum accepts a string-kinded field whose value is one of allowed.
func enum[T ~string](allowed []T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		s := fl.Field().String()
		for _, a := range allowed {
			if string(a) == s {
				return true
			}
		}
		return false
	}
}
