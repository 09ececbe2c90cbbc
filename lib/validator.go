package lib

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	Validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.Validator.Struct(i)
}

// NewValidator registers the invoiceflow specific tags on top of the built-in ones.
// hex_address accepts any 0x-prefixed 20 byte hex string, the zero address included,
// the service decides whether the zero address is allowed.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("hex_address", func(fl validator.FieldLevel) bool {
		return common.IsHexAddress(fl.Field().String())
	})
	return &CustomValidator{Validator: v}
}
