package dto

import (
	"credloom-coordinator/pkg/ethaddr"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("eth_address", validateEthAddress)
	}
}

// validateEthAddress accepts a 20-byte hex address, with or without checksum
// casing. Canonicalization happens in the service layer, not here.
func validateEthAddress(fl validator.FieldLevel) bool {
	return ethaddr.IsValid(fl.Field().String())
}
