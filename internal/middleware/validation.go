package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/admin-security/pkg/validator"
)

// ValidationConfig represents validation configuration
type ValidationConfig struct {
	CustomValidators map[string]playground.Func
}

// RegisterValidators installs custom tags on gin's binding validator.
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	return validator.Register(v, config.CustomValidators)
}
