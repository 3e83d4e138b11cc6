package security

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/admin-security/internal/policy"
)

const maxValueLength = 64

// Validators returns the custom binding tags used by the security requests.
func Validators() map[string]validator.Func {
	return map[string]validator.Func{
		"policy_key":   validPolicyKey,
		"policy_value": validPolicyValue,
	}
}

func validPolicyKey(fl validator.FieldLevel) bool {
	return policy.IsKnown(fl.Field().String())
}

// validPolicyValue accepts short printable values. Malformed numbers are left
// to the engine, which reads them as 0.
func validPolicyValue(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > maxValueLength {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
