package security

import "unicode"

// FormatValidator requires at least one upper case letter, one lower case
// letter, one digit and one special character.
type FormatValidator struct{}

func NewFormatValidator() FormatValidator {
	return FormatValidator{}
}

func (FormatValidator) CheckFormat(password string) bool {
	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char) || unicode.IsSpace(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}
