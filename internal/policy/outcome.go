package policy

import "fmt"

// Outcome is the result of a password validation. Only the first failing rule
// is reported.
type Outcome int

const (
	Valid Outcome = iota
	TooShort
	WrongFormat
	PasswordReused
	TooManyRecentChanges
)

var outcomeNames = map[Outcome]string{
	Valid:                "valid",
	TooShort:             "password_minimum_length",
	WrongFormat:          "password_format",
	PasswordReused:       "password_already_used",
	TooManyRecentChanges: "max_password_change",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) IsValid() bool {
	return o == Valid
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}
