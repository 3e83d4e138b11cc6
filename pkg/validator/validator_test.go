package validator

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Name   string            `json:"name" validate:"required"`
	Values map[string]string `json:"values" validate:"dive,keys,lower,endkeys,max=3"`
}

func lower(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func TestRegisterAndTranslate(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v, map[string]validator.Func{"lower": lower}))

	err := v.Struct(request{Values: map[string]string{"ok": "toolong", "BAD": "x"}})
	require.Error(t, err)

	fields := Translate(fmt.Errorf("bind: %w", err), nil)
	require.Len(t, fields, 3)

	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "Field is required", byField["name"])
	assert.Equal(t, "Value is too long", byField["values[ok]"])
	assert.Equal(t, "failed on the 'lower' rule", byField["values[BAD]"])
}

func TestTranslateIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Translate(fmt.Errorf("boom"), nil))
	assert.Nil(t, Translate(nil, nil))
}
