package model

// Parameter is a stored security parameter. Value is kept as an opaque string;
// Label is the human readable name shown by the back office.
type Parameter struct {
	Key   string `json:"key" db:"parameter_key"`
	Value string `json:"value" db:"parameter_value"`
	Label string `json:"label,omitempty" db:"label"`
}

// UpdateParametersRequest carries the submitted form values keyed by parameter key.
type UpdateParametersRequest struct {
	Values map[string]string `json:"values" binding:"required,dive,keys,policy_key,endkeys,policy_value"`
}
