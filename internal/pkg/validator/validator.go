package validator

// Validator validates struct fields against their declared rules.
type Validator interface {
	Validate(data any) error
}
