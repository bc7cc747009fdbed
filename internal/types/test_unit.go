package types

// TestUnit is one synthesized test: the test function plus the placeholder operation it calls.
type TestUnit struct {
	Name   string `json:"name"`   // Go test function name, e.g. TestLogin_Username_Password
	Source string `json:"source"` // Source of the test function

	HelperName   string `json:"helper_name"`   // Placeholder operation invoked by the test
	HelperSource string `json:"helper_source"` // Source of the placeholder operation

	Feature string `json:"feature"`
}

// Code returns the test function followed by its placeholder operation.
func (u TestUnit) Code() string {
	if u.HelperSource == "" {
		return u.Source
	}
	return u.Source + "\n" + u.HelperSource
}
