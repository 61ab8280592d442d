package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single program run within a suite
type TestCase struct {
	Name  string      `yaml:"name"`
	Info  string      `yaml:"info,omitempty"`
	Skip  interface{} `yaml:"skip,omitempty"` // bool or string
	Code  string      `yaml:"code"`
	Stdin string      `yaml:"stdin,omitempty"`

	Expect Expectation `yaml:"expect"`
}

// Expectation defines what a run must produce. Unset fields are not
// checked.
type Expectation struct {
	Stdout   *string `yaml:"stdout,omitempty"`   // exact match
	Stderr   string  `yaml:"stderr,omitempty"`   // substring
	Error    string  `yaml:"error,omitempty"`    // unknown_label, frame, etc.
	Price    *int    `yaml:"price,omitempty"`    // instruction + operand price
	Executed *int    `yaml:"executed,omitempty"` // executed instructions
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
