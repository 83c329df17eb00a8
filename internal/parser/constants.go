package parser

const (
	// DefaultOutputFile is the name of the generated file in each package
	DefaultOutputFile = "autogen_smog.go"

	// Parameter constants
	ParamTarget      = "target"
	ParamDescription = "description"
)
