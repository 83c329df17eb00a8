package models

// GeneratedFile represents the generated source of one package
type GeneratedFile struct {
	PackageName string          // name of the package
	PackagePath string          // import path of the package
	FilePath    string          // path where the file should be written
	Content     []byte          // formatted Go source
	Types       []GeneratedType // types declared in the file
}

// GeneratedType summarizes one generated matcher type
type GeneratedType struct {
	Contract    string   `yaml:"contract"`
	Type        string   `yaml:"type"`
	Constructor string   `yaml:"constructor"`
	Target      string   `yaml:"target"`
	Description string   `yaml:"description"`
	Properties  []string `yaml:"properties"`
	Methods     []Method `yaml:"methods"`
}

// Method is one generated method and what it does
type Method struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Body string `yaml:"body"`
}
