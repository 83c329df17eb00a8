package models

// PackageMetadata represents all annotations found in a package
type PackageMetadata struct {
	PackageName string             // name of the Go package
	PackagePath string             // import path of the package
	Dir         string             // directory holding the package sources
	Contracts   []ContractMetadata // all matcher contracts found in the package
	Overrides   map[string]string  // property overrides keyed by "Interface.Method"
}

// HasContracts reports whether the package declares any matcher contract.
func (p *PackageMetadata) HasContracts() bool {
	return len(p.Contracts) > 0
}

// ContractMetadata represents one //smog::matcher interface
type ContractMetadata struct {
	Name           string // interface name
	Target         string // -target expression as written
	Description    string // -description, if given
	HasDescription bool   // whether -description was given
	FileName       string // file containing the interface
	Line           int    // line of the annotation
	Column         int    // column of the annotation
}
