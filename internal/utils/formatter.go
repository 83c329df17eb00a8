package utils

import (
	"fmt"
	"go/parser"
	"go/token"

	"golang.org/x/tools/imports"
)

var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// FormatGoCode formats Go source code the way gofmt does and sorts its
// import block. filename is only used in error messages.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, formatOptions)
	if err != nil {
		if parseErr := ValidateGoCode(string(source)); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w (format error: %v)", parseErr, err)
		}
		return source, err
	}
	return formatted, nil
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code string) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}
