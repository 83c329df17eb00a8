package parser

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/smog/internal/models"
)

// ErrorReporter turns package loading errors into generator errors
type ErrorReporter struct {
	outputFile string
}

// NewErrorReporter creates a reporter ignoring errors in outputFile
func NewErrorReporter(outputFile string) *ErrorReporter {
	return &ErrorReporter{outputFile: outputFile}
}

// Check reports the errors of pkg. Errors located in the generated file are
// dropped: a stale file routinely stops compiling once its contracts change.
func (r *ErrorReporter) Check(pkg *packages.Package) error {
	var errs []error
	for _, e := range pkg.Errors {
		file, line := splitPos(e.Pos)
		if file != "" && filepath.Base(file) == r.outputFile {
			continue
		}
		errs = append(errs, &models.GeneratorError{
			Type:    errorType(e.Kind),
			File:    file,
			Line:    line,
			Message: packageMessage(pkg.PkgPath, e.Msg),
			Cause:   e,
		})
	}
	return errors.Join(errs...)
}

func errorType(kind packages.ErrorKind) models.ErrorType {
	if kind == packages.ListError {
		return models.ErrorTypeFileSystem
	}
	return models.ErrorTypeValidation
}

func packageMessage(pkgPath, msg string) string {
	if pkgPath == "" {
		return msg
	}
	return pkgPath + ": " + msg
}

// splitPos splits "file:line:col" as reported by go/packages.
func splitPos(pos string) (string, int) {
	if pos == "" || pos == "-" {
		return "", 0
	}
	i := strings.Index(pos, ".go:")
	if i < 0 {
		return pos, 0
	}
	file := pos[:i+3]
	rest := strings.SplitN(pos[i+4:], ":", 2)
	line, _ := strconv.Atoi(rest[0])
	return file, line
}
