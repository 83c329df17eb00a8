package generator

import (
	"github.com/toyz/smog/internal/contract/gosource"
	"github.com/toyz/smog/internal/models"
	"github.com/toyz/smog/internal/parser"
)

// CodeGenerator defines the interface for generating matcher implementations
// of the interface contracts of a loaded package
type CodeGenerator interface {
	GeneratePackage(pkg *parser.Package, overrides gosource.Overrides) (*models.GeneratedFile, error)
	InspectPackage(pkg *parser.Package, overrides gosource.Overrides) ([]models.GeneratedType, error)
}
