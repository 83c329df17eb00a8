package cli

import (
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/toyz/smog/internal/utils"
)

// Module describes the Go module generation runs in
type Module struct {
	Path string
	Root string
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser()}
}

// Resolve finds the module containing dir
func (r *ModuleResolver) Resolve(dir string) (*Module, error) {
	goMod, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to determine the module of %s", dir),
			"run smog inside a Go module, or create one with `go mod init`")
	}
	path, err := r.gomod.ParseModuleName(goMod)
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine module name")
	}
	return &Module{Path: path, Root: filepath.Dir(goMod)}, nil
}

// PackagePath builds the import path of the package in dir
func (m *Module) PackagePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve package directory %s", dir)
	}
	rel, err := filepath.Rel(m.Root, abs)
	if err != nil {
		return "", errors.Wrapf(err, "failed to calculate relative path of %s", dir)
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == ".":
		return m.Path, nil
	case rel == ".." || len(rel) > 3 && rel[:3] == "../":
		return "", errors.Newf("%s is outside module %s", dir, m.Path)
	}
	return m.Path + "/" + rel, nil
}
