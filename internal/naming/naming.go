// Package naming maps contract method names to the property names they
// constrain.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/smog/internal/errors"
)

// DefaultPrefix marks conventional property operations, e.g. HasAge -> age.
const DefaultPrefix = "Has"

// Resolver resolves property names from method names.
type Resolver struct {
	Prefix string
}

// NewResolver returns a resolver for the given prefix, falling back to
// DefaultPrefix when prefix is empty.
func NewResolver(prefix string) Resolver {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Resolver{Prefix: prefix}
}

func (r Resolver) prefix() string {
	if r.Prefix == "" {
		return DefaultPrefix
	}
	return r.Prefix
}

// Matches reports whether method carries the conventional prefix. Resolve
// still rejects a name that is nothing but the prefix.
func (r Resolver) Matches(method string) bool {
	return strings.HasPrefix(method, r.prefix())
}

// Resolve returns the property constrained by method. An override, when
// present, wins verbatim.
func (r Resolver) Resolve(method, override string, hasOverride bool) (string, error) {
	if hasOverride {
		if override == "" {
			return "", errors.NamingError(method, "property override is empty")
		}
		return override, nil
	}

	p := r.prefix()
	if !strings.HasPrefix(method, p) {
		return "", errors.NamingError(method, "name does not start with "+p).
			WithSuggestion("rename the method to " + p + "<Property> or declare a property override")
	}
	if len(method) <= len(p) {
		return "", errors.NamingError(method, "name has nothing after the "+p+" prefix")
	}
	return Decapitalize(method[len(p):]), nil
}

// Decapitalize lower-cases the first rune of s.
func Decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
