package synth

import (
	"fmt"
	"strings"

	"github.com/toyz/smog/internal/contract"
)

// Stmt is one statement of a generated method body. Backends switch on
// the concrete statement types.
type Stmt interface {
	stmt()
	String() string
}

// Body is an ordered list of statements.
type Body []Stmt

func (b Body) String() string {
	parts := make([]string, 0, len(b))
	for _, s := range b {
		if text := s.String(); text != "" {
			parts = append(parts, text)
		}
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// SuperCall initializes the embedded aggregator with a description.
type SuperCall struct {
	Description string
}

// SetEqual wraps the single argument in an equality matcher and stores it
// in Field.
type SetEqual struct {
	Field string
}

// SetPredicate stores the single argument, a matcher, in Field.
type SetPredicate struct {
	Field string
}

// SeedAssignment reads one property from the sample and feeds it to a
// literal operation.
type SeedAssignment struct {
	Property string
	Field    string
	Accessor AccessorRef
	// Method is the literal operation invoked with the value read.
	Method contract.Method
}

// AccessorRef names the member read by a seed assignment. Handle carries
// the source specific accessor.
type AccessorRef struct {
	Member string
	Handle any
}

// SeedFrom copies properties of the sample argument into literal
// operations. A nil sample populates nothing.
type SeedFrom struct {
	Assignments []SeedAssignment
}

// DelegateSuper forwards the call to the aggregator's method.
type DelegateSuper struct {
	Method string
}

// ReturnSelf returns the receiver.
type ReturnSelf struct{}

func (SuperCall) stmt()     {}
func (SetEqual) stmt()      {}
func (SetPredicate) stmt()  {}
func (SeedFrom) stmt()      {}
func (DelegateSuper) stmt() {}
func (ReturnSelf) stmt()    {}

func (s SuperCall) String() string {
	return fmt.Sprintf("super(%q);", s.Description)
}

func (s SetEqual) String() string {
	return fmt.Sprintf("this.%s.set(equalTo($1));", s.Field)
}

func (s SetPredicate) String() string {
	return fmt.Sprintf("this.%s.set($1);", s.Field)
}

func (s SeedFrom) String() string {
	if len(s.Assignments) == 0 {
		return ""
	}
	parts := make([]string, len(s.Assignments))
	for i, a := range s.Assignments {
		parts[i] = fmt.Sprintf("this.%s($1.%s);", a.Method.Name(), a.Accessor.Member)
	}
	return "if ($1 != nil) { " + strings.Join(parts, " ") + " }"
}

func (s DelegateSuper) String() string {
	return fmt.Sprintf("super.%s($$);", s.Method)
}

func (ReturnSelf) String() string {
	return "return this;"
}
