package annotations

import (
	"errors"
	"testing"
)

func TestParticipleParserBasic(t *testing.T) {
	parser := NewParticipleParser(DefaultRegistry())
	loc := SourceLocation{File: "people.go", Line: 12, Column: 1}

	tests := []struct {
		name       string
		input      string
		wantType   AnnotationType
		wantTarget string
		wantParams map[string]interface{}
	}{
		{
			name:       "matcher with target",
			input:      "//smog::matcher -target=Person",
			wantType:   MatcherAnnotation,
			wantParams: map[string]interface{}{"target": "Person"},
		},
		{
			name:     "matcher with quoted description",
			input:    `//smog::matcher -target=Person -description="a Person"`,
			wantType: MatcherAnnotation,
			wantParams: map[string]interface{}{
				"target":      "Person",
				"description": "a Person",
			},
		},
		{
			name:       "qualified pointer target",
			input:      "//smog::matcher -target=*models.Address",
			wantType:   MatcherAnnotation,
			wantParams: map[string]interface{}{"target": "*models.Address"},
		},
		{
			name:     "escaped quote in description",
			input:    `//smog::matcher -target=Person -description="a \"named\" Person"`,
			wantType: MatcherAnnotation,
			wantParams: map[string]interface{}{
				"target":      "Person",
				"description": `a "named" Person`,
			},
		},
		{
			name:       "space after comment marker",
			input:      "// smog::matcher -target=Person",
			wantType:   MatcherAnnotation,
			wantParams: map[string]interface{}{"target": "Person"},
		},
		{
			name:       "property",
			input:      "//smog::property age",
			wantType:   PropertyAnnotation,
			wantTarget: "age",
			wantParams: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseAnnotation(tt.input, loc)
			if err != nil {
				t.Fatalf("ParseAnnotation() error = %v", err)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Target != tt.wantTarget {
				t.Errorf("Target = %q, want %q", got.Target, tt.wantTarget)
			}
			if len(got.Parameters) != len(tt.wantParams) {
				t.Errorf("Parameters = %v, want %v", got.Parameters, tt.wantParams)
			}
			for k, v := range tt.wantParams {
				if got.Parameters[k] != v {
					t.Errorf("Parameters[%s] = %v, want %v", k, got.Parameters[k], v)
				}
			}
			if got.Location != loc {
				t.Errorf("Location = %v, want %v", got.Location, loc)
			}
		})
	}
}

func TestParticipleParserErrors(t *testing.T) {
	parser := NewParticipleParser(DefaultRegistry())
	loc := SourceLocation{File: "people.go", Line: 3, Column: 1}

	tests := []struct {
		name     string
		input    string
		wantCode ErrorCode
	}{
		{"missing prefix", "// matcher -target=Person", SyntaxErrorCode},
		{"single colon", "//smog:matcher -target=Person", SyntaxErrorCode},
		{"unknown kind", "//smog::route GET /users", SyntaxErrorCode},
		{"unterminated string", `//smog::matcher -target=Person -description="a Person`, SyntaxErrorCode},
		{"missing target", "//smog::matcher", SchemaErrorCode},
		{"unknown parameter", "//smog::matcher -target=Person -mode=fast", SchemaErrorCode},
		{"duplicate parameter", "//smog::matcher -target=Person -target=Address", SchemaErrorCode},
		{"matcher positional", "//smog::matcher Person", SchemaErrorCode},
		{"property without name", "//smog::property", SchemaErrorCode},
		{"property with two names", "//smog::property age years", SchemaErrorCode},
		{"property with parameter", "//smog::property age -target=Person", SchemaErrorCode},
		{"target without value", "//smog::matcher -target", ValidationErrorCode},
		{"target not a type", `//smog::matcher -target="a b"`, ValidationErrorCode},
		{"property not an identifier", "//smog::property models.age", ValidationErrorCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.input, loc)
			if err == nil {
				t.Fatalf("ParseAnnotation(%q) expected error", tt.input)
			}
			var annErr AnnotationError
			if !errors.As(err, &annErr) {
				t.Fatalf("error %T is not an AnnotationError", err)
			}
			if annErr.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v (%v)", annErr.Code(), tt.wantCode, err)
			}
			if annErr.Suggestion() == "" {
				t.Error("expected a suggestion")
			}
			if annErr.Location().File != loc.File || annErr.Location().Line != loc.Line {
				t.Errorf("Location() = %v, want file and line of %v", annErr.Location(), loc)
			}
		})
	}
}

func TestParticipleParserSyntaxErrorColumn(t *testing.T) {
	parser := NewParticipleParser(DefaultRegistry())
	loc := SourceLocation{File: "people.go", Line: 3, Column: 5}

	_, err := parser.ParseAnnotation("//smog::matcher -target=Person =", loc)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if syntaxErr.Loc.Column <= loc.Column {
		t.Errorf("Column = %d, want an offset past %d", syntaxErr.Loc.Column, loc.Column)
	}
}

func TestParticipleParserWithoutRegistry(t *testing.T) {
	parser := NewParticipleParser(nil)

	got, err := parser.ParseAnnotation("//smog::matcher -target=Person -strict", SourceLocation{})
	if err != nil {
		t.Fatalf("ParseAnnotation() error = %v", err)
	}
	if got.GetString("target") != "Person" {
		t.Errorf("target = %q", got.GetString("target"))
	}
	if !got.GetBool("strict") {
		t.Error("bare parameter should parse as true")
	}
}

func TestParticipleParserBoolParameters(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(MatcherAnnotation, AnnotationSchema{
		Type: MatcherAnnotation,
		Parameters: map[string]ParameterSpec{
			"target": TargetParameterSpec(),
			"strict": {Type: BoolType},
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	parser := NewParticipleParser(registry)

	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"//smog::matcher -target=Person -strict", true, false},
		{"//smog::matcher -target=Person -strict=false", false, false},
		{"//smog::matcher -target=Person -strict=true", true, false},
		{"//smog::matcher -target=Person -strict=maybe", false, true},
	}

	for _, tt := range tests {
		got, err := parser.ParseAnnotation(tt.input, SourceLocation{})
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAnnotation(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAnnotation(%q) error = %v", tt.input, err)
			continue
		}
		if got.GetBool("strict") != tt.want {
			t.Errorf("ParseAnnotation(%q) strict = %v, want %v", tt.input, got.GetBool("strict"), tt.want)
		}
	}
}

func TestIsAnnotation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"//smog::matcher -target=Person", true},
		{"  // smog::property age", true},
		{"// PersonMatcher matches people.", false},
		{"/* smog::matcher */", false},
		{"//wire::inject", false},
	}

	for _, tt := range tests {
		if got := IsAnnotation(tt.input); got != tt.want {
			t.Errorf("IsAnnotation(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
