package naming

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/smog/internal/errors"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver("")

	tests := []struct {
		name        string
		method      string
		override    string
		hasOverride bool
		expected    string
		wantErr     bool
	}{
		{name: "conventional", method: "HasName", expected: "name"},
		{name: "multi word", method: "HasPhoneList", expected: "phoneList"},
		{name: "acronym keeps tail", method: "HasURL", expected: "uRL"},
		{name: "override wins", method: "HavingYearsOld", override: "age", hasOverride: true, expected: "age"},
		{name: "override beats prefix", method: "HasYears", override: "age", hasOverride: true, expected: "age"},
		{name: "prefix only", method: "Has", wantErr: true},
		{name: "no prefix", method: "WithName", wantErr: true},
		{name: "empty override", method: "HasName", hasOverride: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.method, tt.override, tt.hasOverride)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrNaming))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolver_CustomPrefix(t *testing.T) {
	r := NewResolver("With")

	got, err := r.Resolve("WithName", "", false)
	require.NoError(t, err)
	assert.Equal(t, "name", got)

	assert.True(t, r.Matches("WithAge"))
	assert.False(t, r.Matches("HasAge"))
	assert.True(t, r.Matches("With"))

	_, err = r.Resolve("With", "", false)
	require.Error(t, err)
}

func TestCapitalization(t *testing.T) {
	assert.Equal(t, "Name", Capitalize("name"))
	assert.Equal(t, "name", Decapitalize("Name"))
	assert.Equal(t, "", Capitalize(""))
	assert.Equal(t, "éclair", Decapitalize("Éclair"))
}
