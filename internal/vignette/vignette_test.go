package vignette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGenerateIDCanonical(t *testing.T) {
	a := GenerateID(1, map[string]*string{"visibility": strPtr("true"), "data_sharing": strPtr("1")})
	b := GenerateID(1, map[string]*string{"data_sharing": strPtr("1"), "visibility": strPtr("true")})

	assert.Equal(t, a, b)
}

func TestGenerateIDDistinguishesContent(t *testing.T) {
	base := GenerateID(1, map[string]*string{"a": strPtr("1")})

	assert.NotEqual(t, base, GenerateID(2, map[string]*string{"a": strPtr("1")}))
	assert.NotEqual(t, base, GenerateID(1, map[string]*string{"a": strPtr("2")}))
	assert.NotEqual(t, base, GenerateID(1, map[string]*string{"a": nil}))
}

func TestParseIDRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		studyID int64
		levels  map[string]*string
	}{
		{
			name:    "concrete levels",
			studyID: 1,
			levels:  map[string]*string{"visibility": strPtr("true"), "data_sharing": strPtr("1")},
		},
		{
			name:    "absent level",
			studyID: 3,
			levels:  map[string]*string{"visibility": nil},
		},
		{
			name:    "no factors",
			studyID: 7,
			levels:  map[string]*string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := GenerateID(tt.studyID, tt.levels)

			parsed, err := ParseID(id)
			require.NoError(t, err)
			assert.Equal(t, tt.studyID, parsed.StudyID)
			assert.Equal(t, id, parsed.ID)
			assert.Equal(t, tt.levels, parsed.FactorLevels)
		})
	}
}

func TestParseIDRejectsGarbage(t *testing.T) {
	_, err := ParseID("not json at all")
	assert.Error(t, err)
}
