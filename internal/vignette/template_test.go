package vignette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderFactors = map[string]map[string]string{
	"visibility":   {"public": "Everyone can see your data.", "private": "Only you can see your data."},
	"compensation": {"money": "You receive a monthly bonus."},
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		vignette Vignette
		template string
		want     string
	}{
		{
			name: "substitutes level texts",
			vignette: New(1, map[string]*string{
				"visibility":   strPtr("public"),
				"compensation": strPtr("money"),
			}),
			template: "Imagine this: $visibility $compensation",
			want:     "Imagine this: Everyone can see your data. You receive a monthly bonus.",
		},
		{
			name: "absent level substitutes empty string",
			vignette: New(1, map[string]*string{
				"visibility":   nil,
				"compensation": strPtr("money"),
			}),
			template: "Imagine this: $visibility $compensation",
			want:     "Imagine this: You receive a monthly bonus.",
		},
		{
			name: "literal absence marker substitutes empty string",
			vignette: New(1, map[string]*string{
				"visibility":   strPtr("None"),
				"compensation": strPtr("money"),
			}),
			template: "Imagine this: $visibility $compensation",
			want:     "Imagine this: You receive a monthly bonus.",
		},
		{
			name:     "collapses whitespace",
			vignette: New(1, map[string]*string{"visibility": strPtr("public")}),
			template: "  a   ${visibility}   b  ",
			want:     "a Everyone can see your data. b",
		},
		{
			name:     "empty template renders empty",
			vignette: New(1, map[string]*string{"visibility": strPtr("public")}),
			template: "",
			want:     "",
		},
		{
			name:     "dollar escape",
			vignette: New(1, map[string]*string{"compensation": strPtr("money")}),
			template: "$compensation Worth $$100.",
			want:     "You receive a monthly bonus. Worth $100.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.vignette, renderFactors, tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderMissingPlaceholderFails(t *testing.T) {
	v := New(1, map[string]*string{"visibility": strPtr("public")})

	_, err := Render(v, renderFactors, "$visibility and $compensation")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compensation")
}

func TestRenderUnknownLevelFails(t *testing.T) {
	v := New(1, map[string]*string{"visibility": strPtr("translucent")})

	_, err := Render(v, renderFactors, "$visibility")
	assert.Error(t, err)
}
