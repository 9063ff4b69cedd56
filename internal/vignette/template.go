package vignette

import (
	"fmt"
	"regexp"
	"strings"
)

// absentLevel is the legacy textual absence marker; it renders like a nil
// level, substituting the empty string.
const absentLevel = "None"

var (
	// placeholderPattern matches $name, ${name} and the $$ escape.
	placeholderPattern = regexp.MustCompile(`\$(?:\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*)|(\$))`)
	spaceRunPattern    = regexp.MustCompile(` +`)
)

// Render produces the presentation text of one vignette by substituting the
// text fragments of its chosen levels into the study template.
//
// A nil level (or the literal absence marker) substitutes the empty string.
// An empty template renders as the empty string; template-less studies are
// valid. A placeholder in the template that no factor covers is a caller
// contract violation and fails loudly. The result is trimmed and interior
// runs of spaces are collapsed to a single space.
func Render(v Vignette, factors map[string]map[string]string, templateStr string) (string, error) {
	if templateStr == "" {
		return "", nil
	}

	variables := make(map[string]string, len(v.FactorLevels))
	for factor, level := range v.FactorLevels {
		if level == nil || *level == absentLevel {
			variables[factor] = ""
			continue
		}
		text, ok := factors[factor][*level]
		if !ok {
			return "", fmt.Errorf("no text for factor %q level %q", factor, *level)
		}
		variables[factor] = text
	}

	text, err := substitute(templateStr, variables)
	if err != nil {
		return "", err
	}

	return spaceRunPattern.ReplaceAllString(strings.TrimSpace(text), " "), nil
}

// substitute performs named-placeholder substitution of vars into tmpl.
// $$ escapes a literal dollar sign. Placeholders without a mapping entry
// cause an error naming every missing key.
func substitute(tmpl string, vars map[string]string) (string, error) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		if groups[3] == "$" {
			return "$"
		}
		name := groups[1]
		if name == "" {
			name = groups[2]
		}
		value, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("template references unknown factors: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
