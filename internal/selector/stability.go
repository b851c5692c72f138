// internal/selector/stability.go
// Heuristics that decide whether an id, class token, or attribute value looks
// hand-authored (stable across page loads) or machine-generated (liable to
// churn). The heuristics are kept as ordered rule tables so each pattern can
// be audited and tested on its own.
package selector

import (
	"regexp"
	"strings"
)

// unstableRule pairs a shape pattern with a short name for diagnostics.
// A value matching any rule in a table is classified unstable.
type unstableRule struct {
	name string
	re   *regexp.Regexp
}

// Shapes of auto-generated ids. Patterns are anchored at the start; the
// uppercase-run rule is deliberately case sensitive so hand-authored
// camelCase ids (submitBtn) are not swept up with minified tokens (B3R4DD).
var unstableIDRules = []unstableRule{
	{"long-hex", regexp.MustCompile(`(?i)^[a-f0-9]{8,}$`)},
	{"pure-digits", regexp.MustCompile(`^\d+$`)},
	{"id-counter", regexp.MustCompile(`(?i)^id\d+$`)},
	{"underscore-counter", regexp.MustCompile(`(?i)^_\w+\d+$`)},
	{"react", regexp.MustCompile(`(?i)^react-\w+`)},
	{"mui", regexp.MustCompile(`(?i)^mui-\d+`)},
	{"jquery-ui", regexp.MustCompile(`(?i)^ui-id-\d+$`)},
	{"uppercase-run", regexp.MustCompile(`^[A-Z0-9]{6,}$`)},
	{"digit-tail", regexp.MustCompile(`(?i)^\w*\d{3,}$`)},
	{"gen-prefix", regexp.MustCompile(`(?i)^gen-\w+`)},
	{"auto-prefix", regexp.MustCompile(`(?i)^auto-\w+`)},
}

// Shapes of auto-generated attribute values. Slightly laxer than ids: a
// trailing-digit run only counts from four digits, since values like
// "tab-2" or "step3" are often deliberate.
var unstableValueRules = []unstableRule{
	{"long-hex", regexp.MustCompile(`(?i)^[a-f0-9]{8,}$`)},
	{"pure-digits", regexp.MustCompile(`^\d+$`)},
	{"uppercase-run", regexp.MustCompile(`^[A-Z0-9]{6,}$`)},
	{"jquery-ui", regexp.MustCompile(`(?i)^ui-id-\d+$`)},
	{"digit-tail", regexp.MustCompile(`(?i)^\w*\d{4,}$`)},
	{"tmp-prefix", regexp.MustCompile(`(?i)^tmp-\w+`)},
	{"gen-prefix", regexp.MustCompile(`(?i)^gen-\w+`)},
}

// Shapes of generated class tokens. These match anywhere in the token, not
// just at the start, because CSS-in-JS hashes are frequently embedded
// (e.g. "Button-css-x7f3k2").
var unstableClassShapeRules = []unstableRule{
	{"pure-digits", regexp.MustCompile(`^\d+$`)},
	{"hex-run", regexp.MustCompile(`(?i)^[a-f0-9]{6,}$`)},
	{"css-in-js", regexp.MustCompile(`(?i)css-\w+`)},
	{"uppercase-run", regexp.MustCompile(`^[A-Z0-9]{6,}$`)},
	{"jquery-ui", regexp.MustCompile(`(?i)ui-id-\d+`)},
	{"extjs", regexp.MustCompile(`(?i)^x-\w+\d+`)},
	{"digit-tail", regexp.MustCompile(`(?i)^\w*\d{3,}$`)},
	{"gen-prefix", regexp.MustCompile(`(?i)^gen-\w+`)},
	{"auto-prefix", regexp.MustCompile(`(?i)^auto-\w+`)},
	{"tmp-prefix", regexp.MustCompile(`(?i)^tmp-\w+`)},
	{"dyn-prefix", regexp.MustCompile(`(?i)^dyn-\w+`)},
}

// State-indicating class tokens reflect transient UI state, not element
// identity, so they are rejected regardless of shape.
var stateClassTokens = []string{
	"focus", "hover", "active", "selected",
	"checked", "disabled", "loading", "error", "success",
}

// maxStableClasses caps how many class tokens survive filtering. More than
// two makes the resulting selector brittler, not stronger.
const maxStableClasses = 2

func matchesAny(rules []unstableRule, s string) bool {
	for _, r := range rules {
		if r.re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsStableID reports whether an element id looks hand-authored rather than
// generated by a framework or an auto-increment counter.
func IsStableID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	return !matchesAny(unstableIDRules, id)
}

// IsStableAttributeValue reports whether an attribute value looks stable
// enough to anchor a selector on.
func IsStableAttributeValue(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return !matchesAny(unstableValueRules, value)
}

// isStableClass applies both the shape rules and the state-token filter to a
// single class token.
func isStableClass(cls string) bool {
	// Single-character classes are too generic to be useful.
	if len(cls) <= 1 {
		return false
	}
	lower := strings.ToLower(cls)
	for _, state := range stateClassTokens {
		if strings.Contains(lower, state) {
			return false
		}
	}
	return !matchesAny(unstableClassShapeRules, cls)
}

// ExtractStableClasses filters a space-separated class attribute down to at
// most two tokens that look stable, preserving their original order.
func ExtractStableClasses(classAttr string) []string {
	var stable []string
	for _, cls := range strings.Fields(classAttr) {
		if isStableClass(cls) {
			stable = append(stable, cls)
			if len(stable) == maxStableClasses {
				break
			}
		}
	}
	return stable
}

var selectorClassPattern = regexp.MustCompile(`\.([a-zA-Z0-9_-]+)`)

// classesFromSelector pulls class tokens out of a raw CSS selector string and
// applies the same stability filter. Used when only the originally captured
// selector is available, not a class attribute.
func classesFromSelector(sel string) []string {
	var tokens []string
	for _, m := range selectorClassPattern.FindAllStringSubmatch(sel, -1) {
		tokens = append(tokens, m[1])
	}
	return ExtractStableClasses(strings.Join(tokens, " "))
}
