// internal/selector/candidates.go
// Turns a captured element descriptor into an ordered list of selector
// candidates, most stable first. Candidate generation is deterministic and
// never fails: a tier that cannot be computed from the available attributes
// simply contributes nothing.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

// Tier ranks a candidate by the inferred stability of what it anchors on.
// Lower values are tried first during resolution.
type Tier int

const (
	TierStableID Tier = iota
	TierNameType
	TierAttributes
	TierClassAttribute
	TierClasses
	TierStrippedOriginal
	TierText
	TierPositional
)

func (t Tier) String() string {
	switch t {
	case TierStableID:
		return "stable_id"
	case TierNameType:
		return "name_type"
	case TierAttributes:
		return "attributes"
	case TierClassAttribute:
		return "class_attribute"
	case TierClasses:
		return "classes"
	case TierStrippedOriginal:
		return "stripped_original"
	case TierText:
		return "text"
	case TierPositional:
		return "positional"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Candidate is one selector considered during resolution.
type Candidate struct {
	Selector string
	Tier     Tier
}

// formTags are element types whose name attribute is a reliable anchor.
var formTags = map[string]bool{
	"input": true, "select": true, "textarea": true, "button": true,
}

// Per-tag-category attribute priority lists for the attribute-combination
// tier. Order matters: earlier attributes are preferred.
var (
	formAttrPriority        = []string{"placeholder", "aria-label", "title", "role"}
	interactiveAttrPriority = []string{"aria-label", "role", "data-testid", "title"}
	iconAttrPriority        = []string{"data-value", "data-rating", "aria-label", "title", "data-testid"}

	interactiveTags = map[string]bool{"button": true, "a": true, "div": true}
	iconTags        = map[string]bool{"i": true, "span": true}

	// Whitelisted data-* conventions usable on any element when no
	// category-specific attribute is present.
	genericDataAttrs = []string{
		"data-value", "data-rating", "data-testid", "data-qa",
		"data-cy", "data-id", "data-role", "data-action",
	}
)

// maxCombinedAttrs caps the attribute-combination tier; more than two
// attributes over-specifies the selector.
const maxCombinedAttrs = 2

// State pseudo-classes and classes stripped from captured selectors: they
// describe transient UI state, not the element.
var trailingStateTokens = []string{".focus-visible", ".hover", ".active", ".focus", ":focus"}

var idFragmentPattern = regexp.MustCompile(`\[id=['"].*?['"]\]`)

// escapeAttrValue makes an attribute value safe inside a double-quoted
// selector fragment.
func escapeAttrValue(v string) string {
	return strings.ReplaceAll(v, `"`, `\"`)
}

// GenerateCandidates produces the ordered, de-duplicated candidate list for a
// descriptor. Identical descriptors always yield identical output.
func GenerateCandidates(desc schemas.ElementDescriptor) []Candidate {
	tag := desc.Tag()
	var out []Candidate
	seen := make(map[string]bool)

	add := func(sel string, tier Tier) {
		sel = strings.TrimSpace(sel)
		if sel == "" || seen[sel] {
			return
		}
		seen[sel] = true
		out = append(out, Candidate{Selector: sel, Tier: tier})
	}

	// Tier 1: stable id.
	if id := strings.TrimSpace(desc.Attributes.GetDefault("id", "")); id != "" && IsStableID(id) {
		add("#"+id, TierStableID)
	}

	// Tier 2: name (+type) for form elements.
	if formTags[tag] {
		if name := strings.TrimSpace(desc.Attributes.GetDefault("name", "")); name != "" {
			if typ := strings.TrimSpace(desc.Attributes.GetDefault("type", "")); typ != "" {
				add(fmt.Sprintf(`%s[name="%s"][type="%s"]`, tag, escapeAttrValue(name), escapeAttrValue(typ)), TierNameType)
			} else {
				add(fmt.Sprintf(`%s[name="%s"]`, tag, escapeAttrValue(name)), TierNameType)
			}
		}
	}

	// Tier 3: attribute-combination selector.
	stableAttrs := stableAttributePairs(tag, desc.Attributes)
	if len(stableAttrs) > 0 && tag != "" {
		n := len(stableAttrs)
		if n > maxCombinedAttrs {
			n = maxCombinedAttrs
		}
		var sb strings.Builder
		sb.WriteString(tag)
		for _, pair := range stableAttrs[:n] {
			fmt.Fprintf(&sb, `[%s="%s"]`, pair[0], escapeAttrValue(pair[1]))
		}
		add(sb.String(), TierAttributes)
	}

	// Tiers 4 and 5: stable classes, with and without one attribute anchor.
	classes := ExtractStableClasses(desc.Attributes.GetDefault("class", ""))
	if len(classes) == 0 && desc.OriginalSelector != "" {
		classes = classesFromSelector(desc.OriginalSelector)
	}
	if tag != "" && len(classes) > 0 {
		classSel := tag + "." + strings.Join(classes, ".")
		if len(stableAttrs) > 0 {
			pair := stableAttrs[0]
			add(fmt.Sprintf(`%s[%s="%s"]`, classSel, pair[0], escapeAttrValue(pair[1])), TierClassAttribute)
		}
		add(classSel, TierClasses)
	}

	// Tier 6: original selector with dynamic fragments stripped.
	if orig := desc.OriginalSelector; orig != "" {
		if strings.Contains(orig, "[id=") {
			add(idFragmentPattern.ReplaceAllString(orig, ""), TierStrippedOriginal)
		}
		for _, state := range trailingStateTokens {
			if strings.Contains(orig, state) {
				add(strings.ReplaceAll(orig, state, ""), TierStrippedOriginal)
			}
		}
	}

	// Tier 7: text anchor, last resort before positional matching.
	if text := strings.TrimSpace(desc.Text); text != "" && tag != "" {
		add(fmt.Sprintf(`%s:has-text('%s')`, tag, strings.ReplaceAll(text, "'", `\'`)), TierText)
	}

	// Tier 8: simplified positional selector.
	if simplified := SimplifyPositional(desc.OriginalSelector, tag); simplified != "" {
		add(simplified, TierPositional)
	}

	return out
}

// stableAttributePairs collects (attribute, value) pairs from the per-tag
// priority lists, keeping only values that pass the stability check.
func stableAttributePairs(tag string, attrs schemas.AttrList) [][2]string {
	var pairs [][2]string
	taken := make(map[string]bool)

	scan := func(names []string) {
		for _, name := range names {
			if taken[name] {
				continue
			}
			v := strings.TrimSpace(attrs.GetDefault(name, ""))
			if v != "" && IsStableAttributeValue(v) {
				pairs = append(pairs, [2]string{name, v})
				taken[name] = true
			}
		}
	}

	if formTags[tag] {
		scan(formAttrPriority)
	}
	if interactiveTags[tag] {
		scan(interactiveAttrPriority)
	}
	if iconTags[tag] {
		scan(iconAttrPriority)
	}
	if len(pairs) == 0 {
		scan(genericDataAttrs)
	}
	return pairs
}

var (
	nthOfTypePattern = regexp.MustCompile(`:nth-of-type\(\d+\)`)
	nthChildPattern  = regexp.MustCompile(`:nth-child\(\d+\)`)
)

// SimplifyPositional reduces a deep descendant-combinator selector to its
// last one to three segments and strips positional indices from them. Full
// root-to-target paths break on any structural change; the trailing segments
// are the part most likely to survive.
func SimplifyPositional(original, tag string) string {
	if original == "" || tag == "" {
		return ""
	}

	parts := strings.Split(original, ">")
	target := -1
	for i := len(parts) - 1; i >= 0; i-- {
		if strings.Contains(parts[i], tag) {
			target = i
			break
		}
	}
	if target < 0 {
		return ""
	}

	start := target - 2
	if start < 0 {
		start = 0
	}
	var kept []string
	for _, part := range parts[start:] {
		part = strings.TrimSpace(part)
		part = nthOfTypePattern.ReplaceAllString(part, "")
		part = nthChildPattern.ReplaceAllString(part, "")
		if part != "" {
			kept = append(kept, part)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, " > ")
}

// xpathFallbackAttrs are the attributes considered when replacing a brittle
// id()-based XPath.
var xpathFallbackAttrs = []string{"placeholder", "aria-label", "title", "name"}

// GenerateXPathCandidates produces stable XPath alternatives for a captured
// XPath. Only id()-anchored XPaths get alternatives; anything else is already
// as stable as the descriptor allows.
func GenerateXPathCandidates(xpath string, desc schemas.ElementDescriptor) []string {
	if !strings.Contains(xpath, "id(") {
		return nil
	}
	tag := desc.Tag()
	if tag == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	for _, attr := range xpathFallbackAttrs {
		v := strings.TrimSpace(desc.Attributes.GetDefault(attr, ""))
		if v == "" || !IsStableAttributeValue(v) {
			continue
		}
		expr := fmt.Sprintf(`//%s[contains(@%s, '%s')]`, tag, attr, strings.ReplaceAll(v, "'", ""))
		if !seen[expr] {
			seen[expr] = true
			out = append(out, expr)
		}
	}
	return out
}

// StableSelector returns the best single selector for a descriptor: the top
// candidate when one exists, otherwise the originally captured selector, and
// as a last resort the bare tag name. The unstable original is deliberately
// kept as the final fallback; a flaky selector beats no selector.
func StableSelector(desc schemas.ElementDescriptor) string {
	if cands := GenerateCandidates(desc); len(cands) > 0 {
		return cands[0].Selector
	}
	if desc.OriginalSelector != "" {
		return desc.OriginalSelector
	}
	return desc.Tag()
}
