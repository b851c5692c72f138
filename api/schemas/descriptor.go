package schemas

import "strings"

// Attr is a single HTML attribute. Descriptors keep attributes as an ordered
// slice rather than a map because selector generation depends on document
// order and deterministic iteration.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttrList is an ordered attribute container with map-like accessors.
type AttrList []Attr

// Get returns the value for key and whether it was present.
func (a AttrList) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// GetDefault returns the value for key, or def if the attribute is absent.
func (a AttrList) GetDefault(key, def string) string {
	if v, ok := a.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key is present, even with an empty value.
func (a AttrList) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set appends or replaces an attribute, preserving the position of an
// existing key.
func (a *AttrList) Set(key, value string) {
	for i, attr := range *a {
		if attr.Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: value})
}

// ElementDescriptor is the immutable snapshot of a DOM element captured at
// demonstration time. It is the only input the selector and hashing layers
// ever see; they never touch the live page.
type ElementDescriptor struct {
	TagName          string   `json:"tagName"`
	Attributes       AttrList `json:"attributes,omitempty"`
	Text             string   `json:"text,omitempty"`
	ShadowRoot       bool     `json:"shadowRoot,omitempty"`
	OriginalSelector string   `json:"originalSelector,omitempty"`
	OriginalXPath    string   `json:"originalXPath,omitempty"`
}

// Tag returns the lower-cased tag name.
func (d ElementDescriptor) Tag() string {
	return strings.ToLower(strings.TrimSpace(d.TagName))
}
