// internal/browser/dom/cdpnode.go
package dom

import (
	"strings"

	"github.com/chromedp/cdproto/cdp"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

// DescriptorFromCDPNode builds an element descriptor from a live CDP node
// handle. Attribute order follows the node's flat attribute list, which
// preserves document order.
func DescriptorFromCDPNode(node *cdp.Node, originalSelector, originalXPath string) schemas.ElementDescriptor {
	desc := schemas.ElementDescriptor{
		TagName:          strings.ToLower(node.NodeName),
		OriginalSelector: originalSelector,
		OriginalXPath:    originalXPath,
	}

	// cdp.Node.Attributes is a flat [name, value, name, value, ...] list.
	for i := 0; i+1 < len(node.Attributes); i += 2 {
		desc.Attributes.Set(node.Attributes[i], node.Attributes[i+1])
	}

	return desc
}
