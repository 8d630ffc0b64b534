package partnerads

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// node is a loosely typed XML element. Attributes are folded in as leaf
// children so they can be looked up like elements.
type node struct {
	name     string
	text     string
	children []*node
}

var innerSpace = regexp.MustCompile(`\s{2,}`)

// parseTree reads document into a tree and returns the children of its root
// element. Names are lower-cased and every text value is trimmed, collapsed
// and NFC normalized.
func parseTree(document []byte) ([]*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(document))
	// The document has already been transcoded to UTF-8 whatever its prolog says.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	dec.Entity = xml.HTMLEntity

	var (
		stack []*node
		root  *node
		text  []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: strings.ToLower(t.Name.Local)}
			for _, attr := range t.Attr {
				n.children = append(n.children, &node{
					name: strings.ToLower(attr.Name.Local),
					text: clean(attr.Value),
				})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected closing tag %s", t.Name.Local)
			}
			stack[len(stack)-1].text = clean(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}
	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root.children, nil
}

func clean(s string) string {
	return norm.NFC.String(innerSpace.ReplaceAllString(strings.TrimSpace(s), " "))
}

// group indexes nodes by element name, keeping document order.
func group(nodes []*node) (map[string][]*node, []string) {
	out := make(map[string][]*node)
	var keys []string
	for _, n := range nodes {
		if _, seen := out[n.name]; !seen {
			keys = append(keys, n.name)
		}
		out[n.name] = append(out[n.name], n)
	}
	return out, keys
}

// field returns the text of the first child called name, or nil when absent.
func (n *node) field(name string) *string {
	for _, c := range n.children {
		if c.name == name {
			v := c.text
			return &v
		}
	}
	return nil
}
