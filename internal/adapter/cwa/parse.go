package cwa

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/cwa-proxy-service/internal/domain"
	"golang.org/x/net/html/charset"
)

// ParseWarnings reads an XML document and projects every item element, at any
// depth, to a WarningItem. The document must be well-formed: one root element,
// known entities only, matched tags. Items keep document order; a missing
// title, link, description or pubDate child becomes the empty string, and the
// first child of each name wins. Element text is kept verbatim, whitespace
// included.
func ParseWarnings(r io.Reader) ([]domain.WarningItem, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		items    []*itemState
		stack    []element
		rootSeen bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse rss: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := element{item: -1}
			if len(stack) == 0 {
				if rootSeen {
					return nil, fmt.Errorf("parse rss: junk after document element: <%s>", t.Name.Local)
				}
				rootSeen = true
			} else {
				parent := &stack[len(stack)-1]
				parent.hasChild = true
				if parent.item >= 0 && t.Name.Space == "" {
					el.text = items[parent.item].claim(t.Name.Local)
				}
			}
			if t.Name.Space == "" && t.Name.Local == "item" {
				el.item = len(items)
				items = append(items, &itemState{})
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(strings.TrimPrefix(string(t), "\ufeff")) != "" {
					return nil, errors.New("parse rss: text outside document element")
				}
				continue
			}
			if top := stack[len(stack)-1]; top.text != nil && !top.hasChild {
				*top.text += string(t)
			}
		}
	}
	if !rootSeen {
		return nil, errors.New("parse rss: no document element")
	}

	out := make([]domain.WarningItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.item)
	}
	return out, nil
}

// element is an open tag. text points at the WarningItem field it fills, if
// any; only character data before its first child element counts.
type element struct {
	item     int
	text     *string
	hasChild bool
}

type itemState struct {
	item domain.WarningItem
	seen map[string]bool
}

// claim returns the field a child element named local fills, or nil when the
// name is not projected or an earlier sibling already filled it.
func (s *itemState) claim(local string) *string {
	var field *string
	switch local {
	case "title":
		field = &s.item.Title
	case "link":
		field = &s.item.Link
	case "description":
		field = &s.item.Description
	case "pubDate":
		field = &s.item.PubDate
	default:
		return nil
	}
	if s.seen[local] {
		return nil
	}
	if s.seen == nil {
		s.seen = make(map[string]bool, 4)
	}
	s.seen[local] = true
	return field
}
