package elemsel

import (
	"strings"
)

// Matcher decides whether a node is selected by a configured selector list.
// Implementations must be free of side effects so they can be shared across
// goroutines.
type Matcher interface {
	// Match reports whether n is selected.
	Match(n *Node) bool

	// Len returns the number of configured entries. A Matcher with no
	// entries never matches and disables its filtering mode.
	Len() int
}

// CriterionKind identifies the variant of a Criterion.
type CriterionKind int

// Criterion kinds.
const (
	CriterionType CriterionKind = iota
	CriterionID
	CriterionClass
	CriterionAttribute
)

// String returns the name of the criterion kind.
func (k CriterionKind) String() string {
	switch k {
	case CriterionType:
		return "type"
	case CriterionID:
		return "id"
	case CriterionClass:
		return "class"
	case CriterionAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Criterion is a single selector condition.
//
// Name holds the element name for CriterionType and the attribute name for
// CriterionAttribute. Value holds the id, class or attribute value.
type Criterion struct {
	Kind  CriterionKind
	Name  string
	Value string
}

// TypeCriterion returns a criterion matching elements by tag name.
func TypeCriterion(name string) Criterion {
	return Criterion{Kind: CriterionType, Name: strings.ToLower(name)}
}

// IDCriterion returns a criterion matching elements by id.
func IDCriterion(id string) Criterion {
	return Criterion{Kind: CriterionID, Value: strings.ToLower(id)}
}

// ClassCriterion returns a criterion matching elements carrying a class.
func ClassCriterion(class string) Criterion {
	return Criterion{Kind: CriterionClass, Value: strings.ToLower(class)}
}

// AttributeCriterion returns a criterion matching elements with an
// attribute equal to value.
func AttributeCriterion(name, value string) Criterion {
	return Criterion{Kind: CriterionAttribute, Name: strings.ToLower(name), Value: strings.ToLower(value)}
}

// String renders the criterion in selector syntax.
func (c Criterion) String() string {
	switch c.Kind {
	case CriterionType:
		return c.Name
	case CriterionID:
		return "#" + c.Value
	case CriterionClass:
		return "." + c.Value
	case CriterionAttribute:
		return "[" + c.Name + "=" + c.Value + "]"
	default:
		return ""
	}
}

// Match reports whether n satisfies the criterion. Only element nodes can
// match. Names and values are compared case-insensitively.
func (c Criterion) Match(n *Node) bool {
	if !n.IsElement() {
		return false
	}

	switch c.Kind {
	case CriterionType:
		return strings.EqualFold(n.Data, c.Name)
	case CriterionID:
		id, ok := n.Attribute("id")
		return ok && strings.EqualFold(id, c.Value)
	case CriterionClass:
		class, ok := n.Attribute("class")
		if !ok {
			return false
		}
		for _, token := range strings.Fields(class) {
			if strings.EqualFold(token, c.Value) {
				return true
			}
		}
		return false
	case CriterionAttribute:
		for _, a := range n.Attr {
			if strings.EqualFold(a.Key, c.Name) && strings.EqualFold(a.Val, c.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CompoundSelector is a set of criteria that must all match the same node.
type CompoundSelector struct {
	// Source is the selector entry the compound was parsed from.
	Source   string
	Criteria []Criterion
}

// Match reports whether every criterion matches n.
// A compound without criteria matches nothing.
func (s CompoundSelector) Match(n *Node) bool {
	if len(s.Criteria) == 0 {
		return false
	}
	for _, c := range s.Criteria {
		if !c.Match(n) {
			return false
		}
	}
	return true
}

// String renders the compound in selector syntax.
func (s CompoundSelector) String() string {
	var b strings.Builder
	for _, c := range s.Criteria {
		b.WriteString(c.String())
	}
	return b.String()
}

// Ensure SelectorSet implements Matcher.
var _ Matcher = SelectorSet(nil)

// SelectorSet is a list of compound selectors of which any one matching
// selects a node.
type SelectorSet []CompoundSelector

// Match reports whether any compound in the set matches n.
func (s SelectorSet) Match(n *Node) bool {
	for _, c := range s {
		if c.Match(n) {
			return true
		}
	}
	return false
}

// Len returns the number of compounds in the set.
func (s SelectorSet) Len() int {
	return len(s)
}

// ParseSelectorList parses a comma-separated list of selectors.
// Blank entries are skipped, so an empty or whitespace-only list yields an
// empty set. The first malformed entry aborts parsing.
func ParseSelectorList(list string) (SelectorSet, error) {
	var set SelectorSet
	for _, entry := range strings.Split(list, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		compound, err := ParseSelector(entry)
		if err != nil {
			return nil, err
		}
		set = append(set, compound)
	}
	return set, nil
}

// ParseSelector parses a single selector entry such as
// "div#main.content[data-role=article body]" into a CompoundSelector.
//
// Each part starts with a discriminator: none (type, only at the start),
// "#" (id), "." (class) or "[" (attribute). An attribute value runs up to
// the last "]" of the remaining input and may contain "=" and spaces.
func ParseSelector(s string) (CompoundSelector, error) {
	src := strings.TrimSpace(s)
	p := &selectorScanner{src: src}

	var criteria []Criterion
	for p.pos < len(src) {
		c, err := p.next()
		if err != nil {
			return CompoundSelector{}, err
		}
		criteria = append(criteria, c)
	}

	if len(criteria) == 0 {
		return CompoundSelector{}, p.fail("selector is empty")
	}

	return CompoundSelector{Source: src, Criteria: criteria}, nil
}

// selectorScanner walks a selector entry left to right.
type selectorScanner struct {
	src string
	pos int
}

// next scans one discriminator-prefixed part.
func (p *selectorScanner) next() (Criterion, error) {
	switch ch := p.src[p.pos]; {
	case ch == '#':
		p.pos++
		id := p.name()
		if id == "" {
			return Criterion{}, p.fail("id selector requires a value")
		}
		return IDCriterion(id), nil
	case ch == '.':
		p.pos++
		class := p.name()
		if class == "" {
			return Criterion{}, p.fail("class selector requires a value")
		}
		return ClassCriterion(class), nil
	case ch == '[':
		p.pos++
		return p.attribute()
	case p.pos == 0 && isNameByte(ch):
		return TypeCriterion(p.name()), nil
	default:
		return Criterion{}, p.fail(`invalid discriminator; only "#", ".", "[" or an element name are allowed`)
	}
}

// attribute scans "name=value]" after an opening bracket.
func (p *selectorScanner) attribute() (Criterion, error) {
	name := p.name()
	if name == "" {
		return Criterion{}, p.fail("attribute selector requires a name")
	}
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return Criterion{}, p.fail(`attribute selector requires "="`)
	}
	p.pos++

	end := strings.LastIndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return Criterion{}, p.fail(`attribute selector requires a closing "]"`)
	}
	value := p.src[p.pos : p.pos+end]
	if value == "" {
		return Criterion{}, p.fail("attribute selector requires a value")
	}
	p.pos += end + 1

	return AttributeCriterion(name, value), nil
}

// name consumes a run of name bytes and returns it.
func (p *selectorScanner) name() string {
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *selectorScanner) fail(reason string) *MalformedSelectorError {
	return &MalformedSelectorError{Selector: p.src, Pos: p.pos, Reason: reason}
}

// isNameByte reports whether b may appear in an element, id, class or
// attribute name.
func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' ||
		b >= 'A' && b <= 'Z' ||
		b >= '0' && b <= '9' ||
		b == '-' || b == '_'
}
