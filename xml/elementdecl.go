package xml

import "strings"

// parseElementDeclaration parses `<!ELEMENT Name contentspec >` (xml
// positioned immediately after "<!ELEMENT"), building the content model
// as a Particle tree.
func parseElementDeclaration(xml string, dtd *DTD, external bool) (*ElementDeclaration, string, error) {
	rest := xml
	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after ELEMENT")
	}
	rest = rest[loc[1]:]

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected element name")
	}
	name := rest[:nameEnd]
	rest = rest[nameEnd:]

	wloc := Whitespace.FindStringIndex(rest)
	if wloc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after element name")
	}
	rest = rest[wloc[1]:]

	if strings.HasPrefix(rest, "%") {
		if !external {
			return nil, xml, wfErrorf(rest, "parameter entity references are not allowed within markup in the internal subset")
		}
		_, expansion, remainder, err := parseParameterEntityReference(rest, dtd, nil)
		if err != nil {
			return nil, xml, err
		}
		rest = strings.TrimLeft(expansion, " \t\r\n") + remainder
	}

	decl := &ElementDeclaration{Name: name}

	switch {
	case strings.HasPrefix(rest, "EMPTY"):
		decl.Type = ContentTypeEmpty
		rest = rest[len("EMPTY"):]
	case strings.HasPrefix(rest, "ANY"):
		decl.Type = ContentTypeAny
		rest = rest[len("ANY"):]
	case isMixedStart(rest):
		names, r, err := parseMixedContent(rest)
		if err != nil {
			return nil, xml, err
		}
		decl.Type = ContentTypeMixed
		decl.Mixed = names
		rest = r
	case strings.HasPrefix(rest, "("):
		particle, r, err := parseContentParticle(rest, dtd, external)
		if err != nil {
			return nil, xml, err
		}
		decl.Type = ContentTypeChildren
		decl.Content = particle
		rest = r
	default:
		return nil, xml, wfErrorf(xml, "expected content specification")
	}

	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ">") {
		return nil, xml, wfErrorf(rest, "expected '>' to close ELEMENT declaration")
	}
	return decl, rest[1:], nil
}

// isMixedStart reports whether xml begins a Mixed production:
// '(' S? '#PCDATA'.
func isMixedStart(xml string) bool {
	if !strings.HasPrefix(xml, "(") {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(xml[1:], " \t\r\n"), "#PCDATA")
}

// parseMixedContent parses `( #PCDATA )` or `( #PCDATA | name | name )*`.
func parseMixedContent(xml string) ([]string, string, error) {
	rest := strings.TrimLeft(xml[1:], " \t\r\n")
	rest = rest[len("#PCDATA"):]
	var names []string
	seen := map[string]bool{}

	for {
		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		if strings.HasPrefix(rest, ")") {
			rest = rest[1:]
			if strings.HasPrefix(rest, "*") {
				rest = rest[1:]
			} else if len(names) > 0 {
				return nil, xml, wfErrorf(xml, "mixed-content group with child names must end in '*'")
			}
			return names, rest, nil
		}
		if !strings.HasPrefix(rest, "|") {
			return nil, xml, wfErrorf(rest, "expected '|' or ')' in mixed content")
		}
		rest = rest[1:]
		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		nameEnd := findNameEnd(rest)
		if nameEnd == 0 {
			return nil, xml, wfErrorf(rest, "expected element name in mixed content")
		}
		name := rest[:nameEnd]
		if seen[name] {
			return nil, xml, wfErrorf(xml, "element name %q repeated in mixed content", name)
		}
		seen[name] = true
		names = append(names, name)
		rest = rest[nameEnd:]
	}
}

// parseContentParticle parses one `(...)` children content-model group,
// including its trailing cardinality suffix, building the Choice/Sequence
// tree bottom-up. A group mixing both ',' and '|' separators is rejected.
// A `%name;` parameter-entity reference encountered between particles is
// re-lexed as its expansion text, the same way the attribute-list
// reader's enumeration handling works.
func parseContentParticle(xml string, dtd *DTD, external bool) (Particle, string, error) {
	if !strings.HasPrefix(xml, "(") {
		return nil, xml, wfErrorf(xml, "expected '(' to begin content particle group")
	}
	rest := xml[1:]
	var items []Particle
	separator := byte(0)

	for {
		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		if strings.HasPrefix(rest, "%") {
			if !external {
				return nil, xml, wfErrorf(rest, "parameter entity references are not allowed within markup in the internal subset")
			}
			_, expansion, remainder, err := parseParameterEntityReference(rest, dtd, nil)
			if err != nil {
				return nil, xml, err
			}
			item, tail, err := parseContentParticleItem(strings.TrimSpace(expansion), dtd, external)
			if err != nil {
				return nil, xml, err
			}
			if strings.TrimSpace(tail) != "" {
				return nil, xml, wfErrorf(xml, "parameter entity expansion did not yield a single content particle")
			}
			items = append(items, item)
			rest = remainder
		} else {
			item, r, err := parseContentParticleItem(rest, dtd, external)
			if err != nil {
				return nil, xml, err
			}
			items = append(items, item)
			rest = r
		}

		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		if strings.HasPrefix(rest, ")") {
			rest = rest[1:]
			cardinality := parseCardinality(&rest)
			if separator == '|' && len(items) > 1 {
				return Choice{Items: items, Cardinality: cardinality}, rest, nil
			}
			return Sequence{Items: items, Cardinality: cardinality}, rest, nil
		}
		if len(rest) == 0 || (rest[0] != '|' && rest[0] != ',') {
			return nil, xml, wfErrorf(rest, "expected '|', ',' or ')' in content particle group")
		}
		if separator == 0 {
			separator = rest[0]
		} else if separator != rest[0] {
			return nil, xml, wfErrorf(xml, "content particle group mixes ',' and '|' separators")
		}
		rest = rest[1:]
	}
}

// parseContentParticleItem parses a single group or leaf at the current
// position, dispatching to parseContentParticle for a nested group.
func parseContentParticleItem(xml string, dtd *DTD, external bool) (Particle, string, error) {
	if strings.HasPrefix(xml, "(") {
		return parseContentParticle(xml, dtd, external)
	}
	return parseContentName(xml)
}

func parseContentName(xml string) (Particle, string, error) {
	nameEnd := findNameEnd(xml)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected element name in content particle")
	}
	name := xml[:nameEnd]
	rest := xml[nameEnd:]
	cardinality := parseCardinality(&rest)
	return Leaf{Name: name, Cardinality: cardinality}, rest, nil
}

func parseCardinality(rest *string) Cardinality {
	if len(*rest) == 0 {
		return CardinalityOne
	}
	switch (*rest)[0] {
	case '?':
		*rest = (*rest)[1:]
		return CardinalityOptional
	case '*':
		*rest = (*rest)[1:]
		return CardinalityZeroPlus
	case '+':
		*rest = (*rest)[1:]
		return CardinalityOnePlus
	default:
		return CardinalityOne
	}
}
