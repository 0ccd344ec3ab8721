package xml

import "strings"

// parseAttlistDeclaration parses `<!ATTLIST Name AttDef* >` (xml
// positioned immediately after "<!ATTLIST"), merging the resulting
// AttributeDeclarations into dtd first-declaration-wins per attribute.
func parseAttlistDeclaration(xml string, dtd *DTD, externalSubset bool) (string, error) {
	rest := xml
	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return xml, wfErrorf(xml, "expected whitespace after ATTLIST")
	}
	rest = rest[loc[1]:]

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return xml, wfErrorf(xml, "expected element name in ATTLIST")
	}
	elementName := rest[:nameEnd]
	rest = rest[nameEnd:]

	decls, r, err := parseAttDefs(rest, dtd, elementName, externalSubset)
	if err != nil {
		return xml, err
	}
	rest = r

	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ">") {
		return xml, wfErrorf(rest, "expected '>' to close ATTLIST declaration")
	}

	if _, ok := dtd.AttributeDeclarations[elementName]; !ok {
		dtd.AttributeDeclarations[elementName] = make(map[string]*AttributeDeclaration)
	}
	for _, d := range decls {
		if _, exists := dtd.AttributeDeclarations[elementName][d.AttributeName]; exists {
			continue // first declaration wins
		}
		dtd.AttributeDeclarations[elementName][d.AttributeName] = d
		dtd.AttributeOrder[elementName] = append(dtd.AttributeOrder[elementName], d.AttributeName)
	}

	return rest[1:], nil
}

// parseAttDefs reads the `AttDef*` portion of an ATTLIST declaration,
// re-lexing parameter-entity references encountered between AttDefs as
// their expansion text (which must itself be a sequence of complete
// AttDefs), and rejecting an attribute name repeated within the same
// declaration.
func parseAttDefs(xml string, dtd *DTD, elementName string, externalSubset bool) ([]*AttributeDeclaration, string, error) {
	var decls []*AttributeDeclaration
	seen := map[string]bool{}
	rest := xml

	for {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if len(trimmed) == 0 || trimmed[0] == '>' {
			return decls, trimmed, nil
		}
		if strings.HasPrefix(trimmed, "%") {
			if !externalSubset {
				return nil, xml, wfErrorf(trimmed, "parameter entity references are not allowed within markup in the internal subset")
			}
			_, expansion, remainder, err := parseParameterEntityReference(trimmed, dtd, nil)
			if err != nil {
				return nil, xml, err
			}
			nested, tail, err := parseAttDefs(expansion, dtd, elementName, externalSubset)
			if err != nil {
				return nil, xml, err
			}
			if strings.TrimSpace(tail) != "" {
				return nil, xml, wfErrorf(tail, "parameter entity expansion in ATTLIST %s is not a sequence of complete attribute definitions", elementName)
			}
			for _, d := range nested {
				if seen[d.AttributeName] {
					return nil, xml, wfErrorf(xml, "attribute %q declared more than once in ATTLIST %s", d.AttributeName, elementName)
				}
				seen[d.AttributeName] = true
				decls = append(decls, d)
			}
			rest = remainder
			continue
		}

		nameEnd := findNameEnd(trimmed)
		if nameEnd == 0 {
			return decls, trimmed, nil
		}
		attrName := trimmed[:nameEnd]
		if seen[attrName] {
			return nil, xml, wfErrorf(xml, "attribute %q declared more than once in ATTLIST %s", attrName, elementName)
		}

		after := trimmed[nameEnd:]
		wloc := Whitespace.FindStringIndex(after)
		if wloc == nil {
			return nil, xml, wfErrorf(xml, "expected whitespace after attribute name %q", attrName)
		}
		after = after[wloc[1]:]

		valueType, options, r, err := parseAttributeType(after, dtd, externalSubset)
		if err != nil {
			return nil, xml, err
		}
		after = r

		wloc2 := Whitespace.FindStringIndex(after)
		if wloc2 == nil {
			return nil, xml, wfErrorf(xml, "expected whitespace before default declaration for %q", attrName)
		}
		after = after[wloc2[1]:]

		kind, defaultValue, r2, err := parseDefaultDeclaration(after, dtd, valueType == AttrCDATA)
		if err != nil {
			return nil, xml, err
		}

		seen[attrName] = true
		decls = append(decls, &AttributeDeclaration{
			ElementName:   elementName,
			AttributeName: attrName,
			ValueType:     valueType,
			Options:       options,
			Default:       kind,
			DefaultValue:  defaultValue,
		})
		rest = r2
	}
}

var attributeTypeKeywords = []string{
	"CDATA", "IDREFS", "IDREF", "ID", "ENTITIES", "ENTITY", "NMTOKENS", "NMTOKEN",
}

var attributeTypeValues = map[string]AttributeValueType{
	"CDATA": AttrCDATA, "ID": AttrID, "IDREF": AttrIDRef, "IDREFS": AttrIDRefs,
	"ENTITY": AttrEntity, "ENTITIES": AttrEntities, "NMTOKEN": AttrNmtoken, "NMTOKENS": AttrNmtokens,
}

// parseAttributeType parses an AttType: one of the tokenized-type
// keywords, a NOTATION enumeration, or a plain enumeration.
func parseAttributeType(xml string, dtd *DTD, external bool) (AttributeValueType, []string, string, error) {
	for _, kw := range attributeTypeKeywords {
		if strings.HasPrefix(xml, kw) {
			return attributeTypeValues[kw], nil, xml[len(kw):], nil
		}
	}
	if strings.HasPrefix(xml, "NOTATION") {
		rest := xml[len("NOTATION"):]
		loc := Whitespace.FindStringIndex(rest)
		if loc == nil {
			return 0, nil, xml, wfErrorf(xml, "expected whitespace after NOTATION")
		}
		rest = rest[loc[1]:]
		options, r, err := parseEnumeration(rest, dtd, true, external)
		if err != nil {
			return 0, nil, xml, err
		}
		return AttrNotation, options, r, nil
	}
	if strings.HasPrefix(xml, "(") {
		options, r, err := parseEnumeration(xml, dtd, false, external)
		if err != nil {
			return 0, nil, xml, err
		}
		return AttrEnumeration, options, r, nil
	}
	return 0, nil, xml, wfErrorf(xml, "unrecognized attribute type")
}

// parseEnumeration parses `(tok1|tok2|...)`, re-lexing a parameter-entity
// reference encountered mid-enumeration as a synthetic parenthesized
// group.
func parseEnumeration(xml string, dtd *DTD, names bool, external bool) ([]string, string, error) {
	if !strings.HasPrefix(xml, "(") {
		return nil, xml, wfErrorf(xml, "expected '(' to begin enumeration")
	}
	rest := xml[1:]
	var options []string

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
			nested, _, err := parseEnumeration("("+strings.TrimSpace(expansion)+")", dtd, names, external)
			if err != nil {
				return nil, xml, err
			}
			options = append(options, nested...)
			rest = remainder
		} else {
			var tokEnd int
			if names {
				tokEnd = findNameEnd(rest)
			} else {
				tokEnd = findNmTokenEnd(rest)
			}
			if tokEnd == 0 {
				return nil, xml, wfErrorf(xml, "expected enumeration member")
			}
			options = append(options, rest[:tokEnd])
			rest = rest[tokEnd:]
		}
		rest = OptionalWhitespace.ReplaceAllString(rest, "")

		if strings.HasPrefix(rest, "|") {
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, ")") {
			return options, rest[1:], nil
		}
		return nil, xml, wfErrorf(rest, "expected '|' or ')' in enumeration")
	}
}

func findNmTokenEnd(s string) int {
	runes := []rune(s)
	n := 0
	for n < len(runes) && IsNameChar(runes[n]) {
		n++
	}
	return len([]byte(string(runes[:n])))
}

// parseDefaultDeclaration parses one of `#REQUIRED`, `#IMPLIED`,
// `#FIXED AttValue`, or a bare default AttValue. The value is normalized
// here, at declaration time; injection into an element instance does not
// normalize again.
func parseDefaultDeclaration(xml string, dtd *DTD, isCDATA bool) (DefaultKind, string, string, error) {
	switch {
	case strings.HasPrefix(xml, "#REQUIRED"):
		return DefaultRequired, "", xml[len("#REQUIRED"):], nil
	case strings.HasPrefix(xml, "#IMPLIED"):
		return DefaultImplied, "", xml[len("#IMPLIED"):], nil
	case strings.HasPrefix(xml, "#FIXED"):
		rest := xml[len("#FIXED"):]
		loc := Whitespace.FindStringIndex(rest)
		if loc == nil {
			return 0, "", xml, wfErrorf(xml, "expected whitespace after #FIXED")
		}
		rest = rest[loc[1]:]
		raw, r, err := parseQuotedLiteral(rest)
		if err != nil {
			return 0, "", xml, err
		}
		normalized, err := normalizeAttributeValue(raw, dtd, isCDATA, nil)
		if err != nil {
			return 0, "", xml, err
		}
		return DefaultFixed, normalized, r, nil
	default:
		raw, r, err := parseQuotedLiteral(xml)
		if err != nil {
			return 0, "", xml, err
		}
		normalized, err := normalizeAttributeValue(raw, dtd, isCDATA, nil)
		if err != nil {
			return 0, "", xml, err
		}
		return DefaultValue, normalized, r, nil
	}
}
