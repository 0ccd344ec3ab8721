package xml

import "strings"

// parseElement parses one element, start tag through matching end tag (or
// the self-closing form), and the normalized content in between. xml must
// be positioned at the leading '<'.
func parseElement(xml string, dtd *DTD, chain referenceChain) (*Element, string, error) {
	if !strings.HasPrefix(xml, "<") {
		return nil, xml, wfErrorf(xml, "expected '<' to begin element")
	}
	rest := xml[1:]

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected element name")
	}
	name := rest[:nameEnd]
	rest = rest[nameEnd:]

	attrs, r, err := parseAttributes(rest, dtd, name, chain)
	if err != nil {
		return nil, xml, err
	}
	rest = r

	appendDefaultAttributes(attrs, dtd, name)

	elem := &Element{Name: name, Attributes: attrs}

	rest = OptionalWhitespace.ReplaceAllString(rest, "")
	if strings.HasPrefix(rest, "/>") {
		return elem, rest[2:], nil
	}
	if !strings.HasPrefix(rest, ">") {
		return nil, xml, wfErrorf(rest, "expected '>' or '/>' to close start tag")
	}
	rest = rest[1:]

	content, r2, err := parseContentUntilEndTag(rest, dtd, name, chain)
	if err != nil {
		return nil, xml, err
	}
	rest = r2

	content = coalesceText(content)
	elem.Content = content
	for _, node := range content {
		switch n := node.(type) {
		case *Element:
			elem.Children = append(elem.Children, n)
		case *Text:
			elem.Text = append(elem.Text, n)
		case *ProcessingInstruction:
			elem.ProcessingInstructions = append(elem.ProcessingInstructions, n)
		}
	}
	return elem, rest, nil
}

// parseAttributes reads the zero-or-more `Name Eq AttValue` pairs of a
// start tag, normalizing each value against the DTD's declared type for
// (element, attribute) and rejecting a repeated attribute name.
func parseAttributes(xml string, dtd *DTD, elementName string, chain referenceChain) (*OrderedAttrs, string, error) {
	attrs := NewOrderedAttrs()
	rest := xml

	for {
		wloc := Whitespace.FindStringIndex(rest)
		if wloc == nil {
			return attrs, rest, nil
		}
		after := rest[wloc[1]:]
		nameEnd := findNameEnd(after)
		if nameEnd == 0 {
			return attrs, rest, nil
		}
		attrName := after[:nameEnd]
		after = after[nameEnd:]

		eqLoc := Eq.FindStringIndex(after)
		if eqLoc == nil {
			return attrs, xml, wfErrorf(after, "expected '=' after attribute name %q", attrName)
		}
		after = after[eqLoc[1]:]

		raw, r, err := parseQuotedLiteral(after)
		if err != nil {
			return attrs, xml, err
		}

		if attrs.Has(attrName) {
			return attrs, xml, wfErrorf(xml, "attribute %q specified more than once", attrName)
		}

		isCDATA := true
		if decls, ok := dtd.AttributeDeclarations[elementName]; ok {
			if decl, ok := decls[attrName]; ok {
				isCDATA = decl.ValueType == AttrCDATA
			}
		}
		normalized, err := normalizeAttributeValue(raw, dtd, isCDATA, chain)
		if err != nil {
			return attrs, xml, err
		}
		if !CharSequence.MatchString(normalized) {
			return attrs, xml, newDisallowedCharacterError(normalized, "attribute value", "char", xml)
		}
		attrs.Set(attrName, normalized)
		rest = r
	}
}

// normalizeAttributeValue implements the AttValue normalization algorithm:
// literal whitespace characters become a single space, character
// references expand immediately, general-entity references expand
// recursively (rejecting unparsed or unfetched entities and reference
// cycles), and for a non-CDATA declared type the result additionally has
// leading/trailing space trimmed and internal runs of spaces collapsed to
// one.
func normalizeAttributeValue(value string, dtd *DTD, isCDATA bool, chain referenceChain) (string, error) {
	collapsed := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, value)

	var out strings.Builder
	rest := collapsed
	for {
		loc := GeneralReference.FindStringIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		before := rest[:loc[0]]
		if strings.ContainsAny(before, "&<") {
			return "", wfErrorf(value, "unescaped '&' or '<' in attribute value")
		}
		out.WriteString(before)
		ref := rest[loc[0]:loc[1]]

		switch {
		case isCharRef(ref):
			r, err := parseCharacterReference(ref, value)
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
		default:
			name := strings.TrimSuffix(strings.TrimPrefix(ref, "&"), ";")
			if chain.contains(name) {
				return "", wfErrorf(value, "recursive entity reference %q", name)
			}
			entity, ok := dtd.GeneralEntities[name]
			if !ok {
				return "", wfErrorf(value, "reference to undeclared entity %q", name)
			}
			if !entity.Parsed || entity.ExpansionText == nil {
				return "", wfErrorf(value, "entity %q is not usable in an attribute value", name)
			}
			expanded, err := normalizeAttributeValue(*entity.ExpansionText, dtd, true, chain.push(name))
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
		}
		rest = rest[loc[1]:]
	}
	if strings.ContainsAny(rest, "&<") {
		return "", wfErrorf(value, "unescaped '&' or '<' in attribute value")
	}

	result := out.String()
	if !isCDATA {
		result = collapseSpaces(strings.TrimSpace(result))
	}
	return result, nil
}

// collapseSpaces replaces every run of one or more spaces with a single
// space. Only spaces, since normalizeAttributeValue has already mapped
// every other whitespace character to ' '.
func collapseSpaces(s string) string {
	var out strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' {
			if inSpace {
				continue
			}
			inSpace = true
		} else {
			inSpace = false
		}
		out.WriteRune(r)
	}
	return out.String()
}

// appendDefaultAttributes injects declared default/#FIXED attribute
// values for any attribute not already present on the instance. Default
// values were normalized once, at declaration time in attlist.go, so this
// only collapses whitespace for non-CDATA values rather than re-running
// the full normalization algorithm.
func appendDefaultAttributes(attrs *OrderedAttrs, dtd *DTD, elementName string) {
	order, ok := dtd.AttributeOrder[elementName]
	if !ok {
		return
	}
	decls := dtd.AttributeDeclarations[elementName]
	for _, attrName := range order {
		if attrs.Has(attrName) {
			continue
		}
		decl := decls[attrName]
		switch decl.Default {
		case DefaultFixed, DefaultValue:
			value := decl.DefaultValue
			if decl.ValueType != AttrCDATA {
				value = collapseSpaces(strings.TrimSpace(value))
			}
			attrs.Set(attrName, value)
		}
	}
}

// parseContentUntilEndTag parses an element's content up to and including
// its matching end tag, which must repeat elementName exactly.
func parseContentUntilEndTag(xml string, dtd *DTD, elementName string, chain referenceChain) ([]ContentNode, string, error) {
	var nodes []ContentNode
	rest := xml

	flushText := func(text string) {
		if text != "" {
			nodes = append(nodes, &Text{Value: text})
		}
	}

	for {
		if strings.HasPrefix(rest, "</") {
			after := rest[2:]
			nameEnd := findNameEnd(after)
			if nameEnd == 0 || after[:nameEnd] != elementName {
				return nil, xml, wfErrorf(rest, "end tag does not match start tag %q", elementName)
			}
			after = after[nameEnd:]
			after = OptionalWhitespace.ReplaceAllString(after, "")
			if !strings.HasPrefix(after, ">") {
				return nil, xml, wfErrorf(after, "expected '>' to close end tag")
			}
			return nodes, after[1:], nil
		}

		if strings.HasPrefix(rest, "<!--") {
			r, err := parseComment(rest)
			if err != nil {
				return nil, xml, err
			}
			rest = r
			continue
		}

		if strings.HasPrefix(rest, "<?") {
			pi, r, err := parseProcessingInstruction(rest)
			if err != nil {
				return nil, xml, err
			}
			nodes = append(nodes, pi)
			rest = r
			continue
		}

		if strings.HasPrefix(rest, "<") {
			child, r, err := parseElement(rest, dtd, chain)
			if err != nil {
				return nil, xml, err
			}
			nodes = append(nodes, child)
			rest = r
			continue
		}

		if strings.HasPrefix(rest, "&") && !strings.HasPrefix(rest, "&#") {
			loc := Reference.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				return nil, xml, wfErrorf(rest, "malformed entity reference")
			}
			ref := rest[:loc[1]]
			name := strings.TrimSuffix(strings.TrimPrefix(ref, "&"), ";")
			if chain.contains(name) {
				return nil, xml, wfErrorf(xml, "recursive entity reference %q", name)
			}
			entity, ok := dtd.GeneralEntities[name]
			if !ok {
				return nil, xml, wfErrorf(xml, "reference to undeclared entity %q", name)
			}
			if !entity.Parsed || entity.ExpansionText == nil {
				return nil, xml, wfErrorf(xml, "entity %q is not usable in element content", name)
			}
			expChildren, remainder, err := parseContentBlock(*entity.ExpansionText, dtd, elementName, chain.push(name))
			if err != nil {
				return nil, xml, err
			}
			if err := requireEOF(remainder, "entity expansion"); err != nil {
				return nil, xml, wfErrorf(remainder, "an end tag must not cross an entity boundary")
			}
			nodes = append(nodes, expChildren...)
			rest = rest[loc[1]:]
			continue
		}

		text, r, err := scanText(rest)
		if err != nil {
			return nil, xml, err
		}
		if r == rest {
			return nil, xml, wfErrorf(rest, "unexpected content in element %q", elementName)
		}
		flushText(text)
		rest = r
	}
}

// coalesceText merges adjacent Text nodes into one, which can arise when a
// general-entity reference expands to (or begins/ends with) character data
// sitting next to literal text in the referencing context. An element's
// content never holds two consecutive text nodes.
func coalesceText(nodes []ContentNode) []ContentNode {
	out := make([]ContentNode, 0, len(nodes))
	for _, node := range nodes {
		if text, ok := node.(*Text); ok {
			if n := len(out); n > 0 {
				if prev, ok := out[n-1].(*Text); ok {
					prev.Value += text.Value
					continue
				}
			}
			out = append(out, &Text{Value: text.Value})
			continue
		}
		out = append(out, node)
	}
	return out
}

// parseContentBlock parses a run of content nodes (no enclosing element,
// no terminating end tag expected) out of an entity's expansion text, for
// use when a general-entity reference is encountered inside element
// content. It stops at end of input.
func parseContentBlock(xml string, dtd *DTD, elementName string, chain referenceChain) ([]ContentNode, string, error) {
	var nodes []ContentNode
	rest := xml

	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, "<!--"):
			r, err := parseComment(rest)
			if err != nil {
				return nil, xml, err
			}
			rest = r

		case strings.HasPrefix(rest, "<?"):
			pi, r, err := parseProcessingInstruction(rest)
			if err != nil {
				return nil, xml, err
			}
			nodes = append(nodes, pi)
			rest = r

		case strings.HasPrefix(rest, "<"):
			child, r, err := parseElement(rest, dtd, chain)
			if err != nil {
				return nil, xml, err
			}
			nodes = append(nodes, child)
			rest = r

		case strings.HasPrefix(rest, "&") && !strings.HasPrefix(rest, "&#"):
			loc := Reference.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				return nil, xml, wfErrorf(rest, "malformed entity reference")
			}
			ref := rest[:loc[1]]
			name := strings.TrimSuffix(strings.TrimPrefix(ref, "&"), ";")
			if chain.contains(name) {
				return nil, xml, wfErrorf(xml, "recursive entity reference %q", name)
			}
			entity, ok := dtd.GeneralEntities[name]
			if !ok {
				return nil, xml, wfErrorf(xml, "reference to undeclared entity %q", name)
			}
			if !entity.Parsed || entity.ExpansionText == nil {
				return nil, xml, wfErrorf(xml, "entity %q is not usable in element content", name)
			}
			nested, remainder, err := parseContentBlock(*entity.ExpansionText, dtd, elementName, chain.push(name))
			if err != nil {
				return nil, xml, err
			}
			if err := requireEOF(remainder, "entity expansion"); err != nil {
				return nil, xml, wfErrorf(remainder, "an end tag must not cross an entity boundary")
			}
			nodes = append(nodes, nested...)
			rest = rest[loc[1]:]

		default:
			text, r, err := scanText(rest)
			if err != nil {
				return nil, xml, err
			}
			if r == rest {
				return nodes, rest, nil
			}
			if text != "" {
				nodes = append(nodes, &Text{Value: text})
			}
			rest = r
		}
	}
	return nodes, rest, nil
}
