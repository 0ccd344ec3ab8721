package xml

import "strings"

// parseSubsetIntoDTD is the internal/external DTD subset driver: it reads
// declarations and parameter-entity/conditional-section markup until it
// hits the subset terminator (']' for the internal subset, end of input
// for the external subset), merging results into dtd with
// first-declaration-wins semantics.
func parseSubsetIntoDTD(xml string, dtd *DTD, external bool, chain referenceChain) (string, error) {
	rest := xml
	for {
		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		if len(rest) == 0 || (!external && strings.HasPrefix(rest, "]")) {
			return rest, nil
		}

		switch {
		case strings.HasPrefix(rest, "%"):
			if !external {
				return xml, wfErrorf(rest, "parameter entity references are not allowed in the internal DTD subset")
			}
			r, err := parseParameterEntityIntoDTD(rest, dtd, external, chain)
			if err != nil {
				return xml, err
			}
			rest = r

		case strings.HasPrefix(rest, "<![") :
			if !external {
				return xml, wfErrorf(rest, "conditional sections are not allowed in the internal DTD subset")
			}
			r, err := parseConditionalSectionIntoDTD(rest, dtd, chain)
			if err != nil {
				return xml, err
			}
			rest = r

		case strings.HasPrefix(rest, "<!ENTITY"):
			entity, r, err := parseEntityDeclaration(rest[len("<!ENTITY"):], dtd, external)
			if err != nil {
				return xml, err
			}
			table := dtd.GeneralEntities
			if entity.Type == ParameterEntity {
				table = dtd.ParameterEntities
			}
			if _, exists := table[entity.Name]; !exists {
				table[entity.Name] = entity
			}
			rest = r

		case strings.HasPrefix(rest, "<!NOTATION"):
			notation, r, err := parseNotationDeclaration(rest[len("<!NOTATION"):])
			if err != nil {
				return xml, err
			}
			if _, exists := dtd.Notations[notation.Name]; !exists {
				dtd.Notations[notation.Name] = notation
			}
			rest = r

		case strings.HasPrefix(rest, "<!ELEMENT"):
			decl, r, err := parseElementDeclaration(rest[len("<!ELEMENT"):], dtd, external)
			if err != nil {
				return xml, err
			}
			if _, exists := dtd.ElementDeclarations[decl.Name]; !exists {
				dtd.ElementDeclarations[decl.Name] = decl
			}
			rest = r

		case strings.HasPrefix(rest, "<!ATTLIST"):
			r, err := parseAttlistDeclaration(rest[len("<!ATTLIST"):], dtd, external)
			if err != nil {
				return xml, err
			}
			rest = r

		case strings.HasPrefix(rest, "<!--"):
			r, err := parseComment(rest)
			if err != nil {
				return xml, err
			}
			rest = r

		case strings.HasPrefix(rest, "<?"):
			pi, r, err := parseProcessingInstruction(rest)
			if err != nil {
				return xml, err
			}
			dtd.ProcessingInstructions = append(dtd.ProcessingInstructions, pi)
			rest = r

		default:
			return xml, wfErrorf(rest, "unrecognized markup in DTD subset")
		}
	}
}

// parseParameterEntityIntoDTD handles a bare `%name;` reference appearing
// directly in subset markup (as opposed to inside a declaration's value):
// it expands to a run of complete declarations/sections, parsed as an
// isolated subset with its own cycle-checked reference chain.
func parseParameterEntityIntoDTD(xml string, dtd *DTD, external bool, chain referenceChain) (string, error) {
	entity, expansion, remainder, err := parseParameterEntityReference(xml, dtd, chain)
	if err != nil {
		return xml, err
	}
	tail, err := parseSubsetIntoDTD(expansion, dtd, external, chain.push(entity.Name))
	if err != nil {
		return xml, err
	}
	if strings.TrimSpace(tail) != "" {
		return xml, wfErrorf(tail, "parameter entity %q did not expand to a sequence of complete declarations", entity.Name)
	}
	return remainder, nil
}

// parseConditionalSectionIntoDTD parses `<![ INCLUDE|IGNORE [...]]>`,
// recursing into the subset driver for INCLUDE and skipping the balanced
// body for IGNORE. Only legal in the external subset.
func parseConditionalSectionIntoDTD(xml string, dtd *DTD, chain referenceChain) (string, error) {
	rest := xml[len("<!["):]
	rest = OptionalWhitespace.ReplaceAllString(rest, "")

	keyword := ""
	if strings.HasPrefix(rest, "%") {
		_, expansion, remainder, err := parseParameterEntityReference(rest, dtd, chain)
		if err != nil {
			return xml, err
		}
		keyword = strings.TrimSpace(expansion)
		rest = remainder
	} else if strings.HasPrefix(rest, "INCLUDE") {
		keyword = "INCLUDE"
		rest = rest[len("INCLUDE"):]
	} else if strings.HasPrefix(rest, "IGNORE") {
		keyword = "IGNORE"
		rest = rest[len("IGNORE"):]
	} else {
		return xml, wfErrorf(rest, "expected INCLUDE or IGNORE in conditional section")
	}

	rest = OptionalWhitespace.ReplaceAllString(rest, "")
	if !strings.HasPrefix(rest, "[") {
		return xml, wfErrorf(rest, "expected '[' to begin conditional section body")
	}
	body, remainder, err := findConditionalSectionBody(rest[1:])
	if err != nil {
		return xml, err
	}

	switch keyword {
	case "INCLUDE":
		if _, err := parseSubsetIntoDTD(body, dtd, true, chain); err != nil {
			return xml, err
		}
	case "IGNORE":
		// body is discarded unread
	default:
		return xml, wfErrorf(xml, "unrecognized conditional section keyword %q", keyword)
	}
	return remainder, nil
}

// findConditionalSectionBody scans for the `]]>` that balances the `<![`
// just consumed, accounting for nested conditional sections so an IGNOREd
// section's own nested `<![...]]>` markup does not terminate it early.
func findConditionalSectionBody(xml string) (body string, remainder string, err error) {
	depth := 1
	i := 0
	for i < len(xml) {
		switch {
		case strings.HasPrefix(xml[i:], "<!["):
			depth++
			i += 3
		case strings.HasPrefix(xml[i:], "]]>"):
			depth--
			if depth == 0 {
				return xml[:i], xml[i+3:], nil
			}
			i += 3
		default:
			i++
		}
	}
	return "", xml, wfErrorf(xml, "unterminated conditional section")
}
