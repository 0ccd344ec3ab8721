package xml

import (
	"path/filepath"
	"strings"
)

// parseEntityDeclaration parses `<!ENTITY [%] Name EntityDef>` (xml
// positioned immediately after the "<!ENTITY" keyword) and returns the
// declared Entity plus the remainder of xml after the closing '>'.
// externalSubset records whether this declaration was read from the
// external subset, which controls whether its internal value may itself
// reference parameter entities.
func parseEntityDeclaration(xml string, dtd *DTD, externalSubset bool) (*Entity, string, error) {
	rest := xml
	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after ENTITY")
	}
	rest = rest[loc[1]:]

	entityType := GeneralEntity
	if strings.HasPrefix(rest, "%") {
		entityType = ParameterEntity
		rest = rest[1:]
		ploc := Whitespace.FindStringIndex(rest)
		if ploc == nil {
			return nil, xml, wfErrorf(xml, "expected whitespace after '%%' in parameter entity declaration")
		}
		rest = rest[ploc[1]:]
	}

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected entity name")
	}
	name := rest[:nameEnd]
	rest = rest[nameEnd:]

	wloc := Whitespace.FindStringIndex(rest)
	if wloc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after entity name")
	}
	rest = rest[wloc[1]:]

	entity := &Entity{Name: name, Type: entityType}

	if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
		value, r, err := parseQuotedLiteral(rest)
		if err != nil {
			return nil, xml, err
		}
		rest = r
		entity.External = false
		normalized, err := normalizeEntityValue(value, dtd, externalSubset, nil)
		if err != nil {
			return nil, xml, err
		}
		if !CharSequence.MatchString(normalized) {
			return nil, xml, newDisallowedCharacterError(normalized, "entity value", "char", xml)
		}
		entity.ExpansionText = &normalized
		entity.Parsed = true
	} else {
		id, r, err := parseExternalReference(rest, entityType == GeneralEntity, true)
		if err != nil {
			return nil, xml, err
		}
		rest = r
		entity.External = true
		entity.PublicID = id.PublicID
		entity.SystemURI = id.SystemURI
		entity.Notation = id.Notation
		entity.Parsed = id.Notation == ""

		if entityType == ParameterEntity && !entity.Parsed {
			return nil, xml, wfErrorf(xml, "parameter entity %q must not be unparsed", name)
		}

		if entity.Parsed {
			content, resolvedPath, ferr := fetchExternalContent(id, dtd.FileRoot, dtd.cache)
			if ferr == nil {
				content, declaredEncoding := parseTextDeclaration(canonicalizeLineEndings(content))
				entity.Encoding = declaredEncoding
				entity.Root = filepath.Dir(resolvedPath)
				entity.ExpansionText = &content
			}
		}
	}

	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ">") {
		return nil, xml, wfErrorf(rest, "expected '>' to close ENTITY declaration")
	}
	return entity, rest[1:], nil
}

// parseQuotedLiteral reads a single- or double-quoted literal value,
// returning its raw (un-normalized) contents.
func parseQuotedLiteral(xml string) (string, string, error) {
	if len(xml) == 0 || (xml[0] != '"' && xml[0] != '\'') {
		return "", xml, wfErrorf(xml, "expected quoted literal")
	}
	quote := xml[0]
	end := strings.IndexByte(xml[1:], quote)
	if end < 0 {
		return "", xml, wfErrorf(xml, "unterminated quoted literal")
	}
	return xml[1 : 1+end], xml[2+end:], nil
}

// normalizeEntityValue expands character references immediately and
// leaves general-entity references (`&name;`) untouched for expansion at
// point of use, expanding parameter-entity references only when external
// is true (an internal-subset entity value must not contain a bare `%`).
func normalizeEntityValue(value string, dtd *DTD, external bool, chain referenceChain) (string, error) {
	var out strings.Builder
	rest := value
	for {
		loc := Reference.FindStringIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		ref := rest[loc[0]:loc[1]]
		before := rest[:loc[0]]
		if strings.ContainsAny(before, "&%") {
			return "", wfErrorf(value, "unescaped '&' or '%%' in entity value")
		}
		out.WriteString(before)

		switch {
		case isCharRef(ref):
			r, err := parseCharacterReference(ref, value)
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
		case strings.HasPrefix(ref, "%"):
			if !external {
				return "", wfErrorf(value, "parameter entity reference not allowed in internal-subset entity value")
			}
			name := strings.TrimSuffix(strings.TrimPrefix(ref, "%"), ";")
			if chain.contains(name) {
				return "", wfErrorf(value, "recursive parameter entity reference %q", name)
			}
			pe, ok := dtd.ParameterEntities[name]
			if !ok {
				return "", wfErrorf(value, "reference to undeclared parameter entity %q", name)
			}
			if pe.ExpansionText == nil {
				return "", wfErrorf(value, "parameter entity %q has no available expansion text", name)
			}
			expanded, err := normalizeEntityValue(*pe.ExpansionText, dtd, external, chain.push(name))
			if err != nil {
				return "", err
			}
			out.WriteString(expanded)
		default:
			// General entity reference: left untouched, expanded lazily
			// wherever this entity's text is used.
			out.WriteString(ref)
		}
		rest = rest[loc[1]:]
	}
	if strings.ContainsAny(rest, "&%") {
		return "", wfErrorf(value, "unescaped '&' or '%%' in entity value")
	}
	return out.String(), nil
}
