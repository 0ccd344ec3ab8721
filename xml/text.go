package xml

import "strings"

// scanText accumulates character data starting at the beginning of xml,
// expanding character references and merging CDATA sections verbatim as
// it goes, and stops at the first construct the content-loop dispatcher
// in element.go must handle itself: a general-entity reference (`&Name;`),
// a child element or comment/PI start (`<` not followed by `![CDATA[`),
// or end of input. It returns the accumulated text and the unconsumed
// remainder.
func scanText(xml string) (text string, remainder string, err error) {
	var out strings.Builder
	rest := xml

	for {
		if len(rest) == 0 {
			return out.String(), rest, nil
		}

		idx := strings.IndexAny(rest, "<&]")
		if idx < 0 {
			if !CharSequence.MatchString(rest) {
				return "", xml, newDisallowedCharacterError(rest, "character data", "char", xml)
			}
			out.WriteString(rest)
			return out.String(), "", nil
		}
		if chunk := rest[:idx]; !CharSequence.MatchString(chunk) {
			return "", xml, newDisallowedCharacterError(chunk, "character data", "char", xml)
		}
		out.WriteString(rest[:idx])
		rest = rest[idx:]

		switch rest[0] {
		case '<':
			if strings.HasPrefix(rest, "<![CDATA[") {
				cdata, r, err := parseCDATASection(rest)
				if err != nil {
					return "", xml, err
				}
				out.WriteString(cdata)
				rest = r
				continue
			}
			return out.String(), rest, nil

		case '&':
			if strings.HasPrefix(rest, "&#") {
				loc := Reference.FindStringIndex(rest)
				if loc == nil || loc[0] != 0 {
					return "", xml, wfErrorf(rest, "malformed character reference")
				}
				r, err := parseCharacterReference(rest[:loc[1]], xml)
				if err != nil {
					return "", xml, err
				}
				out.WriteRune(r)
				rest = rest[loc[1]:]
				continue
			}
			return out.String(), rest, nil

		case ']':
			if strings.HasPrefix(rest, "]]>") {
				return "", xml, wfErrorf(rest, `"]]>" must not appear in character data outside a CDATA section`)
			}
			out.WriteByte(']')
			rest = rest[1:]
			continue
		}
	}
}

// parseCDATASection parses `<![CDATA[ ... ]]>` and returns its literal
// content with no reference expansion, plus the remainder after the
// closing delimiter.
func parseCDATASection(xml string) (string, string, error) {
	start := len("<![CDATA[")
	end := strings.Index(xml[start:], "]]>")
	if end < 0 {
		return "", xml, wfErrorf(xml, "unterminated CDATA section")
	}
	content := xml[start : start+end]
	if !CharSequence.MatchString(content) {
		return "", xml, newDisallowedCharacterError(content, "CDATA section", "char", xml)
	}
	return content, xml[start+end+3:], nil
}
