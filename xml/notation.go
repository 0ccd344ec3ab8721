package xml

import "strings"

// parseNotationDeclaration parses `<!NOTATION Name (SystemLiteral|PublicID
// [SystemLiteral]) >` (xml positioned immediately after "<!NOTATION").
// A PUBLIC identifier may stand alone here, unlike in a DOCTYPE.
func parseNotationDeclaration(xml string) (*Notation, string, error) {
	rest := xml
	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after NOTATION")
	}
	rest = rest[loc[1]:]

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected notation name")
	}
	name := rest[:nameEnd]
	rest = rest[nameEnd:]

	wloc := Whitespace.FindStringIndex(rest)
	if wloc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after notation name")
	}
	rest = rest[wloc[1]:]

	id, r, err := parseExternalReference(rest, false, false)
	if err != nil {
		return nil, xml, err
	}
	rest = r

	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ">") {
		return nil, xml, wfErrorf(rest, "expected '>' to close NOTATION declaration")
	}
	return &Notation{Name: name, PublicID: id.PublicID, SystemURI: id.SystemURI}, rest[1:], nil
}
