package xml

import (
	"path/filepath"
	"strings"
)

// NewDTD returns a DTD seeded with the five predefined general entities
// every XML document has even without a DOCTYPE: lt, gt, amp, apos, quot.
// The seeds re-enter entity parsing on literal declaration strings rather
// than hand-building Entity values, so the predefined entities go through
// exactly the same normalization path as any declared entity.
func NewDTD(fileRoot string) *DTD {
	dtd := &DTD{
		FileRoot:               fileRoot,
		GeneralEntities:        make(map[string]*Entity),
		ParameterEntities:      make(map[string]*Entity),
		Notations:              make(map[string]*Notation),
		ElementDeclarations:    make(map[string]*ElementDeclaration),
		AttributeDeclarations:  make(map[string]map[string]*AttributeDeclaration),
		AttributeOrder:         make(map[string][]string),
		cache:                  newURICache(),
	}
	for _, decl := range []string{
		`<!ENTITY lt "&#38;#60;">`,
		`<!ENTITY gt "&#62;">`,
		`<!ENTITY amp "&#38;#38;">`,
		`<!ENTITY apos "&#39;">`,
		`<!ENTITY quot "&#34;">`,
	} {
		entity, _, err := parseEntityDeclaration(decl[len("<!ENTITY"):], dtd, false)
		if err != nil {
			panic("internal error seeding predefined entity: " + err.Error())
		}
		dtd.GeneralEntities[entity.Name] = entity
	}
	return dtd
}

// parseDoctype parses a `<!DOCTYPE ...>` declaration (xml positioned just
// after "<!DOCTYPE"), populating and returning a DTD: root name, optional
// external identifier, optional internal subset in brackets, external
// subset fetched only after the internal subset (if any) has been read,
// trailing '>' required.
func parseDoctype(xml, fileRoot string) (*DTD, string, error) {
	rest := xml
	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace after DOCTYPE")
	}
	rest = rest[loc[1]:]

	nameEnd := findNameEnd(rest)
	if nameEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected root element name in DOCTYPE")
	}
	rootName := rest[:nameEnd]
	rest = rest[nameEnd:]

	dtd := NewDTD(fileRoot)
	dtd.RootName = rootName

	var extID ExternalID
	haveExtID := false
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if strings.HasPrefix(trimmed, "SYSTEM") || strings.HasPrefix(trimmed, "PUBLIC") {
		id, r, err := parseExternalReference(trimmed, false, true)
		if err != nil {
			return nil, xml, err
		}
		extID, haveExtID, rest = id, true, r
	}

	rest = strings.TrimLeft(rest, " \t\r\n")
	if strings.HasPrefix(rest, "[") {
		rest = rest[1:]
		r, err := parseSubsetIntoDTD(rest, dtd, false, nil)
		if err != nil {
			return nil, xml, err
		}
		rest = strings.TrimLeft(r, " \t\r\n")
		if !strings.HasPrefix(rest, "]") {
			return nil, xml, wfErrorf(rest, "expected ']' to close internal DTD subset")
		}
		rest = rest[1:]
		rest = strings.TrimLeft(rest, " \t\r\n")
	}

	if haveExtID {
		if err := fetchExternalSubset(extID, dtd); err != nil {
			return nil, xml, err
		}
	}

	if !strings.HasPrefix(rest, ">") {
		return nil, xml, wfErrorf(rest, "expected '>' to close DOCTYPE declaration")
	}
	return dtd, rest[1:], nil
}

// fetchExternalSubset resolves and parses a DOCTYPE's external subset,
// trying the public identifier as a location before the system URI. A
// fetch failure is fatal here, since the subset is referenced by the
// DOCTYPE being parsed.
func fetchExternalSubset(id ExternalID, dtd *DTD) error {
	content, resolvedPath, err := fetchExternalContent(id, dtd.FileRoot, dtd.cache)
	if err != nil {
		return err
	}
	content, _ = parseTextDeclaration(canonicalizeLineEndings(content))
	prevRoot := dtd.FileRoot
	dtd.FileRoot = filepath.Dir(resolvedPath)
	_, err = parseSubsetIntoDTD(content, dtd, true, nil)
	dtd.FileRoot = prevRoot
	return err
}

// canonicalizeLineEndings applies the mandatory XML line-ending
// normalization (#xD#xA and bare #xD both become #xA). parseDocument
// applies it once to the whole document before parsing, and the external
// fetch paths apply it to each fetched body before its text declaration
// is stripped.
func canonicalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}
