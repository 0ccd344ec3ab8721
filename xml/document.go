package xml

import (
	"path/filepath"
	"strings"
)

// ParseString parses xml as a complete XML document and returns its
// well-formedness-checked, normalized in-memory representation. Line
// endings are canonicalized first (#xD#xA and bare #xD both become #xA),
// then the prolog, DOCTYPE, root element, and epilog are parsed in turn.
func ParseString(xml string) (*Document, error) {
	return parseDocument(xml, "")
}

// ParseFile reads path, decoding it as UTF-8 and falling back to UTF-16 on
// failure, then parses it as a complete document. Relative external
// identifiers resolve against the file's directory.
func ParseFile(path string) (*Document, error) {
	content, err := readFile(path, "")
	if err != nil {
		return nil, err
	}
	return parseDocument(content, filepath.Dir(path))
}

func parseDocument(xml string, fileRoot string) (*Document, error) {
	xml = canonicalizeLineEndings(xml)

	if trimmed := strings.TrimLeft(xml, " \t\n"); len(trimmed) < len(xml) && isXMLDeclStart(trimmed) {
		return nil, wfErrorf(xml, "whitespace is not allowed before the XML declaration")
	}

	doc := &Document{Version: "1.0"}
	rest := xml

	if isXMLDeclStart(rest) {
		r, err := parseXMLDeclaration(rest, doc)
		if err != nil {
			return nil, err
		}
		rest = r
	}

	leadingPIs, comments, r, err := parseMisc(rest)
	if err != nil {
		return nil, err
	}
	doc.LeadingPIs = leadingPIs
	_ = comments
	rest = r

	var dtd *DTD
	if strings.HasPrefix(rest, "<!DOCTYPE") {
		d, r2, err := parseDoctype(rest[len("<!DOCTYPE"):], fileRoot)
		if err != nil {
			return nil, err
		}
		dtd = d
		rest = r2

		moreP, _, r3, err := parseMisc(rest)
		if err != nil {
			return nil, err
		}
		doc.LeadingPIs = append(doc.LeadingPIs, moreP...)
		rest = r3
	} else {
		dtd = NewDTD(fileRoot)
	}

	root, r4, err := parseElement(rest, dtd, nil)
	if err != nil {
		return nil, err
	}
	doc.Root = root
	rest = r4

	trailingPIs, _, r5, err := parseMisc(rest)
	if err != nil {
		return nil, err
	}
	doc.TrailingPIs = trailingPIs
	rest = r5

	if err := requireEOF(rest, "document"); err != nil {
		return nil, err
	}

	doc.dtd = dtd
	doc.Entities = dtd.GeneralEntities
	doc.Notations = dtd.Notations
	doc.DTDProcessingInstructions = dtd.ProcessingInstructions

	return doc, nil
}

// parseMisc consumes the Misc* grammar production: any mixture of
// whitespace, processing instructions, and comments. It returns the PIs
// encountered (comments are dropped) and the unconsumed remainder.
func parseMisc(xml string) (pis []*ProcessingInstruction, comments int, remainder string, err error) {
	rest := xml
	for {
		rest = OptionalWhitespace.ReplaceAllString(rest, "")
		switch {
		case strings.HasPrefix(rest, "<?"):
			pi, r, perr := parseProcessingInstruction(rest)
			if perr != nil {
				return pis, comments, xml, perr
			}
			pis = append(pis, pi)
			rest = r
		case strings.HasPrefix(rest, "<!--"):
			r, cerr := parseComment(rest)
			if cerr != nil {
				return pis, comments, xml, cerr
			}
			comments++
			rest = r
		default:
			return pis, comments, rest, nil
		}
	}
}

// parseXMLDeclaration parses `<?xml VersionInfo EncodingDecl?
// SDDecl? ?>` into doc's Version/Encoding/Standalone fields. The three
// fields must appear in exactly that order.
func parseXMLDeclaration(xml string, doc *Document) (string, error) {
	rest := xml[len("<?xml"):]

	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return xml, wfErrorf(xml, "expected whitespace after '<?xml'")
	}
	rest = rest[loc[1]:]

	if !strings.HasPrefix(rest, "version") {
		return xml, wfErrorf(rest, "expected version info in XML declaration")
	}
	rest = rest[len("version"):]
	eqLoc := Eq.FindStringIndex(rest)
	if eqLoc == nil {
		return xml, wfErrorf(rest, "expected '=' after 'version'")
	}
	rest = rest[eqLoc[1]:]
	version, r, err := parseQuotedLiteral(rest)
	if err != nil {
		return xml, err
	}
	if !strings.HasPrefix(version, "1.") || !isAllDigits(version[2:]) {
		return xml, wfErrorf(xml, "unsupported XML version %q", version)
	}
	doc.Version = version
	rest = r

	wloc := Whitespace.FindStringIndex(rest)
	if wloc != nil {
		after := rest[wloc[1]:]
		if strings.HasPrefix(after, "encoding") {
			rest = after[len("encoding"):]
			eqLoc := Eq.FindStringIndex(rest)
			if eqLoc == nil {
				return xml, wfErrorf(rest, "expected '=' after 'encoding'")
			}
			rest = rest[eqLoc[1]:]
			enc, r2, err := parseQuotedLiteral(rest)
			if err != nil {
				return xml, err
			}
			if !EncName.MatchString(enc) {
				return xml, newDisallowedCharacterError(enc, "XML declaration encoding", "encoding", xml)
			}
			doc.Encoding = enc
			rest = r2
		}
	}

	wloc2 := Whitespace.FindStringIndex(rest)
	if wloc2 != nil {
		after := rest[wloc2[1]:]
		if strings.HasPrefix(after, "standalone") {
			rest = after[len("standalone"):]
			eqLoc := Eq.FindStringIndex(rest)
			if eqLoc == nil {
				return xml, wfErrorf(rest, "expected '=' after 'standalone'")
			}
			rest = rest[eqLoc[1]:]
			val, r2, err := parseQuotedLiteral(rest)
			if err != nil {
				return xml, err
			}
			if val != "yes" && val != "no" {
				return xml, wfErrorf(xml, `standalone must be "yes" or "no", got %q`, val)
			}
			yes := val == "yes"
			doc.Standalone = &yes
			rest = r2
		}
	}

	rest = OptionalWhitespace.ReplaceAllString(rest, "")
	if !strings.HasPrefix(rest, "?>") {
		return xml, wfErrorf(rest, "expected '?>' to close XML declaration")
	}
	return rest[2:], nil
}

// isXMLDeclStart reports whether xml begins with an XML declaration
// rather than an ordinary processing instruction whose target merely
// starts with "xml" (e.g. <?xmlfoo ...?>).
func isXMLDeclStart(xml string) bool {
	if !strings.HasPrefix(xml, "<?xml") {
		return false
	}
	if len(xml) == len("<?xml") {
		return true
	}
	switch xml[len("<?xml")] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
