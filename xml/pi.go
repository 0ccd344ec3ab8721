package xml

import "strings"

// parseProcessingInstruction parses `<?target data?>` (xml positioned at
// the leading "<?"). The PI target must not be the literal "xml" in any
// case; the check lives here rather than in the Name grammar, since
// element names carry no such restriction. PI data is stored verbatim —
// entity and character references in it are never expanded.
func parseProcessingInstruction(xml string) (*ProcessingInstruction, string, error) {
	rest := xml[len("<?"):]

	targetEnd := findNameEnd(rest)
	if targetEnd == 0 {
		return nil, xml, wfErrorf(xml, "expected processing instruction target")
	}
	target := rest[:targetEnd]
	if len(target) == 3 && strings.EqualFold(target, "xml") {
		return nil, xml, wfErrorf(xml, `processing instruction target must not be "xml"`)
	}
	rest = rest[targetEnd:]

	if strings.HasPrefix(rest, "?>") {
		return &ProcessingInstruction{Target: target}, rest[2:], nil
	}

	loc := Whitespace.FindStringIndex(rest)
	if loc == nil {
		return nil, xml, wfErrorf(xml, "expected whitespace or '?>' after processing instruction target")
	}
	rest = rest[loc[1]:]

	end := strings.Index(rest, "?>")
	if end < 0 {
		return nil, xml, wfErrorf(xml, "unterminated processing instruction")
	}
	data := rest[:end]
	if !CharSequence.MatchString(data) {
		return nil, xml, newDisallowedCharacterError(data, "processing instruction data", "char", xml)
	}
	return &ProcessingInstruction{Target: target, Data: &data}, rest[end+2:], nil
}
