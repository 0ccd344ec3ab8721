package xml

import "strings"

// parseComment parses `<!-- ... -->` (xml positioned at the leading "<!--")
// and returns the remainder of xml after the closing delimiter. Comment
// text is well-formedness-checked and then discarded; it is not retained
// as a ContentNode. Content must not contain "--", and the comment must
// not end in "--->" (the character immediately before the closing "-->"
// must not itself be '-').
func parseComment(xml string) (string, error) {
	end := strings.Index(xml, "-->")
	if end < 0 {
		return xml, wfErrorf(xml, "unterminated comment")
	}
	content := xml[len("<!--"):end]
	if strings.Contains(content, "--") {
		return xml, wfErrorf(xml, `comment content must not contain "--"`)
	}
	if strings.HasSuffix(content, "-") {
		return xml, wfErrorf(xml, `comment must not end with "--->"`)
	}
	if !CharSequence.MatchString(content) {
		return xml, newDisallowedCharacterError(content, "comment", "char", xml)
	}
	return xml[end+3:], nil
}
