package xml

import (
	"fmt"
	"strings"
)

const sourceExcerptLimit = 100

// excerpt truncates source so error messages stay readable when the
// remaining document is huge.
func excerpt(source string) string {
	r := []rune(source)
	if len(r) <= sourceExcerptLimit {
		return string(r)
	}
	return string(r[:sourceExcerptLimit]) + "..."
}

// WellFormednessError reports a violation of an XML 1.0 well-formedness
// constraint: a construct the grammar or a WFC rejects outright.
type WellFormednessError struct {
	Message string
	Source  string
}

func (e *WellFormednessError) Error() string {
	if e.Source == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q", e.Message, excerpt(e.Source))
}

func wfErrorf(source, format string, args ...interface{}) error {
	return &WellFormednessError{Message: fmt.Sprintf(format, args...), Source: source}
}

// DisallowedCharacterError reports a rune that does not belong to the named
// grammar class (Name, Char, Nmtoken, PubidChar, EncName) at the point a
// token was being recognized. It re-scans the offending sequence to locate
// the precise rune.
type DisallowedCharacterError struct {
	Sequence  string
	Where     string
	ConformsTo string
	Source    string
}

func (e *DisallowedCharacterError) Error() string {
	r, ok := firstDisallowedRune(e.Sequence, e.ConformsTo)
	if !ok {
		return fmt.Sprintf("%s: disallowed character in %s (expected %s): %q",
			excerpt(e.Source), e.Where, e.ConformsTo, e.Sequence)
	}
	return fmt.Sprintf("%s: character %q not allowed in %s (expected %s): %q",
		excerpt(e.Source), r, e.Where, e.ConformsTo, e.Sequence)
}

func newDisallowedCharacterError(sequence, where, conformsTo, source string) error {
	return &DisallowedCharacterError{Sequence: sequence, Where: where, ConformsTo: conformsTo, Source: source}
}

// firstDisallowedRune finds the first rune in seq that does not belong to
// the named class, scanning left to right. The first rune of a Name is
// special-cased, since NameStartChar is stricter than NameChar.
func firstDisallowedRune(seq, class string) (rune, bool) {
	runes := []rune(seq)
	for i, r := range runes {
		var ok bool
		switch class {
		case "name":
			if i == 0 {
				ok = IsNameStartChar(r)
			} else {
				ok = IsNameChar(r)
			}
		case "nmtoken":
			ok = IsNameChar(r)
		case "char":
			ok = IsChar(r)
		case "pubid":
			ok = IsPubidChar(r)
		case "encoding":
			if i == 0 {
				ok = encNameStartRE.MatchString(string(r))
			} else {
				ok = encNameCharRE.MatchString(string(r))
			}
		default:
			ok = true
		}
		if !ok {
			return r, true
		}
	}
	return 0, false
}

// EncodingError reports a failure decoding a document or external entity
// body against its declared or detected character encoding.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("encoding error: %s", e.Err)
	}
	return fmt.Sprintf("encoding error reading %s: %s", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// requireEOF rejects trailing input after a grammar production that must
// consume the entire remaining document (the root element's closing tag,
// trailing misc).
func requireEOF(xml, context string) error {
	if strings.TrimSpace(xml) != "" {
		return wfErrorf(xml, "unexpected trailing content after %s", context)
	}
	return nil
}
