package xml

import (
	"bytes"
	"fmt"
	"sort"
)

// Canonicalize renders doc in a canonical form suitable for equivalence
// comparisons across parses: a DOCTYPE-with-notations preamble (only when
// notations were declared), leading processing instructions, the root
// element with attributes sorted alphabetically and every element emitted
// with an explicit end tag (never the self-closing form), and no entity
// or character references surviving (all normalization has already
// happened).
func Canonicalize(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if doc.Root == nil {
		return nil, fmt.Errorf("cannot canonicalize a document with no root element")
	}

	if len(doc.Notations) > 0 {
		buf.WriteString("<!DOCTYPE ")
		buf.WriteString(doc.Root.Name)
		buf.WriteString(" [")
		for _, name := range sortedNotationNames(doc.Notations) {
			writeNotationCanonical(&buf, doc.Notations[name])
		}
		buf.WriteString("\n]>\n")
	}

	for _, pi := range doc.LeadingPIs {
		writePICanonical(&buf, pi)
	}

	writeElementCanonical(&buf, doc.Root)
	return buf.Bytes(), nil
}

func sortedNotationNames(notations map[string]*Notation) []string {
	names := make([]string, 0, len(notations))
	for name := range notations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// writeNotationCanonical emits one `<!NOTATION name PUBLIC 'p' 's'>` (or
// the PUBLIC-only / SYSTEM forms) line inside the DOCTYPE preamble.
func writeNotationCanonical(buf *bytes.Buffer, n *Notation) {
	buf.WriteString("\n<!NOTATION ")
	buf.WriteString(n.Name)
	switch {
	case n.PublicID != "" && n.SystemURI != "":
		fmt.Fprintf(buf, " PUBLIC '%s' '%s'>", n.PublicID, n.SystemURI)
	case n.PublicID != "":
		fmt.Fprintf(buf, " PUBLIC '%s'>", n.PublicID)
	default:
		fmt.Fprintf(buf, " SYSTEM '%s'>", n.SystemURI)
	}
}

func writeElementCanonical(buf *bytes.Buffer, elem *Element) {
	buf.WriteByte('<')
	buf.WriteString(elem.Name)

	for _, name := range elem.Attributes.SortedNames() {
		value, _ := elem.Attributes.Get(name)
		buf.WriteByte(' ')
		buf.WriteString(name)
		buf.WriteString(`="`)
		buf.WriteString(escapeAttr(value))
		buf.WriteString(`"`)
	}
	buf.WriteByte('>')

	for _, node := range elem.Content {
		switch n := node.(type) {
		case *Element:
			writeElementCanonical(buf, n)
		case *Text:
			buf.WriteString(escapeText(n.Value))
		case *ProcessingInstruction:
			writePICanonical(buf, n)
		}
	}

	buf.WriteString("</")
	buf.WriteString(elem.Name)
	buf.WriteByte('>')
}

// writePICanonical emits `<?target data?>`, always with a single space
// after the target even when Data is nil (empty data is then represented
// by the empty string between the space and '?>').
func writePICanonical(buf *bytes.Buffer, pi *ProcessingInstruction) {
	buf.WriteString("<?")
	buf.WriteString(pi.Target)
	buf.WriteByte(' ')
	if pi.Data != nil {
		buf.WriteString(*pi.Data)
	}
	buf.WriteString("?>")
}

// escapeText and escapeAttr both escape the canonical-form character set
// `& < > " #x9 #xA #xD` to `&amp; &lt; &gt; &quot; &#9; &#10; &#13;`
// (decimal numeric character references). Text and attribute values share
// one escape table in the canonical form.
func escapeText(s string) string {
	return escapeCanonical(s)
}

func escapeAttr(s string) string {
	return escapeCanonical(s)
}

func escapeCanonical(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\t':
			buf.WriteString("&#9;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
