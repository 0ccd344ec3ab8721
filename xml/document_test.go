package xml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseString_MinimalDocument(t *testing.T) {
	doc, err := ParseString(`<root/>`)
	require.NoError(t, err)
	require.Equal(t, "root", doc.Root.Name)
	require.Equal(t, "1.0", doc.Version)
}

func TestParseString_XMLDeclaration(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.1" encoding="UTF-8" standalone="yes"?><root/>`)
	require.NoError(t, err)
	require.Equal(t, "1.1", doc.Version)
	require.Equal(t, "UTF-8", doc.Encoding)
	require.NotNil(t, doc.Standalone)
	require.True(t, *doc.Standalone)
}

func TestParseString_RejectsWhitespaceBeforeDeclaration(t *testing.T) {
	_, err := ParseString(" <?xml version=\"1.0\"?><root/>")
	require.Error(t, err)
}

func TestParseString_LeadingAndTrailingMisc(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?>
<!-- leading comment -->
<?leading-pi data?>
<root/>
<?trailing-pi?>
`)
	require.NoError(t, err)
	require.Len(t, doc.LeadingPIs, 1)
	require.Equal(t, "leading-pi", doc.LeadingPIs[0].Target)
	require.Len(t, doc.TrailingPIs, 1)
	require.Equal(t, "trailing-pi", doc.TrailingPIs[0].Target)
}

func TestParseString_MismatchedEndTagIsIllFormed(t *testing.T) {
	_, err := ParseString(`<root><child></other></root>`)
	require.Error(t, err)
}

func TestParseString_RejectsTrailingContent(t *testing.T) {
	_, err := ParseString(`<root/><extra/>`)
	require.Error(t, err)
}

func TestParseString_PredefinedEntitiesAvailableWithoutDoctype(t *testing.T) {
	doc, err := ParseString(`<root>&lt;&amp;&gt;&apos;&quot;</root>`)
	require.NoError(t, err)
	require.Equal(t, `<&>'"`, doc.Root.Text[0].Value)
}

func TestParseString_LineEndingsCanonicalized(t *testing.T) {
	doc, err := ParseString("<root>line1\r\nline2\rline3</root>")
	require.NoError(t, err)
	require.Equal(t, "line1\nline2\nline3", doc.Root.Text[0].Value)
}

func TestParseString_DeclaredEntityExpandsInContent(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE root [
  <!ENTITY greeting "hello">
]>
<root>&greeting;, world</root>`)
	require.NoError(t, err)
	require.Equal(t, "hello, world", doc.Root.Text[0].Value)
}

func TestParseString_RecursiveEntityIsRejected(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE root [
  <!ENTITY a "&b;">
  <!ENTITY b "&a;">
]>
<root>&a;</root>`)
	require.Error(t, err)
}

func TestParseString_DefaultAttributeInjected(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE note [
  <!ELEMENT note (#PCDATA)>
  <!ATTLIST note priority CDATA "normal">
]>
<note>hi</note>`)
	require.NoError(t, err)
	priority, ok := doc.Root.Attributes.Get("priority")
	require.True(t, ok)
	require.Equal(t, "normal", priority)
}

func TestParseString_ExplicitAttributeOverridesDefault(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE note [
  <!ELEMENT note (#PCDATA)>
  <!ATTLIST note priority CDATA "normal">
]>
<note priority="high">hi</note>`)
	require.NoError(t, err)
	priority, _ := doc.Root.Attributes.Get("priority")
	require.Equal(t, "high", priority)
}

func TestParseString_FirstDeclarationWinsForEntities(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE root [
  <!ENTITY x "first">
  <!ENTITY x "second">
]>
<root>&x;</root>`)
	require.NoError(t, err)
	require.Equal(t, "first", doc.Root.Text[0].Value)
}

func TestParseString_AttributeValueWhitespaceNormalization(t *testing.T) {
	doc, err := ParseString("<root a=\"one\ttwo\nthree\"/>")
	require.NoError(t, err)
	v, _ := doc.Root.Attributes.Get("a")
	require.Equal(t, "one two three", v)
}

func TestParseString_DeclarationThenAttributes(t *testing.T) {
	doc, err := ParseString(`<?xml version='1.0'?><r a='1' b='2'/>`)
	require.NoError(t, err)
	require.Equal(t, "1.0", doc.Version)
	require.Equal(t, "r", doc.Root.Name)
	a, _ := doc.Root.Attributes.Get("a")
	b, _ := doc.Root.Attributes.Get("b")
	require.Equal(t, "1", a)
	require.Equal(t, "2", b)
	require.Empty(t, doc.LeadingPIs)
	require.Empty(t, doc.Encoding)
}

func TestParseString_RejectsUnsupportedVersion(t *testing.T) {
	for _, version := range []string{"2.0", "1", "1.", "one"} {
		_, err := ParseString(`<?xml version="` + version + `"?><r/>`)
		require.Error(t, err, version)
	}
}

func TestParseString_AcceptsOnePointAnything(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.9"?><r/>`)
	require.NoError(t, err)
	require.Equal(t, "1.9", doc.Version)
}

func TestParseString_RejectsBadStandalone(t *testing.T) {
	_, err := ParseString(`<?xml version="1.0" standalone="maybe"?><r/>`)
	require.Error(t, err)
}

func TestParseString_RejectsBadEncodingName(t *testing.T) {
	_, err := ParseString(`<?xml version="1.0" encoding="8bit"?><r/>`)
	require.Error(t, err)
}

func TestParseString_DeclarationFieldsMustBeOrdered(t *testing.T) {
	_, err := ParseString(`<?xml encoding="UTF-8" version="1.0"?><r/>`)
	require.Error(t, err)
}

func TestParseString_WhitespaceBeforeOrdinaryPIAllowed(t *testing.T) {
	doc, err := ParseString("\n<?xmlish data?>\n<r/>")
	require.NoError(t, err)
	require.Len(t, doc.LeadingPIs, 1)
	require.Equal(t, "xmlish", doc.LeadingPIs[0].Target)
}

func TestParseString_RejectsTextOutsideRoot(t *testing.T) {
	_, err := ParseString(`<r/>stray`)
	require.Error(t, err)
}

func TestParseString_DisallowedCharacterInContent(t *testing.T) {
	_, err := ParseString("<r>\x01</r>")
	require.Error(t, err)
}

func TestParseString_EntitySnapshotsExposed(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE r [
  <!ENTITY e "x">
  <!NOTATION n SYSTEM "v">
]>
<r/>`)
	require.NoError(t, err)
	require.Contains(t, doc.Entities, "e")
	require.Contains(t, doc.Entities, "amp")
	require.Contains(t, doc.Notations, "n")
}

func TestParseString_NonCDATAAttributeCollapsesSpaces(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE root [
  <!ELEMENT root EMPTY>
  <!ATTLIST root tokens NMTOKENS #IMPLIED>
]>
<root tokens="  a   b  "/>`)
	require.NoError(t, err)
	v, _ := doc.Root.Attributes.Get("tokens")
	require.Equal(t, "a b", v)
}
