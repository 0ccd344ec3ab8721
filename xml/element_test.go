package xml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseElement_SelfClosingForms(t *testing.T) {
	for _, input := range []string{`<r/>`, `<r />`} {
		elem, rest, err := parseElement(input, NewDTD(""), nil)
		require.NoError(t, err, input)
		require.Equal(t, "r", elem.Name)
		require.Empty(t, elem.Content)
		require.Empty(t, rest)
	}
}

func TestParseElement_NestedChildren(t *testing.T) {
	doc, err := ParseString(`<a><b><c/></b><b/></a>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 2)
	require.Equal(t, "b", doc.Root.Children[0].Name)
	require.Len(t, doc.Root.Children[0].Children, 1)
	require.Equal(t, "c", doc.Root.Children[0].Children[0].Name)
}

func TestParseElement_RepeatedAttributeIsIllFormed(t *testing.T) {
	_, err := ParseString(`<r a="1" a="2"/>`)
	require.Error(t, err)
}

func TestParseElement_AttributeQuoteStyles(t *testing.T) {
	doc, err := ParseString(`<r a='single' b="double"/>`)
	require.NoError(t, err)
	a, _ := doc.Root.Attributes.Get("a")
	b, _ := doc.Root.Attributes.Get("b")
	require.Equal(t, "single", a)
	require.Equal(t, "double", b)
}

func TestParseElement_AttributeOrderPreserved(t *testing.T) {
	doc, err := ParseString(`<r z="1" a="2" m="3"/>`)
	require.NoError(t, err)
	require.Equal(t, []string{"z", "a", "m"}, doc.Root.Attributes.Names())
}

func TestParseElement_PredefinedLtInAttributeValue(t *testing.T) {
	doc, err := ParseString(`<r a="&lt;"/>`)
	require.NoError(t, err)
	a, _ := doc.Root.Attributes.Get("a")
	require.Equal(t, "<", a)
}

func TestParseElement_LiteralLtInAttributeValueIsIllFormed(t *testing.T) {
	_, err := ParseString(`<r a="a < b"/>`)
	require.Error(t, err)
}

func TestParseElement_EntityExpandingToLtInAttributeValueIsIllFormed(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE r [<!ENTITY e "a <tag> b">]><r a="&e;"/>`)
	require.Error(t, err)
}

func TestParseElement_PercentIsOrdinaryInAttributeValues(t *testing.T) {
	doc, err := ParseString(`<r a="100%" b="50%; done"/>`)
	require.NoError(t, err)
	a, _ := doc.Root.Attributes.Get("a")
	b, _ := doc.Root.Attributes.Get("b")
	require.Equal(t, "100%", a)
	require.Equal(t, "50%; done", b)
}

func TestParseElement_UndeclaredEntityInAttributeValue(t *testing.T) {
	_, err := ParseString(`<r a="&nosuch;"/>`)
	require.Error(t, err)
}

func TestParseElement_UnparsedEntityInAttributeValueIsIllFormed(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE r [
  <!NOTATION gif SYSTEM "viewer.exe">
  <!ENTITY pic SYSTEM "pic.gif" NDATA gif>
]>
<r a="&pic;"/>`)
	require.Error(t, err)
}

func TestParseElement_EntityExpandsToMarkupInContent(t *testing.T) {
	doc, err := ParseString(`<!DOCTYPE r [<!ENTITY e "<b>hi</b>">]><r>&e;</r>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 1)
	require.Equal(t, "b", doc.Root.Children[0].Name)
	require.Equal(t, "hi", doc.Root.Children[0].Text[0].Value)
}

func TestParseElement_EndTagMustNotCrossEntityBoundary(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE r [<!ENTITY open "<b>unclosed">]><r>&open;</b></r>`)
	require.Error(t, err)
}

func TestParseElement_EntityRecursionThroughContent(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE r [<!ENTITY e "pre &e; post">]><r>&e;</r>`)
	require.Error(t, err)
}

func TestParseElement_PIInContentRetained(t *testing.T) {
	doc, err := ParseString(`<r>a<?p d?>b</r>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.ProcessingInstructions, 1)
	require.Equal(t, "p", doc.Root.ProcessingInstructions[0].Target)
	require.Len(t, doc.Root.Content, 3)
}

func TestParseElement_EndTagTrailingWhitespaceAllowed(t *testing.T) {
	doc, err := ParseString("<r>x</r  >")
	require.NoError(t, err)
	require.Equal(t, "x", doc.Root.Text[0].Value)
}

func TestParseElement_MissingWhitespaceBetweenAttributes(t *testing.T) {
	_, err := ParseString(`<r a="1"b="2"/>`)
	require.Error(t, err)
}

func TestNormalizeAttributeValue_CDATAKeepsInnerSpacing(t *testing.T) {
	dtd := NewDTD("")
	out, err := normalizeAttributeValue("  a \t b  ", dtd, true, nil)
	require.NoError(t, err)
	require.Equal(t, "  a   b  ", out)
}

func TestNormalizeAttributeValue_TokenizedTrimsAndCollapses(t *testing.T) {
	dtd := NewDTD("")
	out, err := normalizeAttributeValue("  a \t b  ", dtd, false, nil)
	require.NoError(t, err)
	require.Equal(t, "a b", out)
}
