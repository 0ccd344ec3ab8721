package xml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSubsetIntoDTD_DispatchesDeclarations(t *testing.T) {
	dtd := NewDTD("")
	rest, err := parseSubsetIntoDTD(`
  <!ENTITY e "x">
  <!NOTATION n SYSTEM "v.exe">
  <!ELEMENT r EMPTY>
  <!ATTLIST r a CDATA #IMPLIED>
  <!-- a comment -->
  <?order keep?>
`, dtd, true, nil)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Contains(t, dtd.GeneralEntities, "e")
	require.Contains(t, dtd.Notations, "n")
	require.Contains(t, dtd.ElementDeclarations, "r")
	require.Contains(t, dtd.AttributeDeclarations["r"], "a")
	require.Len(t, dtd.ProcessingInstructions, 1)
	require.Equal(t, "order", dtd.ProcessingInstructions[0].Target)
}

func TestParseSubsetIntoDTD_InternalStopsAtBracket(t *testing.T) {
	dtd := NewDTD("")
	rest, err := parseSubsetIntoDTD(`<!ENTITY e "x">]>`, dtd, false, nil)
	require.NoError(t, err)
	require.Equal(t, "]>", rest)
}

func TestParseSubsetIntoDTD_TopLevelPEReference(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["decls"] = &Entity{
		Name: "decls", Type: ParameterEntity,
		ExpansionText: strPtr(`<!ENTITY a "x"><!ENTITY b "y">`),
	}
	_, err := parseSubsetIntoDTD(`%decls;`, dtd, true, nil)
	require.NoError(t, err)
	require.Contains(t, dtd.GeneralEntities, "a")
	require.Contains(t, dtd.GeneralEntities, "b")
}

func TestParseSubsetIntoDTD_TopLevelPERejectedInInternalSubset(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["decls"] = &Entity{
		Name: "decls", Type: ParameterEntity,
		ExpansionText: strPtr(`<!ENTITY a "x">`),
	}
	_, err := parseSubsetIntoDTD(`%decls;`, dtd, false, nil)
	require.Error(t, err)
}

func TestParseSubsetIntoDTD_PEMustExpandToCompleteDeclarations(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["broken"] = &Entity{
		Name: "broken", Type: ParameterEntity,
		ExpansionText: strPtr(`<!ENTITY a "x"> ] trailing`),
	}
	_, err := parseSubsetIntoDTD(`%broken;`, dtd, true, nil)
	require.Error(t, err)
}

func TestParseSubsetIntoDTD_RecursivePEIsIllFormed(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["loop"] = &Entity{
		Name: "loop", Type: ParameterEntity,
		ExpansionText: strPtr(`%loop;`),
	}
	_, err := parseSubsetIntoDTD(`%loop;`, dtd, true, nil)
	require.Error(t, err)
}

func TestConditionalSection_Include(t *testing.T) {
	dtd := NewDTD("")
	rest, err := parseSubsetIntoDTD(`<![INCLUDE[<!ENTITY a "x">]]>`, dtd, true, nil)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Contains(t, dtd.GeneralEntities, "a")
}

func TestConditionalSection_IgnoreSkipsBodyIncludingNestedSections(t *testing.T) {
	dtd := NewDTD("")
	_, err := parseSubsetIntoDTD(`<![IGNORE[<!ENTITY a "x"><![INCLUDE[<!ENTITY b "y">]]>]]><!ENTITY c "z">`, dtd, true, nil)
	require.NoError(t, err)
	require.NotContains(t, dtd.GeneralEntities, "a")
	require.NotContains(t, dtd.GeneralEntities, "b")
	require.Contains(t, dtd.GeneralEntities, "c")
}

func TestConditionalSection_KeywordViaParameterEntity(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["kw"] = &Entity{Name: "kw", Type: ParameterEntity, ExpansionText: strPtr("INCLUDE")}
	_, err := parseSubsetIntoDTD(`<![%kw;[<!ENTITY a "x">]]>`, dtd, true, nil)
	require.NoError(t, err)
	require.Contains(t, dtd.GeneralEntities, "a")
}

func TestConditionalSection_RejectedInInternalSubset(t *testing.T) {
	_, err := ParseString(`<!DOCTYPE r [<![INCLUDE[<!ENTITY a "x">]]>]><r/>`)
	require.Error(t, err)
}

func TestConditionalSection_Unterminated(t *testing.T) {
	dtd := NewDTD("")
	_, err := parseSubsetIntoDTD(`<![INCLUDE[<!ENTITY a "x">`, dtd, true, nil)
	require.Error(t, err)
}

func TestParseSubsetIntoDTD_UnrecognizedMarkup(t *testing.T) {
	dtd := NewDTD("")
	_, err := parseSubsetIntoDTD(`<!WRONG thing>`, dtd, true, nil)
	require.Error(t, err)
}
