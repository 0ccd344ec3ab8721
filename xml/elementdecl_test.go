package xml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestParseElementDeclaration_ContentModelTree deep-compares the whole
// Particle tree built for a children content model, rather than asserting
// field-by-field.
func TestParseElementDeclaration_ContentModelTree(t *testing.T) {
	dtd := NewDTD("")
	decl, rest, err := parseElementDeclaration(` person (name,(email|phone)*,address?)>tail`, dtd, false)
	require.NoError(t, err)
	require.Equal(t, "tail", rest)
	require.Equal(t, ContentTypeChildren, decl.Type)

	want := Sequence{
		Items: []Particle{
			Leaf{Name: "name"},
			Choice{
				Items:       []Particle{Leaf{Name: "email"}, Leaf{Name: "phone"}},
				Cardinality: CardinalityZeroPlus,
			},
			Leaf{Name: "address", Cardinality: CardinalityOptional},
		},
	}
	if diff := cmp.Diff(want, decl.Content); diff != "" {
		t.Fatalf("content model mismatch (-want +got):\n%s", diff)
	}
}

func TestParseElementDeclaration_EmptyAndAny(t *testing.T) {
	dtd := NewDTD("")
	empty, _, err := parseElementDeclaration(` br EMPTY>`, dtd, false)
	require.NoError(t, err)
	require.Equal(t, ContentTypeEmpty, empty.Type)

	any, _, err := parseElementDeclaration(` div ANY>`, dtd, false)
	require.NoError(t, err)
	require.Equal(t, ContentTypeAny, any.Type)
}

func TestParseElementDeclaration_MixedWithNames(t *testing.T) {
	dtd := NewDTD("")
	decl, _, err := parseElementDeclaration(` p ( #PCDATA | b | i )*>`, dtd, false)
	require.NoError(t, err)
	require.Equal(t, ContentTypeMixed, decl.Type)
	require.Equal(t, []string{"b", "i"}, decl.Mixed)
}

func TestParseElementDeclaration_BarePCDATA(t *testing.T) {
	dtd := NewDTD("")
	decl, _, err := parseElementDeclaration(` p (#PCDATA)>`, dtd, false)
	require.NoError(t, err)
	require.Equal(t, ContentTypeMixed, decl.Type)
	require.Empty(t, decl.Mixed)
}

func TestParseElementDeclaration_MixedWithNamesRequiresStar(t *testing.T) {
	dtd := NewDTD("")
	_, _, err := parseElementDeclaration(` p (#PCDATA|b)>`, dtd, false)
	require.Error(t, err)
}

func TestParseElementDeclaration_MixedSeparatorsMustNotBeMixed(t *testing.T) {
	dtd := NewDTD("")
	_, _, err := parseElementDeclaration(` e (a,b|c)>`, dtd, false)
	require.Error(t, err)
}

func TestParseElementDeclaration_GroupCardinality(t *testing.T) {
	dtd := NewDTD("")
	decl, _, err := parseElementDeclaration(` e (a|b)+>`, dtd, false)
	require.NoError(t, err)
	want := Choice{
		Items:       []Particle{Leaf{Name: "a"}, Leaf{Name: "b"}},
		Cardinality: CardinalityOnePlus,
	}
	if diff := cmp.Diff(want, decl.Content); diff != "" {
		t.Fatalf("content model mismatch (-want +got):\n%s", diff)
	}
}

func TestParseElementDeclaration_ContentSpecFromParameterEntity(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["spec"] = &Entity{Name: "spec", Type: ParameterEntity, ExpansionText: strPtr("(a,b)")}
	decl, _, err := parseElementDeclaration(` e %spec;>`, dtd, true)
	require.NoError(t, err)
	require.Equal(t, ContentTypeChildren, decl.Type)
}

func TestParseElementDeclaration_PEInContentModelRejectedInInternalSubset(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["extra"] = &Entity{Name: "extra", Type: ParameterEntity, ExpansionText: strPtr("email")}
	_, _, err := parseElementDeclaration(` person (name,%extra;)>`, dtd, false)
	require.Error(t, err)
}

func TestParseElementDeclaration_MixedContentRejectsDuplicateNames(t *testing.T) {
	dtd := NewDTD("")
	_, _, err := parseElementDeclaration(` p (#PCDATA|b|b)*>`, dtd, false)
	require.Error(t, err)
}

func TestParseElementDeclaration_ParameterEntityInContentModel(t *testing.T) {
	dtd := NewDTD("")
	dtd.ParameterEntities["extra"] = &Entity{Name: "extra", Type: ParameterEntity, ExpansionText: strPtr("email")}
	decl, _, err := parseElementDeclaration(` person (name,%extra;,address)>`, dtd, true)
	require.NoError(t, err)

	want := Sequence{Items: []Particle{
		Leaf{Name: "name"}, Leaf{Name: "email"}, Leaf{Name: "address"},
	}}
	if diff := cmp.Diff(want, decl.Content); diff != "" {
		t.Fatalf("content model mismatch (-want +got):\n%s", diff)
	}
}
