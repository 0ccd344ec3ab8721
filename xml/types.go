package xml

// Document is the parsed, in-memory representation of a well-formed XML
// document: the root element plus everything the DTD recorded along the
// way. Nothing here is validated against the DTD's content models or
// attribute declarations; those are carried for callers that want them.
type Document struct {
	Version    string
	Encoding   string
	Standalone *bool

	Root *Element

	Entities                  map[string]*Entity
	Notations                 map[string]*Notation
	DTDProcessingInstructions []*ProcessingInstruction

	LeadingPIs  []*ProcessingInstruction
	TrailingPIs []*ProcessingInstruction

	dtd *DTD
}

// ContentNode is implemented by every node that can appear in an element's
// mixed content: child elements, text runs, and processing instructions.
// Comments are well-formedness-checked but dropped.
type ContentNode interface {
	contentNode()
}

// Element is a parsed XML element: its attributes (in declaration order)
// and its ordered content.
type Element struct {
	Name       string
	Attributes *OrderedAttrs
	Content    []ContentNode

	Children              []*Element
	Text                  []*Text
	ProcessingInstructions []*ProcessingInstruction
}

func (*Element) contentNode() {}

// Text is a run of character data, already normalized (character
// references expanded, line endings canonicalized).
type Text struct {
	Value string
}

func (*Text) contentNode() {}

// ProcessingInstruction is a parsed `<?target data?>` construct. Data is
// nil when the PI has no data segment (bare `<?target?>`).
type ProcessingInstruction struct {
	Target string
	Data   *string
}

func (*ProcessingInstruction) contentNode() {}

// EntityType distinguishes general entities (referenced with `&name;` from
// content or attribute values) from parameter entities (referenced with
// `%name;`, usable only within the DTD).
type EntityType int

const (
	GeneralEntity EntityType = iota
	ParameterEntity
)

// Entity is a declared general or parameter entity, internal or external.
// ExpansionText is nil for an external entity whose body has not been (or
// cannot be) fetched.
type Entity struct {
	Name          string
	Type          EntityType
	External      bool
	ExpansionText *string

	PublicID string
	SystemURI string
	Notation  string // non-empty for an unparsed external general entity

	Parsed bool
	Root   string // base URI/path for resolving further references from this entity's body
	Encoding string
}

// Notation is a declared `<!NOTATION>` record: a PublicID, a SystemURI, or
// both.
type Notation struct {
	Name      string
	PublicID  string
	SystemURI string
}

// ContentType distinguishes the four forms an element's content
// specification can take.
type ContentType int

const (
	ContentTypeEmpty ContentType = iota
	ContentTypeAny
	ContentTypeMixed
	ContentTypeChildren
)

// Cardinality suffixes attached to a content-model particle or name.
type Cardinality byte

const (
	CardinalityOne      Cardinality = 0
	CardinalityOptional Cardinality = '?'
	CardinalityZeroPlus Cardinality = '*'
	CardinalityOnePlus  Cardinality = '+'
)

// Particle is one node of an element-content model's choice/sequence tree.
type Particle interface {
	isParticle()
}

// Leaf is a single child-element name with an optional cardinality suffix.
type Leaf struct {
	Name        string
	Cardinality Cardinality
}

func (Leaf) isParticle() {}

// Choice is a `(a|b|c)` group; Cardinality applies to the group as a whole.
type Choice struct {
	Items       []Particle
	Cardinality Cardinality
}

func (Choice) isParticle() {}

// Sequence is a `(a,b,c)` group; Cardinality applies to the group as a whole.
type Sequence struct {
	Items       []Particle
	Cardinality Cardinality
}

func (Sequence) isParticle() {}

// ElementDeclaration is a parsed `<!ELEMENT>` content specification.
type ElementDeclaration struct {
	Name    string
	Type    ContentType
	Mixed   []string // PCDATA-or-names list for ContentTypeMixed; nil/empty means bare (#PCDATA)
	Content Particle  // non-nil only for ContentTypeChildren
}

// AttributeValueType is the declared type of an attribute value.
type AttributeValueType int

const (
	AttrCDATA AttributeValueType = iota
	AttrID
	AttrIDRef
	AttrIDRefs
	AttrEntity
	AttrEntities
	AttrNmtoken
	AttrNmtokens
	AttrNotation
	AttrEnumeration
)

// DefaultKind is the declared default-value form of an attribute.
type DefaultKind int

const (
	DefaultRequired DefaultKind = iota
	DefaultImplied
	DefaultFixed
	DefaultValue
)

// AttributeDeclaration is one `<!ATTLIST>` AttDef: a single attribute of a
// single element, its value type, and its default handling.
type AttributeDeclaration struct {
	ElementName   string
	AttributeName string
	ValueType     AttributeValueType
	Options       []string // enumeration/NOTATION member list
	Default       DefaultKind
	DefaultValue  string // meaningful for DefaultFixed and DefaultValue, already normalized
}

// DTD is the accumulated record of one document's internal and (if
// present) external subset: the predefined entities plus whatever
// <!ENTITY>/<!NOTATION>/<!ELEMENT>/<!ATTLIST> declarations were parsed,
// first-declaration-wins.
type DTD struct {
	RootName string
	FileRoot string // directory the document was loaded from, for relative URI resolution

	GeneralEntities   map[string]*Entity
	ParameterEntities map[string]*Entity
	Notations         map[string]*Notation
	ElementDeclarations map[string]*ElementDeclaration
	AttributeDeclarations map[string]map[string]*AttributeDeclaration // element -> attribute -> decl
	AttributeOrder    map[string][]string                             // element -> attribute names, declaration order
	ProcessingInstructions []*ProcessingInstruction

	cache *uriCache
}
