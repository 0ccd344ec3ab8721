package xml

import (
	"regexp"
	"unicode/utf8"
)

// Character classes and grammar productions lifted from the XML 1.0 (5th
// edition) EBNF at https://www.w3.org/TR/xml/. Kept as a closed table so
// every scanner in this package references the same definitions.

const (
	reChar              = `\t\n\r\x{20}-\x{D7FF}\x{E000}-\x{FFFD}\x{10000}-\x{10FFFF}`
	reWhitespace        = `[ \t\r\n]+`
	reOptionalWhitespace = `[ \t\r\n]*`
	reNameStartChar     = `:_A-Za-z\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{2FF}\x{370}-\x{37D}\x{37F}-\x{1FFF}\x{200C}-\x{200D}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	reNameChar          = reNameStartChar + `\-.0-9\x{B7}\x{300}-\x{36F}\x{203F}-\x{2040}`
	rePubidChar         = ` \r\na-zA-Z0-9\-'()+,./:=?;!*#@$_%`
	reEncName           = `[A-Za-z][A-Za-z0-9._\-]*`
)

var (
	reCharSet       = "[" + reChar + "]"
	reCharSeq       = "(?:" + reCharSet + ")*"
	reNameStartSet  = "[" + reNameStartChar + "]"
	reNameCharSet   = "[" + reNameChar + "]"
	reNameStr       = reNameStartSet + "(?:" + reNameCharSet + ")*"
	reNmTokenStr    = "(?:" + reNameCharSet + ")+"
	rePubidSet      = "[" + rePubidChar + "]"

	// Whitespace matches one or more xmlspec::S characters.
	Whitespace = regexp.MustCompile(`\A` + reWhitespace)
	// WhitespaceAnywhere finds the next run of xmlspec::S characters.
	WhitespaceAnywhere = regexp.MustCompile(reWhitespace)
	// OptionalWhitespace matches zero or more xmlspec::S characters.
	OptionalWhitespace = regexp.MustCompile(`\A` + reOptionalWhitespace)
	// Eq matches the xmlspec::Eq production: optional whitespace, '=', optional whitespace.
	Eq = regexp.MustCompile(`\A` + reOptionalWhitespace + `=` + reOptionalWhitespace)

	// CharSequence matches a (possibly empty) run of xmlspec::Char.
	CharSequence = regexp.MustCompile(`\A(?:` + reCharSet + `)*\z`)
	// Name matches a single xmlspec::Name token.
	Name = regexp.MustCompile(`\A` + reNameStr + `\z`)
	// NmToken matches a single xmlspec::Nmtoken token.
	NmToken = regexp.MustCompile(`\A` + reNmTokenStr + `\z`)
	// PubidLiteral matches xmlspec::PubidChar*.
	PubidLiteral = regexp.MustCompile(`\A(?:` + rePubidSet + `)*\z`)
	// EncName matches xmlspec::EncName.
	EncName = regexp.MustCompile(`\A` + reEncName + `\z`)

	// Reference matches a general or parameter entity/character reference.
	Reference = regexp.MustCompile(`[&%].*?;`)
	// GeneralReference matches only `&...;` forms, for contexts where a
	// bare '%' is ordinary character data (attribute values).
	GeneralReference = regexp.MustCompile(`&.*?;`)

	nameStartCharRE = regexp.MustCompile(`\A` + reNameStartSet)
	nameCharRE      = regexp.MustCompile(`\A` + reNameCharSet)
	charRE          = regexp.MustCompile(`\A` + reCharSet)
	pubidCharRE     = regexp.MustCompile(`\A` + rePubidSet)
	encNameStartRE  = regexp.MustCompile(`\A[A-Za-z]`)
	encNameCharRE   = regexp.MustCompile(`\A[A-Za-z0-9._\-]`)
)

// IsNameStartChar reports whether r may begin an xmlspec::Name.
func IsNameStartChar(r rune) bool { return nameStartCharRE.MatchString(string(r)) }

// IsNameChar reports whether r may occur anywhere in an xmlspec::Name after
// the first character.
func IsNameChar(r rune) bool { return nameCharRE.MatchString(string(r)) }

// IsChar reports whether r is a legal xmlspec::Char. Surrogates and values
// above U+10FFFF are rejected up front, since string(r) would turn them
// into U+FFFD.
func IsChar(r rune) bool { return utf8.ValidRune(r) && charRE.MatchString(string(r)) }

// IsPubidChar reports whether r is a legal xmlspec::PubidChar.
func IsPubidChar(r rune) bool { return pubidCharRE.MatchString(string(r)) }
