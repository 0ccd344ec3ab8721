package xml

import (
	"strconv"
	"strings"
)

// referenceChain tracks the names of entities currently being expanded, so
// a reference to an entity already on the chain can be rejected as a
// recursive-entity well-formedness violation instead of looping forever.
type referenceChain []string

func (c referenceChain) contains(name string) bool {
	for _, n := range c {
		if n == name {
			return true
		}
	}
	return false
}

func (c referenceChain) push(name string) referenceChain {
	next := make(referenceChain, len(c)+1)
	copy(next, c)
	next[len(c)] = name
	return next
}

// parseCharacterReference decodes a `&#nnn;` or `&#xHHHH;` reference. ref
// must be the full reference including the leading `&#` and trailing `;`.
func parseCharacterReference(ref, source string) (rune, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(ref, "&#"), ";")
	var (
		n   int64
		err error
	)
	if strings.HasPrefix(body, "x") {
		n, err = strconv.ParseInt(body[1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(body, 10, 32)
	}
	if err != nil {
		return 0, wfErrorf(source, "malformed character reference %q", ref)
	}
	r := rune(n)
	if !IsChar(r) {
		return 0, newDisallowedCharacterError(string(r), "character reference", "char", source)
	}
	return r, nil
}

// isCharRef reports whether ref (matched by Reference) is a character
// reference (`&#...;`) rather than an entity reference (`&name;`/`%name;`).
func isCharRef(ref string) bool {
	return strings.HasPrefix(ref, "&#")
}

// expandParameterEntityReferences replaces every `%name;` parameter-entity
// reference in text with its (recursively expanded) expansion text,
// wrapped in surrounding spaces so that markup produced by an expansion
// cannot merge with adjacent tokens.
func expandParameterEntityReferences(text string, dtd *DTD, chain referenceChain) (string, error) {
	var out strings.Builder
	rest := text
	for {
		loc := Reference.FindStringIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		ref := rest[loc[0]:loc[1]]
		out.WriteString(rest[:loc[0]])
		if !strings.HasPrefix(ref, "%") {
			out.WriteString(ref)
			rest = rest[loc[1]:]
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(ref, "%"), ";")
		if chain.contains(name) {
			return "", wfErrorf(text, "recursive parameter entity reference %q", name)
		}
		entity, ok := dtd.ParameterEntities[name]
		if !ok {
			return "", wfErrorf(text, "reference to undeclared parameter entity %q", name)
		}
		if entity.ExpansionText == nil {
			return "", wfErrorf(text, "parameter entity %q has no available expansion text", name)
		}
		expanded, err := expandParameterEntityReferences(*entity.ExpansionText, dtd, chain.push(name))
		if err != nil {
			return "", err
		}
		out.WriteString(" ")
		out.WriteString(expanded)
		out.WriteString(" ")
		rest = rest[loc[1]:]
	}
	return out.String(), nil
}

// parseParameterEntityReference recognizes a single `%name;` reference at
// the start of text (after any leading whitespace has already been
// stripped by the caller) and returns the referenced entity, its expansion
// text wrapped in the mandatory surrounding spaces, and the remainder of
// text after the reference.
func parseParameterEntityReference(text string, dtd *DTD, chain referenceChain) (entity *Entity, expansion string, remainder string, err error) {
	loc := Reference.FindStringIndex(text)
	if loc == nil || loc[0] != 0 || !strings.HasPrefix(text, "%") {
		return nil, "", text, wfErrorf(text, "expected parameter entity reference")
	}
	ref := text[loc[0]:loc[1]]
	name := strings.TrimSuffix(strings.TrimPrefix(ref, "%"), ";")
	if chain.contains(name) {
		return nil, "", text, wfErrorf(text, "recursive parameter entity reference %q", name)
	}
	e, ok := dtd.ParameterEntities[name]
	if !ok {
		return nil, "", text, wfErrorf(text, "reference to undeclared parameter entity %q", name)
	}
	if e.ExpansionText == nil {
		return nil, "", text, wfErrorf(text, "parameter entity %q has no available expansion text", name)
	}
	expanded, err := expandParameterEntityReferences(*e.ExpansionText, dtd, chain.push(name))
	if err != nil {
		return nil, "", text, err
	}
	return e, " " + expanded + " ", text[loc[1]:], nil
}
