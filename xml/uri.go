package xml

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/groupcache/lru"
	"golang.org/x/text/encoding/unicode"
)

// uriCache memoizes fetched-and-decoded external resource bodies for the
// lifetime of a single parse, since a parameter entity or an external
// general entity can legitimately be referenced more than once.
type uriCache struct {
	cache *lru.Cache
}

func newURICache() *uriCache {
	return &uriCache{cache: lru.New(64)}
}

func (c *uriCache) get(path string) (string, bool) {
	v, ok := c.cache.Get(path)
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (c *uriCache) put(path, content string) {
	c.cache.Add(path, content)
}

// ExternalID is a parsed SYSTEM or PUBLIC external identifier, optionally
// followed by an NDATA notation name (meaningful only for unparsed general
// entities).
type ExternalID struct {
	PublicID string
	SystemURI string
	Notation  string
}

// parseExternalReference parses `SYSTEM SystemLiteral` or
// `PUBLIC PubidLiteral SystemLiteral`, optionally followed by
// `NDATA Name` when lookForNotation is set, and returns the parsed ID plus
// the unconsumed remainder of xml. requireFullPublic demands the system
// literal after a public identifier (a DOCTYPE or entity declaration);
// notation declarations pass false.
func parseExternalReference(xml string, lookForNotation bool, requireFullPublic bool) (ExternalID, string, error) {
	rest := xml
	var id ExternalID

	switch {
	case strings.HasPrefix(rest, "SYSTEM"):
		rest = rest[len("SYSTEM"):]
		loc := Whitespace.FindStringIndex(rest)
		if loc == nil {
			return id, xml, wfErrorf(xml, "expected whitespace after SYSTEM")
		}
		rest = rest[loc[1]:]
		lit, r, err := parseSystemLiteral(rest)
		if err != nil {
			return id, xml, err
		}
		id.SystemURI, rest = lit, r

	case strings.HasPrefix(rest, "PUBLIC"):
		rest = rest[len("PUBLIC"):]
		loc := Whitespace.FindStringIndex(rest)
		if loc == nil {
			return id, xml, wfErrorf(xml, "expected whitespace after PUBLIC")
		}
		rest = rest[loc[1]:]
		pub, r, err := parsePubidLiteral(rest)
		if err != nil {
			return id, xml, err
		}
		id.PublicID, rest = pub, r

		wloc := Whitespace.FindStringIndex(rest)
		if wloc == nil {
			if requireFullPublic {
				return id, xml, wfErrorf(xml, "expected system literal after public identifier")
			}
			return id, rest, nil
		}
		afterSpace := rest[wloc[1]:]
		if len(afterSpace) == 0 || (afterSpace[0] != '"' && afterSpace[0] != '\'') {
			if requireFullPublic {
				return id, xml, wfErrorf(xml, "expected system literal after public identifier")
			}
			return id, rest, nil
		}
		rest = afterSpace
		lit, r, err := parseSystemLiteral(rest)
		if err != nil {
			return id, xml, err
		}
		id.SystemURI, rest = lit, r

	default:
		return id, xml, wfErrorf(xml, "expected SYSTEM or PUBLIC external identifier")
	}

	if lookForNotation {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(trimmed, "NDATA") {
			after := trimmed[len("NDATA"):]
			loc := Whitespace.FindStringIndex(after)
			if loc == nil {
				return id, xml, wfErrorf(xml, "expected whitespace after NDATA")
			}
			after = after[loc[1]:]
			end := findNameEnd(after)
			if end == 0 {
				return id, xml, wfErrorf(xml, "expected notation name after NDATA")
			}
			id.Notation = after[:end]
			rest = after[end:]
		}
	}

	return id, rest, nil
}

// findNameEnd returns the length of the xmlspec::Name prefix of s.
func findNameEnd(s string) int {
	runes := []rune(s)
	if len(runes) == 0 || !IsNameStartChar(runes[0]) {
		return 0
	}
	n := 1
	for n < len(runes) && IsNameChar(runes[n]) {
		n++
	}
	return len([]byte(string(runes[:n])))
}

func parseSystemLiteral(xml string) (string, string, error) {
	if len(xml) == 0 || (xml[0] != '"' && xml[0] != '\'') {
		return "", xml, wfErrorf(xml, "expected quoted system literal")
	}
	quote := xml[0]
	end := strings.IndexByte(xml[1:], quote)
	if end < 0 {
		return "", xml, wfErrorf(xml, "unterminated system literal")
	}
	return xml[1 : 1+end], xml[2+end:], nil
}

func parsePubidLiteral(xml string) (string, string, error) {
	if len(xml) == 0 || (xml[0] != '"' && xml[0] != '\'') {
		return "", xml, wfErrorf(xml, "expected quoted public identifier literal")
	}
	quote := xml[0]
	end := strings.IndexByte(xml[1:], quote)
	if end < 0 {
		return "", xml, wfErrorf(xml, "unterminated public identifier literal")
	}
	lit := xml[1 : 1+end]
	if !PubidLiteral.MatchString(lit) {
		return "", xml, newDisallowedCharacterError(lit, "public identifier literal", "pubid", xml)
	}
	return lit, xml[2+end:], nil
}

// fetchExternalContent fetches the body an external identifier points at,
// trying the public identifier as a location first and falling back to the
// system URI. Both are resolved relative to fileRoot. Returns the decoded
// body and the resolved path so nested references can be resolved against
// the fetched file's own directory.
func fetchExternalContent(id ExternalID, fileRoot string, cache *uriCache) (string, string, error) {
	base := filepath.Join(fileRoot, "doc")
	if id.PublicID != "" {
		if content, path, err := resolveURI(id.PublicID, base, cache); err == nil {
			return content, path, nil
		}
	}
	if id.SystemURI == "" {
		return "", "", wfErrorf("", "external identifier has no fetchable location")
	}
	return resolveURI(id.SystemURI, base, cache)
}

// resolveURI fetches the content at systemURI, resolving a relative URI
// against currentPath's directory first and retrying the URI as given on
// failure. Whether parameter-entity references may occur in the fetched
// text is the caller's concern, true only when the calling context is
// the external subset.
func resolveURI(systemURI, currentPath string, cache *uriCache) (string, string, error) {
	candidates := []string{systemURI}
	if currentPath != "" && !filepath.IsAbs(systemURI) {
		candidates = []string{filepath.Join(filepath.Dir(currentPath), systemURI), systemURI}
	}

	var lastErr error
	for _, path := range candidates {
		if cache != nil {
			if content, ok := cache.get(path); ok {
				return content, path, nil
			}
		}
		content, err := readFile(path, "")
		if err != nil {
			lastErr = err
			continue
		}
		if cache != nil {
			cache.put(path, content)
		}
		return content, path, nil
	}
	return "", "", lastErr
}

// readFile reads path as the requested encoding, falling back to UTF-8
// and then UTF-16. encoding may be empty to mean "guess".
func readFile(path, encoding string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", &EncodingError{Path: path, Err: err}
	}
	if text, ok := tryDecode(raw, encoding); ok {
		return text, nil
	}
	if text, ok := tryDecode(raw, "utf-8"); ok {
		return text, nil
	}
	if text, ok := tryDecode(raw, "utf-16"); ok {
		return text, nil
	}
	return "", &EncodingError{Path: path, Err: wfErrorf("", "unable to decode %s as utf-8 or utf-16", path)}
}

func tryDecode(raw []byte, encoding string) (string, bool) {
	switch strings.ToLower(encoding) {
	case "utf-16", "utf-16le", "utf-16be":
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
		out, err := dec.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	case "utf-8", "":
		if !looksLikeUTF8(raw) {
			return "", false
		}
		return string(raw), true
	default:
		return string(raw), true
	}
}

func looksLikeUTF8(raw []byte) bool {
	for i := 0; i < len(raw); {
		b := raw[i]
		switch {
		case b < 0x80:
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(raw) || raw[i+1]&0xC0 != 0x80 {
				return false
			}
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(raw) || raw[i+1]&0xC0 != 0x80 || raw[i+2]&0xC0 != 0x80 {
				return false
			}
			i += 3
		case b&0xF8 == 0xF0:
			if i+3 >= len(raw) || raw[i+1]&0xC0 != 0x80 || raw[i+2]&0xC0 != 0x80 || raw[i+3]&0xC0 != 0x80 {
				return false
			}
			i += 4
		default:
			return false
		}
	}
	return true
}

// parseTextDeclaration strips a leading `<?xml ... ?>` text declaration
// (legal at the start of an external entity or external DTD subset) and
// returns the remaining text plus any encoding it declared.
func parseTextDeclaration(text string) (string, string) {
	if !strings.HasPrefix(text, "<?xml") {
		return text, ""
	}
	end := strings.Index(text, "?>")
	if end < 0 {
		return text, ""
	}
	decl := text[len("<?xml") : end]
	encoding := ""
	if idx := strings.Index(decl, "encoding"); idx >= 0 {
		rest := decl[idx+len("encoding"):]
		if m := Eq.FindStringIndex(rest); m != nil {
			rest = rest[m[1]:]
			if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
				quote := rest[0]
				if close := strings.IndexByte(rest[1:], quote); close >= 0 {
					encoding = rest[1 : 1+close]
				}
			}
		}
	}
	return text[end+2:], encoding
}
