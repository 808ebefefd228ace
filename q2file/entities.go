package q2file

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Entity is one { "key" "value" ... } block of the entity lump
type Entity map[string]string

func (e Entity) Classname() string {
	return e["classname"]
}

// Float returns a numeric value, or def when missing or malformed
func (e Entity) Float(key string, def float32) float32 {
	v, ok := e[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// Vec3 returns a "x y z" value
func (e Entity) Vec3(key string) ([3]float32, bool) {
	var out [3]float32
	fields := strings.Fields(e[key])
	if len(fields) != 3 {
		return out, false
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return out, false
		}
		out[i] = float32(v)
	}
	return out, true
}

// ParseEntities splits the entity lump into entities
func ParseEntities(s string) ([]Entity, error) {
	var entities []Entity
	var current Entity
	var key string
	haveKey := false

	for pos := 0; ; {
		tok, next, err := nextToken(s, pos)
		if err != nil {
			return nil, err
		}
		if next < 0 {
			break
		}
		pos = next

		switch {
		case tok == "{" && current == nil:
			current = Entity{}
		case tok == "}" && current != nil:
			if haveKey {
				return nil, fmt.Errorf("entity %d: key %q without value", len(entities), key)
			}
			entities = append(entities, current)
			current = nil
		case current == nil:
			return nil, fmt.Errorf("unexpected %q outside of entity", tok)
		case !haveKey:
			key, haveKey = tok, true
		default:
			current[key] = tok
			haveKey = false
		}
	}
	if current != nil {
		return nil, fmt.Errorf("entity %d: missing closing brace", len(entities))
	}
	return entities, nil
}

// nextToken returns the token starting at or after pos and the position
// after it; next is -1 at the end of input. Quoted tokens lose their quotes.
func nextToken(s string, pos int) (tok string, next int, err error) {
	for pos < len(s) && (unicode.IsSpace(rune(s[pos])) || s[pos] == 0) {
		pos++
	}
	if pos >= len(s) {
		return "", -1, nil
	}
	switch s[pos] {
	case '{', '}':
		return s[pos : pos+1], pos + 1, nil
	case '"':
		end := strings.IndexByte(s[pos+1:], '"')
		if end < 0 {
			return "", -1, fmt.Errorf("unterminated string at %d", pos)
		}
		return s[pos+1 : pos+1+end], pos + end + 2, nil
	}
	end := pos
	for end < len(s) && !unicode.IsSpace(rune(s[end])) && s[end] != '"' && s[end] != '{' && s[end] != '}' {
		end++
	}
	return s[pos:end], end, nil
}
