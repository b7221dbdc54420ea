package docpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Key is one step of a Path: either a named field or a list index.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// Field returns a key that selects a named field.
func Field(name string) Key {
	return Key{name: name}
}

// Index returns a key that selects a list element.
func Index(i int) Key {
	return Key{index: i, isIndex: true}
}

// IsIndex reports whether the key selects a list element.
func (k Key) IsIndex() bool { return k.isIndex }

// Name returns the field name of a field key.
func (k Key) Name() string { return k.name }

// Idx returns the list index of an index key.
func (k Key) Idx() int { return k.index }

func (k Key) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// Path addresses one location inside a document.
type Path []Key

// P builds a Path from field names (string) and list indexes (int).
// It panics on any other key type; paths are built by code, not user input.
func P(keys ...any) Path {
	p := make(Path, 0, len(keys))
	for _, k := range keys {
		switch v := k.(type) {
		case string:
			p = append(p, Field(v))
		case int:
			p = append(p, Index(v))
		case Key:
			p = append(p, v)
		default:
			panic(fmt.Sprintf("docpath: unsupported key type %T", k))
		}
	}
	return p
}

// Parse reads the dotted text form, e.g. "curriculum.0.modules.1.title".
// Segments made only of digits are list indexes.
func Parse(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("parse path %q: empty segment %d", s, i)
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 {
				return nil, fmt.Errorf("parse path %q: negative index %d", s, n)
			}
			p = append(p, Index(n))
			continue
		}
		p = append(p, Field(part))
	}
	return p, nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, k := range p {
		parts[i] = k.String()
	}
	return strings.Join(parts, ".")
}

// Append returns a new path; p is never modified.
func (p Path) Append(keys ...Key) Path {
	out := make(Path, 0, len(p)+len(keys))
	out = append(out, p...)
	return append(out, keys...)
}

// Equal reports whether two paths have the same keys.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the path as an array of strings and numbers.
func (p Path) MarshalJSON() ([]byte, error) {
	raw := make([]any, len(p))
	for i, k := range p {
		if k.isIndex {
			raw[i] = k.index
		} else {
			raw[i] = k.name
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts either the array form or the dotted string form.
func (p *Path) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode path: %w", err)
	}
	out := make(Path, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, Field(v))
		case json.Number:
			n, err := v.Int64()
			if err != nil || n < 0 {
				return fmt.Errorf("decode path: key %d: invalid index %s", i, v)
			}
			out = append(out, Index(int(n)))
		default:
			return fmt.Errorf("decode path: key %d: unsupported %T", i, item)
		}
	}
	*p = out
	return nil
}
