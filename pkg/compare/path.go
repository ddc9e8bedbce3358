package compare

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one hop in a Path: a mapping key or a sequence index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

func KeyStep(k string) Step {
	return Step{Key: k}
}

func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "['" + strings.ReplaceAll(s.Key, "'", `\'`) + "']"
}

// Path addresses a node from the document root, written as
// root['properties']['rules'][0].
type Path []Step

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("root")
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Key returns a new path extended with a mapping key.
func (p Path) Key(k string) Path { return p.with(KeyStep(k)) }

// Index returns a new path extended with a sequence index.
func (p Path) Index(i int) Path { return p.with(IndexStep(i)) }

// Equal reports whether p and q have the same steps.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p Path) with(s Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// ParsePath reads the string form produced by Path.String.
func ParsePath(s string) (Path, error) {
	if !strings.HasPrefix(s, "root") {
		return nil, fmt.Errorf("path %q does not start with root", s)
	}
	rest := s[len("root"):]
	var p Path
	for len(rest) > 0 {
		if rest[0] != '[' || len(rest) < 3 {
			return nil, fmt.Errorf("path %q: unexpected %q", s, rest)
		}
		if rest[1] == '\'' {
			key, n, err := readQuoted(rest[2:])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			rest = rest[2+n:]
			if !strings.HasPrefix(rest, "]") {
				return nil, fmt.Errorf("path %q: missing ] after key %q", s, key)
			}
			rest = rest[1:]
			p = append(p, KeyStep(key))
			continue
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("path %q: unterminated index", s)
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("path %q: invalid index %q", s, rest[1:end])
		}
		p = append(p, IndexStep(idx))
		rest = rest[end+1:]
	}
	return p, nil
}

// readQuoted returns the unescaped key and the number of bytes consumed,
// closing quote included.
func readQuoted(s string) (string, int, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '\'':
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated key")
}
