package velocity

import "strings"

// Substitute replaces ${name} and $name placeholders in text with values
// from ctx. Dotted names are flat keys, not nested lookups.
//
// ${name} must match a key exactly. $name uses the longest dotted prefix
// present in ctx and leaves the rest as literal text, so "$user.name."
// with only "user" defined yields the value of user followed by ".name.".
// Unresolved placeholders are rewritten as ${name}, which makes repeated
// substitution a no-op on them.
func Substitute(text string, ctx Context) string {
	if strings.IndexByte(text, '$') < 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		next := strings.IndexByte(text[i:], '$')
		if next < 0 {
			b.WriteString(text[i:])
			break
		}
		b.WriteString(text[i : i+next])
		i += next

		if name, end, ok := scanBraced(text, i); ok {
			if v, found := ctx[name]; found {
				b.WriteString(v.String())
			} else {
				writePlaceholder(&b, name)
			}
			i = end
			continue
		}

		if name, end, ok := scanBare(text, i); ok {
			resolved := false
			for cand := name; ; {
				if v, found := ctx[cand]; found {
					b.WriteString(v.String())
					i += 1 + len(cand)
					resolved = true
					break
				}
				dot := strings.LastIndexByte(cand, '.')
				if dot < 0 {
					break
				}
				cand = cand[:dot]
			}
			if !resolved {
				writePlaceholder(&b, name)
				i = end
			}
			continue
		}

		b.WriteByte('$')
		i++
	}
	return b.String()
}

func writePlaceholder(b *strings.Builder, name string) {
	b.WriteString("${")
	b.WriteString(name)
	b.WriteByte('}')
}

// scanBraced matches ${ name } at i, allowing blanks inside the braces.
func scanBraced(text string, i int) (name string, end int, ok bool) {
	if !strings.HasPrefix(text[i:], "${") {
		return "", 0, false
	}
	closeIdx := strings.IndexByte(text[i+2:], '}')
	if closeIdx < 0 {
		return "", 0, false
	}
	name = strings.TrimSpace(text[i+2 : i+2+closeIdx])
	if dottedIdentLen(name) != len(name) || name == "" {
		return "", 0, false
	}
	return name, i + 2 + closeIdx + 1, true
}

// scanBare matches $name(.name)* at i.
func scanBare(text string, i int) (name string, end int, ok bool) {
	n := dottedIdentLen(text[i+1:])
	if n == 0 {
		return "", 0, false
	}
	return text[i+1 : i+1+n], i + 1 + n, true
}

// dottedIdentLen returns the length of the ident(.ident)* prefix of s.
// A trailing dot that is not followed by an identifier is not included.
func dottedIdentLen(s string) int {
	n := identLen(s)
	if n == 0 {
		return 0
	}
	for n < len(s) && s[n] == '.' {
		m := identLen(s[n+1:])
		if m == 0 {
			break
		}
		n += 1 + m
	}
	return n
}

func identLen(s string) int {
	if s == "" || !isIdentStart(s[0]) {
		return 0
	}
	n := 1
	for n < len(s) && isIdentPart(s[n]) {
		n++
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
