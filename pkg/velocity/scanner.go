package velocity

import "strings"

// TagKind identifies a control tag keyword.
type TagKind int

const (
	TagIf TagKind = iota
	TagElseIf
	TagElse
	TagForeach
	TagSet
	TagEnd
)

func (k TagKind) String() string {
	switch k {
	case TagIf:
		return "#if"
	case TagElseIf:
		return "#elseif"
	case TagElse:
		return "#else"
	case TagForeach:
		return "#foreach"
	case TagSet:
		return "#set"
	case TagEnd:
		return "#end"
	default:
		return "#?"
	}
}

// TagOccurrence is one keyword found in template text. End is the offset
// just past the keyword.
type TagOccurrence struct {
	Kind  TagKind
	Start int
	End   int
}

// Keywords in match order: a longer keyword must precede any keyword that
// is its prefix.
var tagKeywords = []struct {
	keyword string
	kind    TagKind
}{
	{"#elseif", TagElseIf},
	{"#else", TagElse},
	{"#foreach", TagForeach},
	{"#end", TagEnd},
	{"#if", TagIf},
	{"#set", TagSet},
	{"#{elseif}", TagElseIf},
	{"#{else}", TagElse},
	{"#{end}", TagEnd},
}

// ScanTags returns every non-overlapping control tag keyword in text,
// scanning left to right.
func ScanTags(text string) []TagOccurrence {
	var tags []TagOccurrence
	for i := 0; i < len(text); {
		next := strings.IndexByte(text[i:], '#')
		if next < 0 {
			break
		}
		i += next

		matched := false
		for _, kw := range tagKeywords {
			if strings.HasPrefix(text[i:], kw.keyword) {
				tags = append(tags, TagOccurrence{
					Kind:  kw.kind,
					Start: i,
					End:   i + len(kw.keyword),
				})
				i += len(kw.keyword)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return tags
}

// findExpression locates the parenthesised expression that follows a tag
// keyword ending at from. Only blanks may separate the keyword and the
// opening parenthesis. Parentheses inside quoted strings are ignored.
// It returns the offsets of the opening and matching closing parenthesis.
func findExpression(text string, from int) (open, close int, ok bool) {
	i := from
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != '(' {
		return 0, 0, false
	}
	open = i

	depth := 0
	var quote byte
	for ; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return open, i, true
			}
		}
	}
	return 0, 0, false
}
