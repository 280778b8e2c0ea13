package velocity

import "fmt"

// TagSpan is one balanced pairing of an opening tag with the tag that
// closes it. For #if chains each #elseif/#else both closes the previous
// span and opens the next one. A #set span closes at its balanced ")".
type TagSpan struct {
	Kind       TagKind
	OpenStart  int
	OpenEnd    int
	CloseKind  TagKind
	CloseStart int
	CloseEnd   int
}

func (s TagSpan) String() string {
	return fmt.Sprintf("%s[%d:%d]..%s[%d:%d]", s.Kind, s.OpenStart, s.OpenEnd, s.CloseKind, s.CloseStart, s.CloseEnd)
}

// contains reports whether other lies entirely inside the body of s.
func (s TagSpan) contains(other TagSpan) bool {
	return s.OpenEnd <= other.OpenStart && other.CloseEnd <= s.CloseStart
}

// MatchSpans pairs tag occurrences into spans using a stack. Occurrences
// inside a tag's parenthesised expression are treated as literal text.
func MatchSpans(text string, tags []TagOccurrence) ([]TagSpan, error) {
	return matchSpans(text, tags, GetLogger())
}

func matchSpans(text string, tags []TagOccurrence, logger *Logger) ([]TagSpan, error) {
	var (
		spans     []TagSpan
		stack     []TagOccurrence
		skipUntil int
	)

	pop := func(closer TagOccurrence) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		spans = append(spans, TagSpan{
			Kind:       top.Kind,
			OpenStart:  top.Start,
			OpenEnd:    top.End,
			CloseKind:  closer.Kind,
			CloseStart: closer.Start,
			CloseEnd:   closer.End,
		})
	}

	for _, tag := range tags {
		if tag.Start < skipUntil {
			continue
		}

		switch tag.Kind {
		case TagIf, TagForeach:
			if _, closeParen, ok := findExpression(text, tag.End); ok {
				skipUntil = closeParen + 1
			}
			stack = append(stack, tag)

		case TagSet:
			_, closeParen, ok := findExpression(text, tag.End)
			if !ok {
				return nil, NewParseError(ErrMissingParenthesis, text, tag.Kind.String(), tag.Start,
					"expected balanced '( key = value )' after #set")
			}
			spans = append(spans, TagSpan{
				Kind:       TagSet,
				OpenStart:  tag.Start,
				OpenEnd:    tag.End,
				CloseKind:  TagSet,
				CloseStart: closeParen,
				CloseEnd:   closeParen + 1,
			})
			skipUntil = closeParen + 1

		case TagElseIf, TagElse:
			if len(stack) == 0 {
				return nil, NewParseError(ErrUnmatchedEnd, text, tag.Kind.String(), tag.Start,
					"no open #if for this branch")
			}
			pop(tag)
			if tag.Kind == TagElseIf {
				if _, closeParen, ok := findExpression(text, tag.End); ok {
					skipUntil = closeParen + 1
				}
			}
			stack = append(stack, tag)

		case TagEnd:
			if len(stack) == 0 {
				return nil, NewParseError(ErrUnmatchedEnd, text, tag.Kind.String(), tag.Start,
					"no open tag to close")
			}
			pop(tag)
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, NewParseError(ErrUnmatchedOpenTag, text, top.Kind.String(), top.Start,
			fmt.Sprintf("%s is never closed by #end", top.Kind))
	}

	logger.WithField("spans", len(spans)).Debug("Matched %d tags", len(tags))
	return spans, nil
}
