package jsonfield

import (
	"regexp"
	"strings"
)

// TokenKind classifies a lexical token of canonical text.
type TokenKind uint8

const (
	KeyToken TokenKind = iota
	StringToken
	NumberToken
	BooleanToken
	NullToken
)

var tokenKindNames = [...]string{
	KeyToken:     "key",
	StringToken:  "string",
	NumberToken:  "number",
	BooleanToken: "boolean",
	NullToken:    "null",
}

// String returns the kind's class-name suffix: key, string, number,
// boolean or null.
func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is a classified span of canonical text. Text is the raw matched
// text, unescaped; a key token includes its closing quote's trailing
// whitespace and colon. Start and End are byte offsets into the scanned
// text.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// tokenPattern is one alternation tried left to right, first match wins:
// a quoted string optionally followed by a colon (a key), one of the
// keywords true, false and null, or a number literal.
var tokenPattern = regexp.MustCompile(
	`"(?:\\u[a-fA-F0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?` +
		`|\b(?:true|false|null)\b` +
		`|-?\d+(?:\.\d*)?(?:[eE][+-]?\d+)?`)

// Tokenize scans text and returns its key, string, number, boolean and
// null tokens in order. It is purely lexical: there is no notion of
// nesting, and everything between tokens is left to the caller.
func Tokenize(text string) []Token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		match := text[loc[0]:loc[1]]
		tokens = append(tokens, Token{
			Kind:  classify(match),
			Text:  match,
			Start: loc[0],
			End:   loc[1],
		})
	}
	return tokens
}

func classify(match string) TokenKind {
	switch {
	case strings.HasPrefix(match, `"`):
		if strings.HasSuffix(match, ":") {
			return KeyToken
		}
		return StringToken
	case match == "true" || match == "false":
		return BooleanToken
	case match == "null":
		return NullToken
	default:
		return NumberToken
	}
}
