package parser

import (
	"fmt"
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokZero
	tokCommand // #check, #eval, #reduce, #synth

	// keywords
	tokAxiom
	tokData
	tokDef
	tokVariable
	tokClass
	tokInstance
	tokExtends
	tokForall
	tokFun
	tokMatch
	tokWith
	tokType
	tokProp

	// punctuation
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokColon
	tokAssign // :=
	tokArrow  // ->
	tokDArrow // =>
	tokComma
	tokPipe
	tokDot
	tokPlus
	tokMinus
	tokSmul // •
	tokUnderscore
)

var keywords = map[string]tokenKind{
	"axiom":    tokAxiom,
	"data":     tokData,
	"def":      tokDef,
	"variable": tokVariable,
	"class":    tokClass,
	"instance": tokInstance,
	"extends":  tokExtends,
	"forall":   tokForall,
	"fun":      tokFun,
	"match":    tokMatch,
	"with":     tokWith,
	"Type":     tokType,
	"Prop":     tokProp,
}

var commands = map[string]bool{
	"#check":  true,
	"#eval":   true,
	"#reduce": true,
	"#synth":  true,
}

func (k tokenKind) describe() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "an identifier"
	case tokZero:
		return "'0'"
	case tokCommand:
		return "a command"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokColon:
		return "':'"
	case tokAssign:
		return "':='"
	case tokArrow:
		return "'->'"
	case tokDArrow:
		return "'=>'"
	case tokComma:
		return "','"
	case tokPipe:
		return "'|'"
	case tokDot:
		return "'.'"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokSmul:
		return "'•'"
	case tokUnderscore:
		return "'_'"
	default:
		for text, kw := range keywords {
			if kw == k {
				return "'" + text + "'"
			}
		}
		return "a token"
	}
}

type lexToken struct {
	kind tokenKind
	text string
	off  int // byte offset of the first character
	end  int // byte offset one past the last character
}

// lexer scans a whole source string into tokens up front. Newlines are
// ordinary whitespace: declarations are delimited by their keywords and
// explicit separators, which is what lets a prompt detect an unfinished
// declaration purely by running out of tokens.
type lexer struct {
	src  string
	pos  int
	file *token.File
}

func (l *lexer) rangeAt(off, end int) term.Range {
	return term.Range{PosStart: l.file.Pos(off), PosEnd: l.file.Pos(end)}
}

func (l *lexer) all() ([]lexToken, *kerr.Errors) {
	var toks []lexToken
	for {
		tok, errs := l.next()
		if errs.HasError() {
			return nil, errs
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (lexToken, *kerr.Errors) {
	l.skipSpaceAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return lexToken{kind: tokEOF, off: start, end: start}, nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	switch {
	case r == '(':
		return l.emit(tokLParen, start, start+1), nil
	case r == ')':
		return l.emit(tokRParen, start, start+1), nil
	case r == '{':
		return l.emit(tokLBrace, start, start+1), nil
	case r == '}':
		return l.emit(tokRBrace, start, start+1), nil
	case r == ',':
		return l.emit(tokComma, start, start+1), nil
	case r == '|':
		return l.emit(tokPipe, start, start+1), nil
	case r == '.':
		return l.emit(tokDot, start, start+1), nil
	case r == '+':
		return l.emit(tokPlus, start, start+1), nil
	case r == '•':
		return l.emit(tokSmul, start, start+size), nil
	case r == '-':
		if l.peekAt(start+1) == '>' {
			return l.emit(tokArrow, start, start+2), nil
		}
		return l.emit(tokMinus, start, start+1), nil
	case r == ':':
		if l.peekAt(start+1) == '=' {
			return l.emit(tokAssign, start, start+2), nil
		}
		return l.emit(tokColon, start, start+1), nil
	case r == '=':
		if l.peekAt(start+1) == '>' {
			return l.emit(tokDArrow, start, start+2), nil
		}
		return lexToken{}, l.fail(start, start+1, "unexpected '=': did you mean ':=' or '=>'?")
	case r == '#':
		end := start + 1
		for end < len(l.src) && isIdentPart(rune(l.src[end])) {
			end++
		}
		word := l.src[start:end]
		if !commands[word] {
			return lexToken{}, l.fail(start, end, fmt.Sprintf("unknown command '%s'", word))
		}
		return l.emit(tokCommand, start, end), nil
	case r >= '0' && r <= '9':
		end := start + 1
		for end < len(l.src) && isIdentPart(rune(l.src[end])) {
			end++
		}
		if l.src[start:end] == "0" {
			return l.emit(tokZero, start, end), nil
		}
		return lexToken{}, l.fail(start, end,
			fmt.Sprintf("numeric literal '%s' is not supported: only '0' has notation, name other values", l.src[start:end]))
	case isIdentStart(r):
		end := l.pos + size
		for end < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[end:])
			if !isIdentPart(r) {
				break
			}
			end += size
		}
		word := l.src[start:end]
		if word == "_" {
			return l.emit(tokUnderscore, start, end), nil
		}
		if kw, isKeyword := keywords[word]; isKeyword {
			return l.emit(kw, start, end), nil
		}
		return l.emit(tokIdent, start, end), nil
	default:
		return lexToken{}, l.fail(start, start+size, fmt.Sprintf("unexpected character %q", r))
	}
}

func (l *lexer) emit(kind tokenKind, start, end int) lexToken {
	l.pos = end
	return lexToken{kind: kind, text: l.src[start:end], off: start, end: end}
}

func (l *lexer) fail(start, end int, msg string) *kerr.Errors {
	return (&kerr.Errors{}).With(kerr.New(kerr.NewSyntax{
		Positioner: l.rangeAt(start, end),
		Message:    msg,
	}))
}

func (l *lexer) peekAt(off int) byte {
	if off >= len(l.src) {
		return 0
	}
	return l.src[off]
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '-' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '-':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
