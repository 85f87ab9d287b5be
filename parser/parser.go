package parser

import (
	"fmt"

	"github.com/fora-lang/fora/frontend/ast"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// parser is a recursive descent over the token slice, one function per
// nonterminal. It stops at the first syntax error; running out of
// tokens mid-declaration is flagged incomplete so a prompt can ask for
// the rest of the input instead of rejecting it.
type parser struct {
	lex  *lexer
	toks []lexToken
	i    int
}

func (p *parser) cur() lexToken { return p.toks[p.i] }

func (p *parser) advance() lexToken {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) at(kind tokenKind) bool { return p.cur().kind == kind }

func (p *parser) accept(kind tokenKind) (lexToken, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	return lexToken{}, false
}

func (p *parser) expect(kind tokenKind) (lexToken, *kerr.Errors) {
	if tok, ok := p.accept(kind); ok {
		return tok, nil
	}
	return lexToken{}, p.unexpected(fmt.Sprintf("expected %s", kind.describe()))
}

func (p *parser) unexpected(msg string) *kerr.Errors {
	tok := p.cur()
	if tok.kind == tokEOF {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewSyntax{
			Positioner: p.lex.rangeAt(tok.off, tok.end),
			Message:    msg + ", but the input ended",
			Incomplete: true,
		}))
	}
	return (&kerr.Errors{}).With(kerr.New(kerr.NewSyntax{
		Positioner: p.lex.rangeAt(tok.off, tok.end),
		Message:    fmt.Sprintf("%s, but found '%s'", msg, tok.text),
	}))
}

func (p *parser) rangeFrom(start int, end term.Positioner) term.Range {
	return term.Range{PosStart: p.lex.file.Pos(start), PosEnd: end.End()}
}

func (p *parser) tokRange(tok lexToken) term.Range {
	return p.lex.rangeAt(tok.off, tok.end)
}

// ----- declarations -----

func (p *parser) parseFile(name string) (*ast.File, *kerr.Errors) {
	file := &ast.File{Name: name}
	for !p.at(tokEOF) {
		decl, errs := p.parseDecl()
		if errs.HasError() {
			return file, errs
		}
		file.Decls = append(file.Decls, decl)
	}
	return file, nil
}

func (p *parser) parseDecl() (ast.Decl, *kerr.Errors) {
	switch p.cur().kind {
	case tokAxiom:
		return p.parseAxiom()
	case tokData:
		return p.parseData()
	case tokDef:
		return p.parseDef()
	case tokVariable:
		return p.parseVariable()
	case tokClass:
		return p.parseClass()
	case tokInstance:
		return p.parseInstance()
	case tokCommand:
		return p.parseCommand()
	default:
		return nil, p.unexpected("expected a declaration or a command")
	}
}

func (p *parser) parseAxiom() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	ty, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.AxiomDecl{Range: p.rangeFrom(kw.off, ty), Name: name.text, Type: ty}, nil
}

func (p *parser) parseData() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokAssign); errs.HasError() {
		return nil, errs
	}
	first, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	ctors := []string{first.text}
	last := first
	for {
		if _, ok := p.accept(tokPipe); !ok {
			break
		}
		ctor, errs := p.expect(tokIdent)
		if errs.HasError() {
			return nil, errs
		}
		ctors = append(ctors, ctor.text)
		last = ctor
	}
	return &ast.DataDecl{Range: p.rangeFrom(kw.off, p.tokRange(last)), Name: name.text, Ctors: ctors}, nil
}

func (p *parser) parseDef() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	ty, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokAssign); errs.HasError() {
		return nil, errs
	}
	body, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.DefDecl{Range: p.rangeFrom(kw.off, body), Name: name.text, Type: ty, Body: body}, nil
}

func (p *parser) parseVariable() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	if _, errs := p.expect(tokLParen); errs.HasError() {
		return nil, errs
	}
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	ty, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	close, errs := p.expect(tokRParen)
	if errs.HasError() {
		return nil, errs
	}
	return &ast.VariableDecl{Range: p.rangeFrom(kw.off, p.tokRange(close)), Name: name.text, Type: ty}, nil
}

func (p *parser) parseClass() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokLParen); errs.HasError() {
		return nil, errs
	}
	carrier, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokType); errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokRParen); errs.HasError() {
		return nil, errs
	}

	var extends []string
	if _, ok := p.accept(tokExtends); ok {
		parent, errs := p.expect(tokIdent)
		if errs.HasError() {
			return nil, errs
		}
		extends = append(extends, parent.text)
		for {
			if _, ok := p.accept(tokComma); !ok {
				break
			}
			parent, errs := p.expect(tokIdent)
			if errs.HasError() {
				return nil, errs
			}
			extends = append(extends, parent.text)
		}
	}

	if _, errs := p.expect(tokLBrace); errs.HasError() {
		return nil, errs
	}
	var fields []ast.FieldDecl
	for !p.at(tokRBrace) {
		if len(fields) > 0 {
			if _, errs := p.expect(tokComma); errs.HasError() {
				return nil, errs
			}
		}
		field, errs := p.parseFieldDecl()
		if errs.HasError() {
			return nil, errs
		}
		fields = append(fields, field)
	}
	close := p.advance()
	return &ast.ClassDecl{
		Range:        p.rangeFrom(kw.off, p.tokRange(close)),
		Name:         name.text,
		CarrierParam: carrier.text,
		Extends:      extends,
		Fields:       fields,
	}, nil
}

func (p *parser) parseFieldDecl() (ast.FieldDecl, *kerr.Errors) {
	name, errs := p.expect(tokIdent)
	if errs.HasError() {
		return ast.FieldDecl{}, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return ast.FieldDecl{}, errs
	}
	ty, errs := p.parseExpr()
	if errs.HasError() {
		return ast.FieldDecl{}, errs
	}
	field := ast.FieldDecl{Range: p.rangeFrom(name.off, ty), Name: name.text, Type: ty}
	if _, ok := p.accept(tokAssign); ok {
		def, errs := p.parseExpr()
		if errs.HasError() {
			return ast.FieldDecl{}, errs
		}
		field.Default = def
		field.Range = p.rangeFrom(name.off, def)
	}
	return field, nil
}

func (p *parser) parseInstance() (ast.Decl, *kerr.Errors) {
	kw := p.advance()
	var name string
	if tok, ok := p.accept(tokIdent); ok {
		name = tok.text
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	class, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	carrier, errs := p.parsePostfix()
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokAssign); errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokLBrace); errs.HasError() {
		return nil, errs
	}
	fields, close, errs := p.parseFieldAssigns()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.InstanceDecl{
		Range:   p.rangeFrom(kw.off, p.tokRange(close)),
		Name:    name,
		Class:   class.text,
		Carrier: carrier,
		Fields:  fields,
	}, nil
}

// parseFieldAssigns parses `name := expr` entries up to and including
// the closing brace. The opening brace is already consumed.
func (p *parser) parseFieldAssigns() ([]ast.FieldAssign, lexToken, *kerr.Errors) {
	var fields []ast.FieldAssign
	for !p.at(tokRBrace) {
		if len(fields) > 0 {
			if _, errs := p.expect(tokComma); errs.HasError() {
				return nil, lexToken{}, errs
			}
		}
		name, errs := p.expect(tokIdent)
		if errs.HasError() {
			return nil, lexToken{}, errs
		}
		if _, errs := p.expect(tokAssign); errs.HasError() {
			return nil, lexToken{}, errs
		}
		value, errs := p.parseExpr()
		if errs.HasError() {
			return nil, lexToken{}, errs
		}
		fields = append(fields, ast.FieldAssign{
			Range: p.rangeFrom(name.off, value),
			Name:  name.text,
			Value: value,
		})
	}
	return fields, p.advance(), nil
}

func (p *parser) parseCommand() (ast.Decl, *kerr.Errors) {
	cmd := p.advance()
	var kind ast.CommandKind
	switch cmd.text {
	case "#check":
		kind = ast.CommandCheck
	case "#eval":
		kind = ast.CommandEval
	case "#reduce":
		kind = ast.CommandReduce
	case "#synth":
		class, errs := p.expect(tokIdent)
		if errs.HasError() {
			return nil, errs
		}
		carrier, errs := p.parsePostfix()
		if errs.HasError() {
			return nil, errs
		}
		return &ast.CommandDecl{
			Range:   p.rangeFrom(cmd.off, carrier),
			Kind:    ast.CommandSynth,
			Class:   class.text,
			Carrier: carrier,
		}, nil
	}
	expr, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.CommandDecl{Range: p.rangeFrom(cmd.off, expr), Kind: kind, Expr: expr}, nil
}

// ----- expressions -----
//
// Precedence, loosest first: forall/fun/match, then -> (right), then
// + and binary - (left), then • (right), then unary -, then
// application, then projection and atoms.

func (p *parser) parseExpr() (ast.Expr, *kerr.Errors) {
	switch p.cur().kind {
	case tokForall:
		return p.parseBinderExpr(true)
	case tokFun:
		return p.parseBinderExpr(false)
	case tokMatch:
		return p.parseMatch()
	default:
		return p.parseArrow()
	}
}

func (p *parser) parseBinderExpr(isForall bool) (ast.Expr, *kerr.Errors) {
	kw := p.advance()
	if _, errs := p.expect(tokLParen); errs.HasError() {
		return nil, errs
	}
	param, errs := p.expect(tokIdent)
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokColon); errs.HasError() {
		return nil, errs
	}
	paramType, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokRParen); errs.HasError() {
		return nil, errs
	}
	sep := tokComma
	if !isForall {
		sep = tokDArrow
	}
	if _, errs := p.expect(sep); errs.HasError() {
		return nil, errs
	}
	body, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	if isForall {
		return &ast.Forall{Range: p.rangeFrom(kw.off, body), Param: param.text, ParamType: paramType, Body: body}, nil
	}
	return &ast.Fun{Range: p.rangeFrom(kw.off, body), Param: param.text, ParamType: paramType, Body: body}, nil
}

// parseMatch parses `match e with | c => e ...`. Arm bodies sit at
// arrow precedence, so a nested match, fun, or forall inside an arm
// needs parentheses; otherwise it would swallow the remaining arms.
func (p *parser) parseMatch() (ast.Expr, *kerr.Errors) {
	kw := p.advance()
	scrutinee, errs := p.parseArrow()
	if errs.HasError() {
		return nil, errs
	}
	if _, errs := p.expect(tokWith); errs.HasError() {
		return nil, errs
	}
	var arms []ast.MatchArm
	var last ast.Expr
	for {
		if _, ok := p.accept(tokPipe); !ok {
			break
		}
		var ctor string
		var ctorTok lexToken
		if tok, ok := p.accept(tokUnderscore); ok {
			ctor, ctorTok = "_", tok
		} else if tok, errs := p.expect(tokIdent); errs.HasError() {
			return nil, errs
		} else {
			ctor, ctorTok = tok.text, tok
		}
		if _, errs := p.expect(tokDArrow); errs.HasError() {
			return nil, errs
		}
		body, errs := p.parseArrow()
		if errs.HasError() {
			return nil, errs
		}
		arms = append(arms, ast.MatchArm{Range: p.rangeFrom(ctorTok.off, body), Ctor: ctor, Body: body})
		last = body
	}
	if len(arms) == 0 {
		return nil, p.unexpected("expected at least one '|' arm after 'with'")
	}
	return &ast.MatchExpr{Range: p.rangeFrom(kw.off, last), Scrutinee: scrutinee, Arms: arms}, nil
}

func (p *parser) parseArrow() (ast.Expr, *kerr.Errors) {
	from, errs := p.parseSum()
	if errs.HasError() {
		return nil, errs
	}
	if _, ok := p.accept(tokArrow); !ok {
		return from, nil
	}
	to, errs := p.parseExpr()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.Arrow{Range: term.RangeBetween(from, to), From: from, To: to}, nil
}

func (p *parser) parseSum() (ast.Expr, *kerr.Errors) {
	left, errs := p.parseScalar()
	if errs.HasError() {
		return nil, errs
	}
	for {
		var op string
		switch p.cur().kind {
		case tokPlus:
			op = "+"
		case tokMinus:
			op = "-"
		default:
			return left, nil
		}
		p.advance()
		right, errs := p.parseScalar()
		if errs.HasError() {
			return nil, errs
		}
		left = &ast.Binary{Range: term.RangeBetween(left, right), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseScalar() (ast.Expr, *kerr.Errors) {
	left, errs := p.parseUnary()
	if errs.HasError() {
		return nil, errs
	}
	if _, ok := p.accept(tokSmul); !ok {
		return left, nil
	}
	right, errs := p.parseScalar()
	if errs.HasError() {
		return nil, errs
	}
	return &ast.Binary{Range: term.RangeBetween(left, right), Op: "•", Left: left, Right: right}, nil
}

func (p *parser) parseUnary() (ast.Expr, *kerr.Errors) {
	if tok, ok := p.accept(tokMinus); ok {
		operand, errs := p.parseUnary()
		if errs.HasError() {
			return nil, errs
		}
		return &ast.Unary{Range: p.rangeFrom(tok.off, operand), Op: "-", Operand: operand}, nil
	}
	return p.parseApp()
}

func (p *parser) parseApp() (ast.Expr, *kerr.Errors) {
	fn, errs := p.parsePostfix()
	if errs.HasError() {
		return nil, errs
	}
	for p.startsAtom() {
		arg, errs := p.parsePostfix()
		if errs.HasError() {
			return nil, errs
		}
		fn = &ast.Apply{Range: term.RangeBetween(fn, arg), Fn: fn, Arg: arg}
	}
	return fn, nil
}

func (p *parser) startsAtom() bool {
	switch p.cur().kind {
	case tokIdent, tokZero, tokType, tokProp, tokLParen, tokLBrace:
		return true
	default:
		return false
	}
}

func (p *parser) parsePostfix() (ast.Expr, *kerr.Errors) {
	expr, errs := p.parseAtom()
	if errs.HasError() {
		return nil, errs
	}
	for {
		if _, ok := p.accept(tokDot); !ok {
			return expr, nil
		}
		field, errs := p.expect(tokIdent)
		if errs.HasError() {
			return nil, errs
		}
		expr = &ast.ProjExpr{
			Range:  p.rangeFrom(int(p.lex.file.Offset(expr.Pos())), p.tokRange(field)),
			Struct: expr,
			Field:  field.text,
		}
	}
}

func (p *parser) parseAtom() (ast.Expr, *kerr.Errors) {
	switch p.cur().kind {
	case tokIdent:
		tok := p.advance()
		return &ast.Ident{Range: p.tokRange(tok), Name: tok.text}, nil
	case tokZero:
		tok := p.advance()
		return &ast.ZeroLit{Range: p.tokRange(tok)}, nil
	case tokType:
		tok := p.advance()
		return &ast.SortLit{Range: p.tokRange(tok), Kind: term.SortType}, nil
	case tokProp:
		tok := p.advance()
		return &ast.SortLit{Range: p.tokRange(tok), Kind: term.SortProp}, nil
	case tokLParen:
		open := p.advance()
		expr, errs := p.parseExpr()
		if errs.HasError() {
			return nil, errs
		}
		if _, ok := p.accept(tokColon); ok {
			ty, errs := p.parseExpr()
			if errs.HasError() {
				return nil, errs
			}
			close, errs := p.expect(tokRParen)
			if errs.HasError() {
				return nil, errs
			}
			return &ast.Ascribe{Range: p.rangeFrom(open.off, p.tokRange(close)), Expr: expr, Type: ty}, nil
		}
		if _, errs := p.expect(tokRParen); errs.HasError() {
			return nil, errs
		}
		return expr, nil
	case tokLBrace:
		open := p.advance()
		fields, close, errs := p.parseFieldAssigns()
		if errs.HasError() {
			return nil, errs
		}
		return &ast.StructExpr{Range: p.rangeFrom(open.off, p.tokRange(close)), Fields: fields}, nil
	default:
		return nil, p.unexpected("expected an expression")
	}
}
