package gparser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/polygen-project/polygen/internal/ast"
	"github.com/polygen-project/polygen/internal/reader"
)

// Parser is a hand-written recursive-descent parser over the grammar
// language described in spec.md §6.1. Each parsing method is named after
// the grammar production it recognizes, saves a reader.Pos before
// attempting a match, and restores it on failure — the same convention
// original_source/polygen/grammar_parser.py uses (there, self._mark()
// and self._reset(pos)).
type Parser struct {
	r    *reader.Reader
	file string

	pendingEntry  bool
	pendingIgnore bool
}

// New returns a Parser over src. file is used only for diagnostics.
func New(src string, file string) *Parser {
	return &Parser{r: reader.NewFromString(src), file: file}
}

func (p *Parser) errorf(format string, a ...interface{}) *SyntaxError {
	return newSyntaxErrorf(p.file, p.r.Line(), p.r.Column(), format, a...)
}

// Parse runs the Grammar production and returns the resulting AST, or the
// first SyntaxError encountered.
func (p *Parser) Parse() (*ast.Grammar, error) {
	g := &ast.Grammar{}
	p.skipSpacing()

	sawAny := false
	for {
		if p.r.AtEnd() {
			break
		}
		ok, err := p.definition(g)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		sawAny = true
	}

	if !p.r.AtEnd() {
		return nil, p.errorf("unexpected input at top level")
	}
	if !sawAny {
		return nil, p.errorf("empty grammar")
	}
	return g, nil
}

// definition recognizes one Directive, Rule, or MetaDef and folds it into
// g. Returns ok=false (no error) when none of the three match, which Parse
// takes as "no more definitions".
func (p *Parser) definition(g *ast.Grammar) (ok bool, err error) {
	mark := p.r.Mark()

	if c, has := p.r.Peek(); has && c == '@' {
		if err := p.directive(); err != nil {
			return false, err
		}
		return true, nil
	}

	if c, has := p.r.Peek(); has && c == '$' {
		mr, err := p.metaDef()
		if err != nil {
			return false, err
		}
		if mr != nil {
			g.MetaRules = append(g.MetaRules, mr)
			return true, nil
		}
		p.r.Restore(mark)
		return false, nil
	}

	rule, err := p.rule()
	if err != nil {
		return false, err
	}
	if rule == nil {
		p.r.Restore(mark)
		return false, nil
	}
	rule.Entry = p.pendingEntry
	rule.Ignore = p.pendingIgnore
	p.pendingEntry = false
	p.pendingIgnore = false
	g.AddRule(rule)
	return true, nil
}

// directive recognizes "@" Identifier. "entry" and "ignore" are recorded
// to apply to the next parsed Rule; "include" is handled by the include
// preprocessing pass (internal/gparser/include.go) before the Parser ever
// sees the text, so encountering it here is an error (it means a raw
// grammar was parsed without running that pass first).
func (p *Parser) directive() error {
	if !p.expect('@') {
		return p.errorf("expected '@'")
	}
	name, ok := p.identifierRaw()
	if !ok {
		return p.errorf("expected directive name after '@'")
	}
	p.skipSpacing()

	switch name {
	case "entry":
		p.pendingEntry = true
	case "ignore":
		p.pendingIgnore = true
	case "include":
		return p.errorf("@include must be resolved before parsing (see internal/gparser/include.go)")
	default:
		return p.errorf("unrecognized directive %q", name)
	}
	return nil
}

// metaDef recognizes "$" Identifier "{" balanced-braces "}". Returns
// nil, nil if "$" is not followed by an Identifier (which means it's
// actually an inline MetaAttach "${...}" being looked at from
// definition(), not a MetaDef; MetaAttach is only valid inside an Alt).
func (p *Parser) metaDef() (*ast.MetaRule, error) {
	mark := p.r.Mark()
	startLine, startCol := p.r.Line(), p.r.Column()

	if !p.expect('$') {
		return nil, nil
	}
	id, ok := p.identifierRaw()
	if !ok || id == "" {
		p.r.Restore(mark)
		return nil, nil
	}
	p.skipSpacing()

	body, err := p.balancedBraces()
	if err != nil {
		return nil, err
	}
	return &ast.MetaRule{
		Id:   ast.Id{Name: id},
		Body: body,
		Info: &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol},
	}, nil
}

// balancedBraces consumes "{" ... "}" and returns the raw text in between,
// tracking nested braces so that metarule bodies (which are opaque
// target-language code) may themselves contain braces.
func (p *Parser) balancedBraces() (string, error) {
	if !p.expect('{') {
		return "", p.errorf("expected '{'")
	}
	var sb strings.Builder
	depth := 1
	for {
		c, ok := p.r.Next()
		if !ok {
			return "", p.errorf("unterminated metarule body (unbalanced '{')")
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.skipSpacing()
				return sb.String(), nil
			}
		}
		sb.WriteRune(c)
	}
}

// rule recognizes Identifier "<-" Expr.
func (p *Parser) rule() (*ast.Rule, error) {
	mark := p.r.Mark()
	startLine, startCol := p.r.Line(), p.r.Column()

	id, ok := p.identifier()
	if !ok {
		return nil, nil
	}
	if !p.leftArrow() {
		p.r.Restore(mark)
		return nil, nil
	}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, p.errorf("expected expression after '<-' in rule %q", id)
	}
	return &ast.Rule{
		Id:   ast.Id{Name: id},
		Expr: expr,
		Info: &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol},
	}, nil
}

// expr recognizes Alt ("/" Alt)*.
func (p *Parser) expr() (*ast.Expr, error) {
	startLine, startCol := p.r.Line(), p.r.Column()

	a, err := p.alt()
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	alts := []*ast.Alt{a}
	for p.expectSpaced('/') {
		a2, err := p.alt()
		if err != nil {
			return nil, err
		}
		if a2 == nil {
			return nil, p.errorf("expected alternative after '/'")
		}
		alts = append(alts, a2)
	}
	return &ast.Expr{Alts: alts, Info: &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol}}, nil
}

// alt recognizes Item* MetaAttach?. An empty Alt (zero items) is
// permitted and always succeeds matching nothing, per the Data Model.
func (p *Parser) alt() (*ast.Alt, error) {
	startLine, startCol := p.r.Line(), p.r.Column()

	var items []*ast.NamedItem
	for {
		ni, err := p.namedItem()
		if err != nil {
			return nil, err
		}
		if ni == nil {
			break
		}
		items = append(items, ni)
	}

	mr, ref, err := p.metaAttach()
	if err != nil {
		return nil, err
	}

	a := &ast.Alt{Items: items, Info: &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol}}
	if mr != nil {
		a.MetaRule = mr
	} else if ref != nil {
		// Unresolved named reference; internal/modifier's AssignMetaRules
		// pass resolves it against the Grammar's MetaRules list. We stash
		// it as a MetaRule with only an Id set and an empty Body so the
		// Alt has somewhere to park the reference until then.
		a.MetaRule = &ast.MetaRule{Id: *ref}
	}
	return a, nil
}

// metaAttach recognizes "$" Identifier (a reference, returned as ref) or
// "${" balanced-braces "}" (an inline anonymous metarule, returned as mr).
func (p *Parser) metaAttach() (mr *ast.MetaRule, ref *ast.Id, err error) {
	mark := p.r.Mark()
	if !p.expect('$') {
		return nil, nil, nil
	}

	if c, ok := p.r.Peek(); ok && c == '{' {
		body, err := p.balancedBraces()
		if err != nil {
			return nil, nil, err
		}
		return &ast.MetaRule{Body: body}, nil, nil
	}

	id, ok := p.identifierRaw()
	if !ok || id == "" {
		p.r.Restore(mark)
		return nil, nil, nil
	}
	p.skipSpacing()
	refId := ast.Id{Name: id}
	return nil, &refId, nil
}

// namedItem recognizes (Identifier ":")? Prefix Primary Quantifier?.
func (p *Parser) namedItem() (*ast.NamedItem, error) {
	mark := p.r.Mark()
	startLine, startCol := p.r.Line(), p.r.Column()

	metaname := p.tryMetanamePrefix()

	it, err := p.prefixedItem()
	if err != nil {
		return nil, err
	}
	if it == nil {
		if metaname != "" {
			return nil, p.errorf("expected item after metaname %q", metaname)
		}
		p.r.Restore(mark)
		return nil, nil
	}
	return &ast.NamedItem{
		MetaName: ast.Id{Name: metaname},
		Item:     it,
		Info:     &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol},
	}, nil
}

// tryMetanamePrefix attempts to consume "Identifier ':'" and returns the
// identifier text, or "" if no such prefix is present (restoring the
// reader to its original position).
func (p *Parser) tryMetanamePrefix() string {
	mark := p.r.Mark()
	id, ok := p.identifierRaw()
	if !ok {
		return ""
	}
	p.skipSpacing()
	if !p.expect(':') {
		p.r.Restore(mark)
		return ""
	}
	p.skipSpacing()
	return id
}

// prefixedItem recognizes Prefix Primary Quantifier?.
func (p *Parser) prefixedItem() (*ast.Item, error) {
	startLine, startCol := p.r.Line(), p.r.Column()
	info := &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol}

	var prefixKind ast.ItemKind
	hasPrefix := false
	if p.expectSpaced('&') {
		prefixKind, hasPrefix = ast.KindAnd, true
	} else if p.expectSpaced('!') {
		prefixKind, hasPrefix = ast.KindNot, true
	}

	primary, err := p.primary()
	if err != nil {
		return nil, err
	}
	if primary == nil {
		if hasPrefix {
			return nil, p.errorf("expected item after lookahead prefix")
		}
		return nil, nil
	}

	quantified, err := p.quantifier(primary, info)
	if err != nil {
		return nil, err
	}

	if hasPrefix {
		return ast.NewUnary(prefixKind, quantified, info), nil
	}
	return quantified, nil
}

// quantifier recognizes an optional "?" | "*" | "+" | "{" N ("," N)? "}"
// suffix on an already-parsed Primary.
func (p *Parser) quantifier(it *ast.Item, info *ast.ParseInfo) (*ast.Item, error) {
	if p.expectSpaced('?') {
		return ast.NewUnary(ast.KindZeroOrOne, it, info), nil
	}
	if p.expectSpaced('*') {
		return ast.NewUnary(ast.KindZeroOrMore, it, info), nil
	}
	if p.expectSpaced('+') {
		return ast.NewUnary(ast.KindOneOrMore, it, info), nil
	}
	if c, ok := p.r.Peek(); ok && c == '{' {
		first, last, matched, err := p.repetitionBounds()
		if err != nil {
			return nil, err
		}
		if matched {
			return ast.NewRepetition(it, first, last, info), nil
		}
	}
	return it, nil
}

// repetitionBounds recognizes "{" N ("," N)? "}".
func (p *Parser) repetitionBounds() (first int, last *int, matched bool, err error) {
	mark := p.r.Mark()
	if !p.expect('{') {
		return 0, nil, false, nil
	}
	n1, ok := p.number()
	if !ok {
		p.r.Restore(mark)
		return 0, nil, false, nil
	}
	if p.expect(',') {
		n2, ok := p.number()
		if !ok {
			return 0, nil, false, p.errorf("expected number after ',' in repetition")
		}
		if !p.expect('}') {
			return 0, nil, false, p.errorf("expected '}' closing repetition")
		}
		p.skipSpacing()
		return n1, &n2, true, nil
	}
	if !p.expect('}') {
		p.r.Restore(mark)
		return 0, nil, false, nil
	}
	p.skipSpacing()
	return n1, nil, true, nil
}

func (p *Parser) number() (int, bool) {
	var sb strings.Builder
	for {
		c, ok := p.r.Peek()
		if !ok || !unicode.IsDigit(c) {
			break
		}
		p.r.Next()
		sb.WriteRune(c)
	}
	if sb.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(sb.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// primary recognizes Identifier | String | Class | "." | "(" Expr ")".
func (p *Parser) primary() (*ast.Item, error) {
	startLine, startCol := p.r.Line(), p.r.Column()
	info := &ast.ParseInfo{File: p.file, Line: startLine, Col: startCol}

	mark := p.r.Mark()
	if id, ok := p.identifier(); ok {
		// An Identifier immediately followed by "<-" is the start of the
		// next Rule, not a reference; back out (mirrors
		// grammar_parser.py's _Primary, which checks LEFTARROW and
		// resets on match).
		save := p.r.Mark()
		if p.leftArrow() {
			p.r.Restore(mark)
			return nil, nil
		}
		p.r.Restore(save)
		return ast.NewId(ast.Id{Name: id}, info), nil
	}

	if c, ok := p.r.Peek(); ok && c == '(' {
		p.r.Next()
		p.skipSpacing()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, p.errorf("expected expression after '('")
		}
		if !p.expect(')') {
			return nil, p.errorf("expected ')' closing group")
		}
		p.skipSpacing()
		return ast.NewGroup(e, info), nil
	}

	if s, ok, err := p.stringLiteral(); err != nil {
		return nil, err
	} else if ok {
		return ast.NewString(s, info), nil
	}

	if ranges, ok, err := p.class(); err != nil {
		return nil, err
	} else if ok {
		return ast.NewClass(ranges, info), nil
	}

	if c, ok := p.r.Peek(); ok && c == '.' {
		p.r.Next()
		p.skipSpacing()
		return ast.NewAnyChar(info), nil
	}

	return nil, nil
}

// stringLiteral recognizes '"' Char* '"' | "'" Char* "'".
func (p *Parser) stringLiteral() (string, bool, error) {
	mark := p.r.Mark()
	quote, ok := p.r.Peek()
	if !ok || (quote != '"' && quote != '\'') {
		return "", false, nil
	}
	p.r.Next()

	var sb strings.Builder
	for {
		c, ok := p.r.Peek()
		if !ok {
			return "", false, p.errorf("unterminated string literal")
		}
		if c == quote {
			p.r.Next()
			p.skipSpacing()
			return sb.String(), true, nil
		}
		ch, ok, err := p.char()
		if err != nil {
			return "", false, err
		}
		if !ok {
			p.r.Restore(mark)
			return "", false, p.errorf("invalid character in string literal")
		}
		sb.WriteRune(rune(ch))
	}
}

// class recognizes "[" Range* "]".
func (p *Parser) class() ([]ast.Range, bool, error) {
	mark := p.r.Mark()
	if !p.expect('[') {
		return nil, false, nil
	}
	var ranges []ast.Range
	for {
		c, ok := p.r.Peek()
		if !ok {
			return nil, false, p.errorf("unterminated character class")
		}
		if c == ']' {
			p.r.Next()
			p.skipSpacing()
			return ranges, true, nil
		}
		r, ok, err := p.rangeItem()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			p.r.Restore(mark)
			return nil, false, p.errorf("invalid range in character class")
		}
		ranges = append(ranges, r)
	}
}

// rangeItem recognizes Char ("-" Char)?.
func (p *Parser) rangeItem() (ast.Range, bool, error) {
	first, ok, err := p.char()
	if err != nil || !ok {
		return ast.Range{}, false, err
	}
	mark := p.r.Mark()
	if p.expect('-') {
		last, ok, err := p.char()
		if err != nil {
			return ast.Range{}, false, err
		}
		if !ok {
			p.r.Restore(mark)
			return ast.Range{First: first}, true, nil
		}
		if last < first {
			// Left for ValidateRangesAndReps to catch as a batched
			// semantic error; the parser only needs a syntactically
			// valid Range here.
			return ast.Range{First: first, Last: &last}, true, nil
		}
		return ast.Range{First: first, Last: &last}, true, nil
	}
	return ast.Range{First: first}, true, nil
}

// identifier recognizes [A-Za-z_][A-Za-z_0-9]* and consumes trailing
// Spacing, the way original_source/polygen/grammar_parser.py's
// _Identifier calls self._Spacing() after matching.
func (p *Parser) identifier() (string, bool) {
	id, ok := p.identifierRaw()
	if !ok {
		return "", false
	}
	p.skipSpacing()
	return id, true
}

// identifierRaw recognizes the identifier token itself without consuming
// trailing Spacing (used where the caller needs to look ahead, e.g. for
// ':' after a metaname candidate).
func (p *Parser) identifierRaw() (string, bool) {
	c, ok := p.r.Peek()
	if !ok || !isIdentStart(c) {
		return "", false
	}
	var sb strings.Builder
	sb.WriteRune(c)
	p.r.Next()
	for {
		c, ok := p.r.Peek()
		if !ok || !isIdentCont(c) {
			break
		}
		sb.WriteRune(c)
		p.r.Next()
	}
	return sb.String(), true
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentCont(c rune) bool {
	return isIdentStart(c) || unicode.IsDigit(c)
}

// leftArrow recognizes "<-" plus trailing Spacing.
func (p *Parser) leftArrow() bool {
	mark := p.r.Mark()
	if p.expect('<') && p.expect('-') {
		p.skipSpacing()
		return true
	}
	p.r.Restore(mark)
	return false
}

// expect consumes the next rune iff it equals c, without skipping
// Spacing afterward.
func (p *Parser) expect(c rune) bool {
	mark := p.r.Mark()
	got, ok := p.r.Next()
	if !ok || got != c {
		p.r.Restore(mark)
		return false
	}
	return true
}

// expectSpaced consumes c and any trailing Spacing.
func (p *Parser) expectSpaced(c rune) bool {
	if !p.expect(c) {
		return false
	}
	p.skipSpacing()
	return true
}

// skipSpacing consumes whitespace, "#"-to-end-of-line comments, and ';'
// separators. The formal grammar in spec.md §6.1 never names a semicolon
// token, but its own worked examples pack multiple rules onto one line
// separated by ';' (e.g. "G <- \"abc\" EOF; EOF <- !."), so ';' is treated
// as an insignificant separator on par with whitespace rather than as a
// token any production cares about.
func (p *Parser) skipSpacing() {
	for {
		c, ok := p.r.Peek()
		if !ok {
			return
		}
		if c == '#' {
			for {
				c, ok := p.r.Peek()
				if !ok || c == '\n' {
					break
				}
				p.r.Next()
			}
			continue
		}
		if c == ';' || unicode.IsSpace(c) {
			p.r.Next()
			continue
		}
		return
	}
}
