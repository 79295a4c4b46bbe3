package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidFragment is returned for text that cannot be parsed or bound.
var ErrInvalidFragment = errors.New("invalid expression fragment")

var fragmentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Param", Pattern: `@\d+`},
	{Name: "QuotedIdent", Pattern: `"(""|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Operators", Pattern: `&&|\|\||==|!=|<=|>=|[<>!().,]`},
	{Name: "Whitespace", Pattern: `[ \r\n\t]+`},
})

var fragmentParser = participle.MustBuild[orAST](
	participle.Lexer(fragmentLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(4),
)

type orAST struct {
	Terms []*andAST `parser:"@@ ( '||' @@ )*"`
}

type andAST struct {
	Factors []*unaryAST `parser:"@@ ( '&&' @@ )*"`
}

type unaryAST struct {
	Not     *unaryAST   `parser:"  '!' @@"`
	Primary *primaryAST `parser:"| @@"`
}

type primaryAST struct {
	Group  *orAST     `parser:"  '(' @@ ')'"`
	Bool   *string    `parser:"| @('true' | 'false')"`
	Static *staticAST `parser:"| @@"`
	Member *memberAST `parser:"| @@"`
}

type staticAST struct {
	Name   string `parser:"'String' '.' @('IsNullOrEmpty' | 'IsNullOrWhiteSpace')"`
	Column string `parser:"'(' @(Ident | QuotedIdent) ')'"`
}

type memberAST struct {
	Column  string      `parser:"@(Ident | QuotedIdent)"`
	Method  *methodAST  `parser:"( '.' @@"`
	Compare *compareAST `parser:"| @@ )"`
}

type methodAST struct {
	Name  string `parser:"@('Contains' | 'StartsWith' | 'EndsWith')"`
	Param string `parser:"'(' @Param ')'"`
}

type compareAST struct {
	Op      string      `parser:"@('==' | '!=' | '<=' | '>=' | '<' | '>')"`
	Operand *operandAST `parser:"@@"`
}

type operandAST struct {
	Null  bool    `parser:"  @'null'"`
	Param *string `parser:"| @Param"`
}

// Parse parses a text fragment produced by Format (or written by hand in
// the same syntax) and binds @N references to args.
func Parse(text string, args ...any) (Expression, error) {
	ast, err := fragmentParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	b := &astBinder{args: args}
	return b.or(ast)
}

// ParseFragment parses f.Text bound to f.Args.
func ParseFragment(f Fragment) (Expression, error) {
	return Parse(f.Text, f.Args...)
}

type astBinder struct {
	args []any
}

func (b *astBinder) or(a *orAST) (Expression, error) {
	terms := make([]Expression, 0, len(a.Terms))
	for _, t := range a.Terms {
		e, err := b.and(t)
		if err != nil {
			return nil, err
		}
		terms = append(terms, e)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return &ConjunctionExpression{BaseExpression: BaseExpression{ExprType: TypeConjunctionOr}, Children: terms}, nil
}

func (b *astBinder) and(a *andAST) (Expression, error) {
	factors := make([]Expression, 0, len(a.Factors))
	for _, f := range a.Factors {
		e, err := b.unary(f)
		if err != nil {
			return nil, err
		}
		factors = append(factors, e)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return &ConjunctionExpression{BaseExpression: BaseExpression{ExprType: TypeConjunctionAnd}, Children: factors}, nil
}

func (b *astBinder) unary(a *unaryAST) (Expression, error) {
	if a.Not != nil {
		child, err := b.unary(a.Not)
		if err != nil {
			return nil, err
		}
		return &NotExpression{BaseExpression: BaseExpression{ExprType: TypeOperatorNot}, Child: child}, nil
	}
	return b.primary(a.Primary)
}

func (b *astBinder) primary(a *primaryAST) (Expression, error) {
	switch {
	case a.Group != nil:
		return b.or(a.Group)
	case a.Bool != nil:
		if *a.Bool == "true" {
			return True(), nil
		}
		return False(), nil
	case a.Static != nil:
		name := FuncIsNullOrEmpty
		if a.Static.Name == "IsNullOrWhiteSpace" {
			name = FuncIsNullOrWhitespace
		}
		return Call(name, unquoteIdent(a.Static.Column), ""), nil
	case a.Member != nil:
		return b.member(a.Member)
	}
	return nil, fmt.Errorf("%w: empty term", ErrInvalidFragment)
}

func (b *astBinder) member(a *memberAST) (Expression, error) {
	column := unquoteIdent(a.Column)

	if a.Method != nil {
		v, err := b.param(a.Method.Param)
		if err != nil {
			return nil, err
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s expects a string argument, got %T", ErrInvalidFragment, column, a.Method.Name, v)
		}
		name := FuncContains
		switch a.Method.Name {
		case "StartsWith":
			name = FuncStartsWith
		case "EndsWith":
			name = FuncEndsWith
		}
		return Call(name, column, s), nil
	}

	t := compareTypes[a.Compare.Op]
	if a.Compare.Operand.Null {
		switch t {
		case TypeCompareEqual:
			return IsNull(column), nil
		case TypeCompareNotEqual:
			return IsNotNull(column), nil
		}
		return nil, fmt.Errorf("%w: %s %s null is not a valid comparison", ErrInvalidFragment, column, a.Compare.Op)
	}

	v, err := b.param(*a.Compare.Operand.Param)
	if err != nil {
		return nil, err
	}
	kind, value, err := KindOf(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFragment, err)
	}
	return Compare(column, t, kind, value), nil
}

func (b *astBinder) param(token string) (any, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(token, "@"))
	if err != nil || n < 0 || n >= len(b.args) {
		return nil, fmt.Errorf("%w: parameter %s out of range (%d arguments)", ErrInvalidFragment, token, len(b.args))
	}
	return b.args[n], nil
}

var compareTypes = map[string]ExpressionType{
	"==": TypeCompareEqual,
	"!=": TypeCompareNotEqual,
	"<":  TypeCompareLessThan,
	">":  TypeCompareGreaterThan,
	"<=": TypeCompareLessThanOrEqual,
	">=": TypeCompareGreaterThanOrEqual,
}

func unquoteIdent(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}
