// Package expr provides the boolean expression tree that filter descriptors
// translate into.
//
// An expression can be used two ways:
//   - Compile binds it to a Binding (any columnar record source) and returns
//     a row Predicate with null-safe semantics.
//   - Format renders it as a parameterised text fragment; Parse reads such a
//     fragment back into an expression.
//
// # Basic Usage
//
//	e := expr.And(
//	    expr.IsNotNull("Age"),
//	    expr.Compare("Age", expr.TypeCompareGreaterThan, expr.KindInt, int64(30)),
//	)
//
//	pred, err := expr.Compile(e, binding)
//	if err != nil {
//	    return err // unknown column or kind mismatch
//	}
//	for row := 0; row < binding.Len(); row++ {
//	    if pred(row) {
//	        ...
//	    }
//	}
//
//	frag := expr.MustFormat(e)
//	// frag.Text == "Age != null && Age > @0", frag.Args == []any{int64(30)}
//
// # Fragment Syntax
//
//	expr     := and ( "||" and )*
//	and      := unary ( "&&" unary )*
//	unary    := "!" unary | primary
//	primary  := "(" expr ")" | "true" | "false"
//	          | "String" "." ("IsNullOrEmpty" | "IsNullOrWhiteSpace") "(" ident ")"
//	          | ident "." ("Contains" | "StartsWith" | "EndsWith") "(" param ")"
//	          | ident ("==" | "!=" | "<" | ">" | "<=" | ">=") ( "null" | param )
//	param    := "@" digits
//
// Identifiers that are not plain words, or that collide with null, true,
// false or String, are double quoted.
package expr
