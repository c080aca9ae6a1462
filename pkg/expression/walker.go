package expression

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr/ast"
)

// Analysis describes a validated expression
type Analysis struct {
	Functions []string // registered functions called, sorted and unique
	Nodes     int
}

// SandboxError is returned when an expression uses a construct outside the
// allowed subset
type SandboxError struct {
	Construct string
}

func (e *SandboxError) Error() string {
	return fmt.Sprintf("%s is not allowed in formulas", e.Construct)
}

var allowedUnary = map[string]bool{
	"-": true, "+": true, "!": true, "not": true,
}

var allowedBinary = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true, "^": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true, "and": true, "or": true, "??": true,
	"contains": true, "startsWith": true, "endsWith": true,
}

// walker enforces the expression allow-list
type walker struct {
	allowed map[string]bool
	called  map[string]bool
	nodes   int
}

func analyze(node ast.Node, allowed map[string]bool) (*Analysis, error) {
	w := &walker{allowed: allowed, called: make(map[string]bool)}
	if err := w.walk(node); err != nil {
		return nil, err
	}

	fns := make([]string, 0, len(w.called))
	for name := range w.called {
		fns = append(fns, name)
	}
	sort.Strings(fns)
	return &Analysis{Functions: fns, Nodes: w.nodes}, nil
}

func (w *walker) walk(node ast.Node) error {
	if node == nil {
		return nil
	}
	w.nodes++

	switch n := node.(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.StringNode, *ast.ConstantNode:
		return nil

	case *ast.UnaryNode:
		if !allowedUnary[n.Operator] {
			return &SandboxError{Construct: fmt.Sprintf("operator %q", n.Operator)}
		}
		return w.walk(n.Node)

	case *ast.BinaryNode:
		if !allowedBinary[n.Operator] {
			return &SandboxError{Construct: fmt.Sprintf("operator %q", n.Operator)}
		}
		if err := w.walk(n.Left); err != nil {
			return err
		}
		return w.walk(n.Right)

	case *ast.ConditionalNode:
		if err := w.walk(n.Cond); err != nil {
			return err
		}
		if err := w.walk(n.Exp1); err != nil {
			return err
		}
		return w.walk(n.Exp2)

	case *ast.CallNode:
		ident, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return &SandboxError{Construct: "method call"}
		}
		if !w.allowed[ident.Value] {
			return &SandboxError{Construct: fmt.Sprintf("function %q", ident.Value)}
		}
		w.called[ident.Value] = true
		for _, arg := range n.Arguments {
			if err := w.walk(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.IdentifierNode:
		return &SandboxError{Construct: fmt.Sprintf("identifier %q", n.Value)}
	case *ast.MemberNode, *ast.ChainNode:
		return &SandboxError{Construct: "member access"}
	case *ast.SliceNode:
		return &SandboxError{Construct: "slicing"}
	case *ast.ArrayNode:
		return &SandboxError{Construct: "array literal"}
	case *ast.MapNode, *ast.PairNode:
		return &SandboxError{Construct: "map literal"}
	case *ast.BuiltinNode:
		return &SandboxError{Construct: fmt.Sprintf("builtin %q", n.Name)}
	case *ast.PredicateNode, *ast.PointerNode:
		return &SandboxError{Construct: "predicate"}
	case *ast.VariableDeclaratorNode:
		return &SandboxError{Construct: "variable declaration"}
	case *ast.SequenceNode:
		return &SandboxError{Construct: "statement sequence"}
	default:
		return &SandboxError{Construct: fmt.Sprintf("%T", node)}
	}
}
