package expression

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/conf"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Function is the signature of a function callable from an expression
type Function func(params ...interface{}) (interface{}, error)

const (
	// DefaultMaxNodes bounds the size of a single expression
	DefaultMaxNodes uint = 500
	// DefaultCacheSize bounds the number of compiled programs kept
	DefaultCacheSize = 1024
)

// Engine is a sandboxed wrapper around expr-lang/expr.
//
// Expressions run against an empty environment with every expr builtin
// disabled: only functions registered on the engine are callable, and the
// AST is checked against an allow-list before compilation (see walker.go).
type Engine struct {
	programCache map[string]*vm.Program
	functions    map[string]Function
	maxNodes     uint
	cacheSize    int
	mu           sync.RWMutex
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxNodes sets the AST node budget for a single expression
func WithMaxNodes(n uint) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxNodes = n
		}
	}
}

// WithCacheSize bounds the compiled-program cache. The cache is reset when
// full, since substituted formulas rarely repeat once values change.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// NewEngine creates a new expression engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		programCache: make(map[string]*vm.Program),
		functions:    make(map[string]Function),
		maxNodes:     DefaultMaxNodes,
		cacheSize:    DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate compiles (if needed) and runs an expression
func (e *Engine) Evaluate(expression string) (interface{}, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, err
	}

	output, err := expr.Run(program, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return output, nil
}

// RegisterFunction registers a custom function
func (e *Engine) RegisterFunction(name string, fn Function) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functions[name] = fn
	// Clear cache as available functions changed
	e.programCache = make(map[string]*vm.Program)
}

// Functions returns the names of all registered functions, sorted
func (e *Engine) Functions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that an expression parses, passes the sandbox and compiles
func (e *Engine) Validate(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

// Inspect validates an expression and reports which functions it calls
func (e *Engine) Inspect(expression string) (*Analysis, error) {
	e.mu.RLock()
	options := e.optionsLocked()
	allowed := e.allowedLocked()
	e.mu.RUnlock()

	tree, err := parseWithOptions(expression, options)
	if err != nil {
		return nil, err
	}
	return analyze(tree.Node, allowed)
}

// ClearCache drops all compiled programs
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.programCache = make(map[string]*vm.Program)
}

// CacheSize returns the number of compiled programs held
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.programCache)
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	options := e.optionsLocked()

	tree, err := parseWithOptions(expression, options)
	if err != nil {
		return nil, err
	}
	if _, err := analyze(tree.Node, e.allowedLocked()); err != nil {
		return nil, err
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, err
	}

	if len(e.programCache) >= e.cacheSize {
		e.programCache = make(map[string]*vm.Program)
	}
	e.programCache[expression] = program
	return program, nil
}

// optionsLocked builds the compile options. Callers hold e.mu.
func (e *Engine) optionsLocked() []expr.Option {
	options := []expr.Option{
		expr.Env(map[string]interface{}{}),
		expr.DisableAllBuiltins(),
		expr.MaxNodes(e.maxNodes),
	}
	for name, fn := range e.functions {
		options = append(options, expr.Function(name, fn))
	}
	// added after user functions so the name cannot be overridden
	options = append(options,
		expr.Function(moduloFunc, modulo),
		expr.Patch(moduloPatcher{}),
	)
	return options
}

// moduloFunc is the internal callee "%" is rewritten to. It is not in the
// allow-list, so expressions cannot call it by name.
const moduloFunc = "$mod"

// moduloPatcher rewrites a % b into a float remainder call, since expr only
// defines % for integers.
type moduloPatcher struct{}

func (moduloPatcher) Visit(node *ast.Node) {
	bin, ok := (*node).(*ast.BinaryNode)
	if !ok || bin.Operator != "%" {
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: moduloFunc},
		Arguments: []ast.Node{bin.Left, bin.Right},
	})
}

// modulo is math.Mod over numeric operands: 5.5 % 2 is 1.5, x % 0 is NaN
func modulo(params ...interface{}) (interface{}, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("%% expects 2 operands, got %d", len(params))
	}
	a, ok := toFloat(params[0])
	if !ok {
		return nil, fmt.Errorf("invalid operation: %T %% %T", params[0], params[1])
	}
	b, ok := toFloat(params[1])
	if !ok {
		return nil, fmt.Errorf("invalid operation: %T %% %T", params[0], params[1])
	}
	return math.Mod(a, b), nil
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func (e *Engine) allowedLocked() map[string]bool {
	allowed := make(map[string]bool, len(e.functions))
	for name := range e.functions {
		allowed[name] = true
	}
	return allowed
}

// parseWithOptions parses with the same configuration expr.Compile uses, so
// registered functions shadow builtins and disabled builtins parse as calls.
func parseWithOptions(expression string, options []expr.Option) (*parser.Tree, error) {
	config := conf.CreateNew()
	for _, op := range options {
		op(config)
	}
	for name := range config.Disabled {
		delete(config.Builtins, name)
	}
	tree, err := parser.ParseWithConfig(expression, config)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	return tree, nil
}
