package design

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/facetcode/facet/pkg/parser"
)

// langRules maps one grammar's node types onto the concepts the rules
// inspect.
type langRules struct {
	funcTypes    map[string]bool
	controlTypes map[string]bool
	importTypes  map[string]bool
	numberTypes  map[string]bool
	callType     string
	callField    string
	paramsField  string
	unaryType    string
}

var jsRules = &langRules{
	funcTypes: map[string]bool{
		"function_declaration":           true,
		"generator_function_declaration": true,
		"function_expression":            true,
		"function":                       true,
		"generator_function":             true,
		"arrow_function":                 true,
		"method_definition":              true,
	},
	controlTypes: map[string]bool{
		"if_statement":     true,
		"for_statement":    true,
		"for_in_statement": true,
		"while_statement":  true,
		"do_statement":     true,
		"switch_statement": true,
		"try_statement":    true,
	},
	importTypes: map[string]bool{"import_statement": true},
	numberTypes: map[string]bool{"number": true},
	callType:    "call_expression",
	callField:   "function",
	paramsField: "parameters",
	unaryType:   "unary_expression",
}

var pyRules = &langRules{
	funcTypes: map[string]bool{
		"function_definition": true,
		"lambda":              true,
	},
	controlTypes: map[string]bool{
		"if_statement":    true,
		"for_statement":   true,
		"while_statement": true,
		"try_statement":   true,
		"with_statement":  true,
		"match_statement": true,
	},
	importTypes: map[string]bool{
		"import_statement":      true,
		"import_from_statement": true,
	},
	numberTypes: map[string]bool{"integer": true, "float": true},
	callType:    "call",
	callField:   "function",
	paramsField: "parameters",
	unaryType:   "unary_operator",
}

var javaRules = &langRules{
	funcTypes: map[string]bool{
		"method_declaration":      true,
		"constructor_declaration": true,
		"lambda_expression":       true,
	},
	controlTypes: map[string]bool{
		"if_statement":                 true,
		"for_statement":                true,
		"enhanced_for_statement":       true,
		"while_statement":              true,
		"do_statement":                 true,
		"switch_expression":            true,
		"try_statement":                true,
		"try_with_resources_statement": true,
	},
	importTypes: map[string]bool{"import_declaration": true},
	numberTypes: map[string]bool{
		"decimal_integer_literal":        true,
		"hex_integer_literal":            true,
		"octal_integer_literal":          true,
		"binary_integer_literal":         true,
		"decimal_floating_point_literal": true,
		"hex_floating_point_literal":     true,
	},
	callType:    "method_invocation",
	callField:   "name",
	paramsField: "parameters",
	unaryType:   "unary_expression",
}

func rulesFor(lang parser.Language) *langRules {
	switch lang {
	case parser.LangPython:
		return pyRules
	case parser.LangJava:
		return javaRules
	default:
		return jsRules
	}
}

// funcScope tracks per-function facts for fan-out and stale variables.
type funcScope struct {
	name      string
	startLine int
	callees   map[string]bool
	declared  map[string]int
	used      map[string]bool
}

// inspector walks one parsed file and collects issues.
type inspector struct {
	a      *Analyzer
	path   string
	source []byte
	rules  *langRules

	issues  []Issue
	imports int
	depth   int
	scopes  []*funcScope
}

// inspect runs every enabled rule over a parsed file in a single walk.
func (a *Analyzer) inspect(res *parser.ParseResult) []Issue {
	ins := &inspector{
		a:      a,
		path:   res.Path,
		source: res.Source,
		rules:  rulesFor(res.Language),
	}
	parser.WalkEvents(res.Tree.RootNode(), res.Source, ins.enter, ins.exit)

	if a.enabled(RuleImportCount) && a.cfg.MaxImports > 0 && ins.imports > a.cfg.MaxImports {
		ins.issues = append(ins.issues, newIssue(res.Path, RuleImportCount, 1,
			fmt.Sprintf("file has %d imports (max %d)", ins.imports, a.cfg.MaxImports)))
	}
	return ins.issues
}

func (ins *inspector) enter(n *sitter.Node, nodeType string, _ []byte) bool {
	switch {
	case ins.rules.importTypes[nodeType]:
		ins.imports++
	case ins.rules.funcTypes[nodeType]:
		ins.enterFunc(n, nodeType)
	case ins.rules.controlTypes[nodeType]:
		ins.depth++
		ins.checkNesting(n)
	case ins.rules.numberTypes[nodeType]:
		ins.checkMagicNumber(n)
	case nodeType == "true" || nodeType == "false":
		ins.checkBooleanFlag(n)
	case nodeType == ins.rules.callType:
		ins.recordCallee(n)
	case nodeType == "identifier":
		ins.classifyIdentifier(n)
	}
	return true
}

func (ins *inspector) exit(n *sitter.Node, nodeType string, _ []byte) bool {
	switch {
	case ins.rules.funcTypes[nodeType]:
		ins.exitFunc()
	case ins.rules.controlTypes[nodeType]:
		ins.depth--
	}
	return true
}

func (ins *inspector) enterFunc(n *sitter.Node, nodeType string) {
	name := parser.GetNodeText(n.ChildByFieldName("name"), ins.source)
	if name == "" {
		name = "anonymous"
	}
	ins.scopes = append(ins.scopes, &funcScope{
		name:      name,
		startLine: parser.StartLine(n),
		callees:   make(map[string]bool),
		declared:  make(map[string]int),
		used:      make(map[string]bool),
	})

	ins.checkName(name, parser.StartLine(n))
	ins.checkParams(n, name)
}

func (ins *inspector) exitFunc() {
	if len(ins.scopes) == 0 {
		return
	}
	scope := ins.scopes[len(ins.scopes)-1]
	ins.scopes = ins.scopes[:len(ins.scopes)-1]

	a := ins.a
	if a.enabled(RuleFanOut) && a.cfg.MaxFanOut > 0 && len(scope.callees) > a.cfg.MaxFanOut {
		ins.issues = append(ins.issues, newIssue(ins.path, RuleFanOut, scope.startLine,
			fmt.Sprintf("function %q calls %d distinct functions (max %d)", scope.name, len(scope.callees), a.cfg.MaxFanOut)))
	}
	if a.enabled(RuleStaleVariable) {
		var stale []string
		for name := range scope.declared {
			if !scope.used[name] {
				stale = append(stale, name)
			}
		}
		sort.Strings(stale)
		for _, name := range stale {
			ins.issues = append(ins.issues, newIssue(ins.path, RuleStaleVariable, scope.declared[name],
				fmt.Sprintf("variable %q is declared but never used in %q", name, scope.name)))
		}
	}
}

func (ins *inspector) top() *funcScope {
	if len(ins.scopes) == 0 {
		return nil
	}
	return ins.scopes[len(ins.scopes)-1]
}

func (ins *inspector) checkNesting(n *sitter.Node) {
	a := ins.a
	if !a.enabled(RuleNestingDepth) || a.cfg.MaxNestingDepth <= 0 {
		return
	}
	// Report only the first level past the limit so one deep chain yields
	// one issue.
	if ins.depth == a.cfg.MaxNestingDepth+1 {
		ins.issues = append(ins.issues, newIssue(ins.path, RuleNestingDepth, parser.StartLine(n),
			fmt.Sprintf("control flow nested %d levels deep (max %d)", ins.depth, a.cfg.MaxNestingDepth)))
	}
}

func (ins *inspector) checkParams(n *sitter.Node, name string) {
	a := ins.a

	params := n.ChildByFieldName(ins.rules.paramsField)
	count := 0
	if params != nil {
		for i := range int(params.NamedChildCount()) {
			child := params.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}
			if parser.GetNodeText(child, ins.source) == "self" {
				continue
			}
			count++
			ins.checkParamName(child)
		}
	} else if single := n.ChildByFieldName("parameter"); single != nil {
		count = 1
		ins.checkParamName(single)
	}

	if a.enabled(RuleParameterCount) && a.cfg.MaxParameters > 0 && count > a.cfg.MaxParameters {
		ins.issues = append(ins.issues, newIssue(ins.path, RuleParameterCount, parser.StartLine(n),
			fmt.Sprintf("function %q takes %d parameters (max %d)", name, count, a.cfg.MaxParameters)))
	}
}

// checkParamName digs the identifier out of a parameter node, which may
// wrap it in type annotations or defaults.
func (ins *inspector) checkParamName(n *sitter.Node) {
	if n == nil {
		return
	}
	if n.Type() == "identifier" {
		ins.checkName(parser.GetNodeText(n, ins.source), parser.StartLine(n))
		return
	}
	for _, field := range []string{"name", "pattern"} {
		if child := n.ChildByFieldName(field); child != nil && child.Type() == "identifier" {
			ins.checkName(parser.GetNodeText(child, ins.source), parser.StartLine(child))
			return
		}
	}
}

func (ins *inspector) checkName(name string, line int) {
	a := ins.a
	if !a.enabled(RuleIdentifierLength) || a.cfg.MinNameLength <= 0 {
		return
	}
	if name == "" || name == "anonymous" || a.allowedNames[name] {
		return
	}
	if len(name) < a.cfg.MinNameLength {
		ins.issues = append(ins.issues, newIssue(ins.path, RuleIdentifierLength, line,
			fmt.Sprintf("identifier %q is shorter than %d characters", name, a.cfg.MinNameLength)))
	}
}

func (ins *inspector) checkMagicNumber(n *sitter.Node) {
	a := ins.a
	if !a.enabled(RuleMagicNumber) {
		return
	}

	text := parser.GetNodeText(n, ins.source)
	p := n.Parent()
	if p != nil && p.Type() == ins.rules.unaryType {
		text = parser.GetNodeText(p, ins.source)
		p = p.Parent()
	}
	if a.allowedNumbers[text] {
		return
	}
	// Numbers bound to a name explain themselves.
	if p != nil {
		switch p.Type() {
		case "variable_declarator", "assignment", "field_declaration",
			"default_parameter", "typed_default_parameter", "assignment_pattern",
			"pair", "keyword_argument":
			return
		}
	}

	ins.issues = append(ins.issues, newIssue(ins.path, RuleMagicNumber, parser.StartLine(n),
		fmt.Sprintf("magic number %s", text)))
}

func (ins *inspector) checkBooleanFlag(n *sitter.Node) {
	a := ins.a
	if !a.enabled(RuleBooleanFlag) {
		return
	}
	p := n.Parent()
	if p == nil {
		return
	}
	if p.Type() == "arguments" || p.Type() == "argument_list" {
		ins.issues = append(ins.issues, newIssue(ins.path, RuleBooleanFlag, parser.StartLine(n),
			fmt.Sprintf("boolean literal %s passed as argument", parser.GetNodeText(n, ins.source))))
	}
}

func (ins *inspector) recordCallee(n *sitter.Node) {
	scope := ins.top()
	if scope == nil {
		return
	}
	callee := n.ChildByFieldName(ins.rules.callField)
	if callee == nil {
		return
	}
	if name := parser.GetNodeText(callee, ins.source); name != "" {
		scope.callees[name] = true
	}
}

// classifyIdentifier feeds stale-variable tracking: declarations record
// the name, any other occurrence marks it used.
func (ins *inspector) classifyIdentifier(n *sitter.Node) {
	scope := ins.top()
	if scope == nil {
		return
	}
	name := parser.GetNodeText(n, ins.source)
	if name == "" {
		return
	}

	p := n.Parent()
	if p != nil && isDeclarationPosition(p, n) {
		scope.declared[name] = parser.StartLine(n)
		ins.checkName(name, parser.StartLine(n))
		return
	}

	for i := len(ins.scopes) - 1; i >= 0; i-- {
		if _, ok := ins.scopes[i].declared[name]; ok {
			ins.scopes[i].used[name] = true
			return
		}
	}
}

func isDeclarationPosition(parent, n *sitter.Node) bool {
	switch parent.Type() {
	case "variable_declarator":
		return parser.FieldName(parent, n) == "name"
	case "assignment":
		return parser.FieldName(parent, n) == "left"
	}
	return false
}
