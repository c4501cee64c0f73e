package cohesion

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/facetcode/facet/pkg/parser"
)

// anonymousName labels units the grammar gives no name to.
const anonymousName = "anonymous"

var jsBlockTags = map[string]string{
	"if_statement":     "if",
	"for_statement":    "for",
	"for_in_statement": "for-in",
	"while_statement":  "while",
	"do_statement":     "do-while",
	"switch_statement": "switch",
	"try_statement":    "try",
}

var pyBlockTags = map[string]string{
	"if_statement":    "if",
	"for_statement":   "for",
	"while_statement": "while",
	"try_statement":   "try",
	"match_statement": "switch",
	"with_statement":  "with",
}

var javaBlockTags = map[string]string{
	"if_statement":                 "if",
	"for_statement":                "for",
	"enhanced_for_statement":       "for",
	"while_statement":              "while",
	"do_statement":                 "do-while",
	"switch_expression":            "switch",
	"try_statement":                "try",
	"try_with_resources_statement": "try",
}

// walker drives a TraversalState from tree-sitter events. Completed units
// are handed to sink in exit order, innermost first.
type walker struct {
	state  *TraversalState
	lang   parser.Language
	source []byte
	sink   func(*Unit)
}

// runTraversal walks a parsed file and feeds every completed unit to sink.
func runTraversal(res *parser.ParseResult, state *TraversalState, sink func(*Unit)) {
	w := &walker{
		state:  state,
		lang:   res.Language,
		source: res.Source,
		sink:   sink,
	}
	root := res.Tree.RootNode()

	switch res.Language {
	case parser.LangPython:
		parser.WalkEvents(root, res.Source, w.enterPython, w.exitPython)
	case parser.LangJava:
		parser.WalkEvents(root, res.Source, w.enterJava, w.exitJava)
	default:
		parser.WalkEvents(root, res.Source, w.enterJS, w.exitJS)
	}
}

func (w *walker) emit(u *Unit) {
	if u != nil && w.sink != nil {
		w.sink(u)
	}
}

func (w *walker) text(n *sitter.Node) string {
	return parser.GetNodeText(n, w.source)
}

func parentIs(n *sitter.Node, nodeType string) bool {
	p := n.Parent()
	return p != nil && p.Type() == nodeType
}

// --- JavaScript / TypeScript / TSX ---

func (w *walker) enterJS(n *sitter.Node, nodeType string, _ []byte) bool {
	// Keyword tokens share their type string with the named nodes they
	// introduce ("function", "class"); only the named nodes are units.
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_declaration", "class":
		w.state.EnterUnit(UnitClass, w.jsName(n), parser.StartLine(n), parser.EndLine(n))
	case "method_definition":
		name := w.text(n.ChildByFieldName("name"))
		if name == "" {
			name = anonymousName
		}
		if parentIs(n, "class_body") {
			w.state.EnterMethod(name, name == "constructor", parser.StartLine(n), parser.EndLine(n))
		}
		w.state.EnterUnit(UnitFunction, name, parser.StartLine(n), parser.EndLine(n))
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function", "arrow_function":
		w.state.EnterUnit(UnitFunction, w.jsName(n), parser.StartLine(n), parser.EndLine(n))
	case "member_expression":
		obj := n.ChildByFieldName("object")
		if obj != nil && obj.Type() == "this" {
			if prop := w.text(n.ChildByFieldName("property")); prop != "" {
				w.state.RecordMember(prop)
			}
		}
	case "identifier":
		w.classifyJS(n, w.text(n))
	case "shorthand_property_identifier":
		w.state.RecordRead(w.text(n))
	case "shorthand_property_identifier_pattern":
		w.state.RecordWrite(w.text(n))
	default:
		if tag, ok := jsBlockTags[nodeType]; ok {
			w.state.EnterBlock(tag, parser.StartLine(n), parser.EndLine(n))
		}
	}
	return true
}

func (w *walker) exitJS(n *sitter.Node, nodeType string, _ []byte) bool {
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_declaration", "class":
		w.emit(w.state.ExitUnit())
	case "method_definition":
		w.emit(w.state.ExitUnit())
		if parentIs(n, "class_body") {
			w.state.ExitMethod()
		}
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function", "arrow_function":
		w.emit(w.state.ExitUnit())
	default:
		if _, ok := jsBlockTags[nodeType]; ok {
			w.state.ExitBlock()
		}
	}
	return true
}

func (w *walker) classifyJS(n *sitter.Node, name string) {
	if name == "" {
		return
	}
	p := n.Parent()
	if p == nil {
		w.state.RecordRead(name)
		return
	}
	field := parser.FieldName(p, n)

	switch p.Type() {
	case "variable_declarator":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "assignment_expression":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "augmented_assignment_expression":
		if field == "left" {
			w.state.RecordWrite(name)
			w.state.RecordRead(name)
			return
		}
	case "update_expression":
		w.state.RecordWrite(name)
		w.state.RecordRead(name)
		return
	case "formal_parameters", "required_parameter", "optional_parameter", "rest_pattern":
		w.state.RecordWrite(name)
		return
	case "assignment_pattern":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "arrow_function":
		if field == "parameter" {
			w.state.RecordWrite(name)
			return
		}
	case "for_in_statement":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "function_declaration", "generator_function_declaration", "function_expression",
		"function", "generator_function", "class_declaration", "class", "method_definition":
		if field == "name" {
			return
		}
	case "member_expression":
		if field == "property" {
			return
		}
	case "labeled_statement", "break_statement", "continue_statement":
		return
	}
	w.state.RecordRead(name)
}

// jsName resolves a unit's name from its name field, or from the
// declaration it is assigned to.
func (w *walker) jsName(n *sitter.Node) string {
	if name := w.text(n.ChildByFieldName("name")); name != "" {
		return name
	}
	p := n.Parent()
	if p == nil {
		return anonymousName
	}
	switch p.Type() {
	case "variable_declarator":
		if name := w.text(p.ChildByFieldName("name")); name != "" {
			return name
		}
	case "assignment_expression":
		if name := w.text(p.ChildByFieldName("left")); name != "" {
			return name
		}
	case "pair":
		if name := w.text(p.ChildByFieldName("key")); name != "" {
			return name
		}
	case "public_field_definition":
		if name := w.text(p.ChildByFieldName("property")); name != "" {
			return name
		}
	}
	return anonymousName
}

// --- Python ---

func (w *walker) enterPython(n *sitter.Node, nodeType string, _ []byte) bool {
	// The "lambda" keyword token shares its type with the lambda node.
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_definition":
		name := w.text(n.ChildByFieldName("name"))
		if name == "" {
			name = anonymousName
		}
		w.state.EnterUnit(UnitClass, name, parser.StartLine(n), parser.EndLine(n))
	case "function_definition":
		name := w.text(n.ChildByFieldName("name"))
		if name == "" {
			name = anonymousName
		}
		if isPythonMethod(n) {
			w.state.EnterMethod(name, name == "__init__", parser.StartLine(n), parser.EndLine(n))
		}
		w.state.EnterUnit(UnitFunction, name, parser.StartLine(n), parser.EndLine(n))
	case "lambda":
		w.state.EnterUnit(UnitFunction, anonymousName, parser.StartLine(n), parser.EndLine(n))
	case "attribute":
		obj := n.ChildByFieldName("object")
		if obj != nil && obj.Type() == "identifier" && w.text(obj) == "self" {
			if attr := w.text(n.ChildByFieldName("attribute")); attr != "" {
				w.state.RecordMember(attr)
			}
		}
	case "identifier":
		w.classifyPython(n, w.text(n))
	default:
		if tag, ok := pyBlockTags[nodeType]; ok {
			w.state.EnterBlock(tag, parser.StartLine(n), parser.EndLine(n))
		}
	}
	return true
}

func (w *walker) exitPython(n *sitter.Node, nodeType string, _ []byte) bool {
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_definition":
		w.emit(w.state.ExitUnit())
	case "function_definition":
		w.emit(w.state.ExitUnit())
		if isPythonMethod(n) {
			w.state.ExitMethod()
		}
	case "lambda":
		w.emit(w.state.ExitUnit())
	default:
		if _, ok := pyBlockTags[nodeType]; ok {
			w.state.ExitBlock()
		}
	}
	return true
}

// isPythonMethod reports whether a function definition sits directly in a
// class body, looking through decorators.
func isPythonMethod(n *sitter.Node) bool {
	p := n.Parent()
	if p != nil && p.Type() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Type() != "block" {
		return false
	}
	gp := p.Parent()
	return gp != nil && gp.Type() == "class_definition"
}

func (w *walker) classifyPython(n *sitter.Node, name string) {
	// The receiver carries no cohesion signal of its own; member accesses
	// through it are tracked separately.
	if name == "" || name == "self" {
		return
	}
	p := n.Parent()
	if p == nil {
		w.state.RecordRead(name)
		return
	}
	field := parser.FieldName(p, n)

	switch p.Type() {
	case "assignment":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "augmented_assignment":
		if field == "left" {
			w.state.RecordWrite(name)
			w.state.RecordRead(name)
			return
		}
	case "named_expression":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "pattern_list", "tuple_pattern", "list_pattern":
		w.state.RecordWrite(name)
		return
	case "parameters", "lambda_parameters", "typed_parameter":
		w.state.RecordWrite(name)
		return
	case "default_parameter", "typed_default_parameter":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "for_statement", "for_in_clause":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "attribute":
		if field == "attribute" {
			return
		}
	case "keyword_argument":
		if field == "name" {
			return
		}
	case "function_definition", "class_definition":
		if field == "name" {
			return
		}
	case "global_statement", "nonlocal_statement":
		return
	}
	w.state.RecordRead(name)
}

// --- Java ---

func (w *walker) enterJava(n *sitter.Node, nodeType string, _ []byte) bool {
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_declaration":
		name := w.text(n.ChildByFieldName("name"))
		if name == "" {
			name = anonymousName
		}
		w.state.EnterUnit(UnitClass, name, parser.StartLine(n), parser.EndLine(n))
	case "method_declaration", "constructor_declaration":
		name := w.text(n.ChildByFieldName("name"))
		if name == "" {
			name = anonymousName
		}
		if parentIs(n, "class_body") {
			w.state.EnterMethod(name, nodeType == "constructor_declaration", parser.StartLine(n), parser.EndLine(n))
		}
		w.state.EnterUnit(UnitFunction, name, parser.StartLine(n), parser.EndLine(n))
	case "lambda_expression":
		w.state.EnterUnit(UnitFunction, anonymousName, parser.StartLine(n), parser.EndLine(n))
	case "field_access":
		obj := n.ChildByFieldName("object")
		if obj != nil && obj.Type() == "this" {
			if fld := w.text(n.ChildByFieldName("field")); fld != "" {
				w.state.RecordMember(fld)
			}
		}
	case "method_invocation":
		obj := n.ChildByFieldName("object")
		if obj == nil || obj.Type() == "this" {
			if name := w.text(n.ChildByFieldName("name")); name != "" {
				w.state.RecordMember(name)
			}
		}
	case "identifier":
		w.classifyJava(n, w.text(n))
	default:
		if tag, ok := javaBlockTags[nodeType]; ok {
			w.state.EnterBlock(tag, parser.StartLine(n), parser.EndLine(n))
		}
	}
	return true
}

func (w *walker) exitJava(n *sitter.Node, nodeType string, _ []byte) bool {
	if !n.IsNamed() {
		return true
	}
	switch nodeType {
	case "class_declaration":
		w.emit(w.state.ExitUnit())
	case "method_declaration", "constructor_declaration":
		w.emit(w.state.ExitUnit())
		if parentIs(n, "class_body") {
			w.state.ExitMethod()
		}
	case "lambda_expression":
		w.emit(w.state.ExitUnit())
	default:
		if _, ok := javaBlockTags[nodeType]; ok {
			w.state.ExitBlock()
		}
	}
	return true
}

func (w *walker) classifyJava(n *sitter.Node, name string) {
	if name == "" {
		return
	}
	p := n.Parent()
	if p == nil {
		w.state.RecordRead(name)
		return
	}
	field := parser.FieldName(p, n)

	switch p.Type() {
	case "variable_declarator":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "assignment_expression":
		if field == "left" {
			w.state.RecordWrite(name)
			return
		}
	case "update_expression":
		w.state.RecordWrite(name)
		w.state.RecordRead(name)
		return
	case "formal_parameter", "catch_formal_parameter":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "enhanced_for_statement":
		if field == "name" {
			w.state.RecordWrite(name)
			return
		}
	case "field_access":
		if field == "field" {
			return
		}
	case "method_invocation":
		if field == "name" {
			return
		}
	case "method_declaration", "constructor_declaration", "class_declaration":
		if field == "name" {
			return
		}
	case "labeled_statement", "break_statement", "continue_statement":
		return
	}
	w.state.RecordRead(name)
}
