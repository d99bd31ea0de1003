package langmodel

import sitter "github.com/smacker/go-tree-sitter"

// functionLike nodes open a scope holding their parameters, type parameters
// and hoisted var bindings.
var functionLike = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
	"function_signature":             true,
	"method_signature":               true,
	"abstract_method_signature":      true,
	"function_type":                  true,
	"constructor_type":               true,
	"construct_signature":            true,
	"call_signature":                 true,
}

// blockDeclarations are statements that bind a name in their enclosing block.
var blockDeclarations = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"enum_declaration":               true,
	"lexical_declaration":            true,
	"variable_declaration":           true,
	"internal_module":                true,
	"module":                         true,
}

// resolvesToTop reports whether the identifier n refers to the module-level
// binding of its name, i.e. no enclosing scope rebinds it.
func resolvesToTop(n *sitter.Node, name string, src []byte) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "program" {
			return true
		}
		if scopeBinds(p, name, src) {
			return false
		}
	}
	return true
}

// scopeBinds reports whether scope introduces a local binding called name.
func scopeBinds(scope *sitter.Node, name string, src []byte) bool {
	found := false
	add := func(s string) {
		if s == name {
			found = true
		}
	}
	scopeBindings(scope, src, add)
	return found
}

func scopeBindings(scope *sitter.Node, src []byte, add func(string)) {
	t := scope.Type()
	switch {
	case functionLike[t]:
		if t == "function_expression" || t == "function" || t == "generator_function" {
			if name := scope.ChildByFieldName("name"); name != nil {
				add(nodeText(name, src))
			}
		}
		typeParameterNames(scope, src, add)
		if params := scope.ChildByFieldName("parameters"); params != nil {
			for _, prm := range namedChildren(params) {
				bindingNames(prm, src, add)
			}
		}
		if prm := scope.ChildByFieldName("parameter"); prm != nil {
			bindingNames(prm, src, add)
		}
		if body := scope.ChildByFieldName("body"); body != nil && body.Type() == "statement_block" {
			hoistedVars(body, src, add)
		}
	case t == "class" || t == "class_declaration" || t == "abstract_class_declaration":
		if t == "class" {
			if name := scope.ChildByFieldName("name"); name != nil {
				add(nodeText(name, src))
			}
		}
		typeParameterNames(scope, src, add)
	case t == "interface_declaration" || t == "type_alias_declaration":
		typeParameterNames(scope, src, add)
	case t == "statement_block" || t == "class_static_block":
		for _, stmt := range namedChildren(scope) {
			statementBindings(stmt, src, add)
		}
	case t == "switch_body":
		for _, c := range namedChildren(scope) {
			for _, stmt := range namedChildren(c) {
				statementBindings(stmt, src, add)
			}
		}
	case t == "for_statement":
		if init := scope.ChildByFieldName("initializer"); init != nil {
			statementBindings(init, src, add)
		}
	case t == "for_in_statement":
		if scope.ChildByFieldName("kind") != nil {
			if left := scope.ChildByFieldName("left"); left != nil {
				bindingNames(left, src, add)
			}
		}
	case t == "catch_clause":
		if prm := scope.ChildByFieldName("parameter"); prm != nil {
			bindingNames(prm, src, add)
		}
	case t == "index_signature":
		if name := scope.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			add(nodeText(name, src))
		}
		if clause := firstNamedOfType(scope, "mapped_type_clause"); clause != nil {
			if name := clause.ChildByFieldName("name"); name != nil {
				add(nodeText(name, src))
			}
		}
	case t == "enum_body":
		for _, m := range namedChildren(scope) {
			if m.Type() == "enum_assignment" {
				m = m.ChildByFieldName("name")
			}
			if m != nil && m.Type() == "property_identifier" {
				add(nodeText(m, src))
			}
		}
	case t == "conditional_type":
		if right := scope.ChildByFieldName("right"); right != nil {
			walk(right, func(n *sitter.Node) bool {
				if n.Type() == "infer_type" {
					if id := firstNamedOfType(n, "type_identifier"); id != nil {
						add(nodeText(id, src))
					}
				}
				return true
			})
		}
	}
}

func typeParameterNames(n *sitter.Node, src []byte, add func(string)) {
	tps := n.ChildByFieldName("type_parameters")
	if tps == nil {
		tps = firstNamedOfType(n, "type_parameters")
	}
	for _, tp := range namedChildren(tps) {
		if tp.Type() != "type_parameter" {
			continue
		}
		name := tp.ChildByFieldName("name")
		if name == nil {
			name = firstNamedOfType(tp, "type_identifier")
		}
		if name != nil {
			add(nodeText(name, src))
		}
	}
}

// hoistedVars collects `var` declarations anywhere in a function body without
// descending into nested functions.
func hoistedVars(body *sitter.Node, src []byte, add func(string)) {
	walk(body, func(n *sitter.Node) bool {
		if functionLike[n.Type()] || n.Type() == "class" || n.Type() == "class_declaration" {
			return false
		}
		if n.Type() == "variable_declaration" {
			declaratorNames(n, src, add)
			return false
		}
		return true
	})
}

func declaratorNames(list *sitter.Node, src []byte, add func(string)) {
	for _, dc := range namedChildren(list) {
		if dc.Type() != "variable_declarator" {
			continue
		}
		if name := dc.ChildByFieldName("name"); name != nil {
			bindingNames(name, src, add)
		}
	}
}

// statementBindings reports the names a single statement binds in its
// enclosing block or module.
func statementBindings(stmt *sitter.Node, src []byte, add func(string)) {
	switch stmt.Type() {
	case "export_statement":
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			statementBindings(decl, src, add)
		}
		return
	case "ambient_declaration":
		for _, c := range namedChildren(stmt) {
			statementBindings(c, src, add)
		}
		return
	case "expression_statement":
		if m := firstNamedOfType(stmt, "internal_module"); m != nil {
			statementBindings(m, src, add)
		}
		return
	case "lexical_declaration", "variable_declaration":
		declaratorNames(stmt, src, add)
		return
	case "function_signature":
		if name := stmt.ChildByFieldName("name"); name != nil {
			add(nodeText(name, src))
		}
		return
	}
	if !blockDeclarations[stmt.Type()] {
		return
	}
	name := stmt.ChildByFieldName("name")
	if name == nil {
		return
	}
	switch name.Type() {
	case "identifier", "type_identifier":
		add(nodeText(name, src))
	case "nested_identifier":
		if id := firstNamedOfType(name, "identifier"); id != nil {
			add(nodeText(id, src))
		}
	}
}

// bindingNames collects identifiers introduced by a binding pattern.
func bindingNames(n *sitter.Node, src []byte, add func(string)) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		add(nodeText(n, src))
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, c := range namedChildren(n) {
			bindingNames(c, src, add)
		}
	case "pair_pattern":
		bindingNames(n.ChildByFieldName("value"), src, add)
	case "assignment_pattern", "object_assignment_pattern":
		bindingNames(n.ChildByFieldName("left"), src, add)
	case "required_parameter", "optional_parameter":
		bindingNames(n.ChildByFieldName("pattern"), src, add)
	}
}

// collectModuleBindings records every name bound at module scope: declarations,
// namespaces and import bindings.
func collectModuleBindings(root *sitter.Node, src []byte, names map[string]bool) {
	add := func(s string) { names[s] = true }
	for _, stmt := range namedChildren(root) {
		if stmt.Type() == "import_statement" {
			importBindings(stmt, src, add)
			continue
		}
		statementBindings(stmt, src, add)
	}
}

func importBindings(stmt *sitter.Node, src []byte, add func(string)) {
	if req := firstNamedOfType(stmt, "import_require_clause"); req != nil {
		if id := firstNamedOfType(req, "identifier"); id != nil {
			add(nodeText(id, src))
		}
		return
	}
	d := parseImport(stmt, src)
	if d == nil {
		return
	}
	for _, name := range d.LocalNames() {
		add(name)
	}
}
