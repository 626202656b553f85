package extractor

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"docdex/pkg/types"
)

// Context owns the extraction state for a run of files. It is not safe for
// concurrent use; the orchestrator processes files sequentially and replaces
// the Context at batch boundaries.
type Context struct {
	fset *token.FileSet
}

// NewContext creates a fresh extraction context.
func NewContext() *Context {
	return &Context{fset: token.NewFileSet()}
}

// Extract parses content (attributed to path for positions) and returns one
// record per declared symbol, keyed to relPath. Syntax errors are fatal to
// the enclosing build: the caller aborts rather than publishing a partial
// index.
func (c *Context) Extract(path, relPath string, content []byte) ([]types.SymbolRecord, error) {
	file, err := parser.ParseFile(c.fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", relPath, err)
	}

	v := &visitor{
		fset:    c.fset,
		relPath: relPath,
		pkg:     file.Name.Name,
	}
	ast.Inspect(file, v.visit)

	return v.records, nil
}

// visitor walks the AST collecting symbol records.
type visitor struct {
	fset    *token.FileSet
	relPath string
	pkg     string
	records []types.SymbolRecord
}

func (v *visitor) visit(node ast.Node) bool {
	if node == nil {
		return false
	}

	switch n := node.(type) {
	case *ast.FuncDecl:
		v.addFunction(n)
	case *ast.GenDecl:
		for _, spec := range n.Specs {
			switch s := spec.(type) {
			case *ast.TypeSpec:
				v.addType(s, n.Doc)
			case *ast.ValueSpec:
				v.addValues(s, n.Doc, n.Tok)
			}
		}
	}

	return true
}

func (v *visitor) add(rec types.SymbolRecord) {
	rec.ID = types.SymbolID(v.relPath, rec.Receiver, rec.Name, rec.Kind)
	v.records = append(v.records, rec)
}

func (v *visitor) addFunction(decl *ast.FuncDecl) {
	rec := types.SymbolRecord{
		Name:      decl.Name.Name,
		Kind:      types.KindFunction,
		File:      v.relPath,
		Package:   v.pkg,
		Signature: v.functionSignature(decl),
		Doc:       docText(decl.Doc),
		Line:      v.fset.Position(decl.Pos()).Line,
		Exported:  token.IsExported(decl.Name.Name),
	}

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		rec.Kind = types.KindMethod
		rec.Receiver = receiverName(decl.Recv.List[0].Type)
	}

	v.add(rec)
}

func (v *visitor) addType(spec *ast.TypeSpec, doc *ast.CommentGroup) {
	if spec.Doc != nil {
		doc = spec.Doc
	}

	rec := types.SymbolRecord{
		Name:     spec.Name.Name,
		File:     v.relPath,
		Package:  v.pkg,
		Doc:      docText(doc),
		Line:     v.fset.Position(spec.Pos()).Line,
		Exported: token.IsExported(spec.Name.Name),
	}

	switch t := spec.Type.(type) {
	case *ast.StructType:
		rec.Kind = types.KindStruct
		rec.Signature = fmt.Sprintf("type %s struct { ... } // %d fields", spec.Name.Name, t.Fields.NumFields())
	case *ast.InterfaceType:
		rec.Kind = types.KindInterface
		rec.Signature = fmt.Sprintf("type %s interface { ... } // %d methods", spec.Name.Name, t.Methods.NumFields())
	default:
		rec.Kind = types.KindType
		rec.Signature = fmt.Sprintf("type %s %s", spec.Name.Name, exprString(spec.Type))
	}

	v.add(rec)

	if structType, ok := spec.Type.(*ast.StructType); ok {
		v.addFields(spec.Name.Name, structType)
	}
}

func (v *visitor) addFields(structName string, structType *ast.StructType) {
	if structType.Fields == nil {
		return
	}

	for _, field := range structType.Fields.List {
		for _, name := range field.Names {
			v.add(types.SymbolRecord{
				Name:      name.Name,
				Kind:      types.KindField,
				File:      v.relPath,
				Package:   v.pkg,
				Receiver:  structName,
				Signature: fmt.Sprintf("%s %s", name.Name, exprString(field.Type)),
				Doc:       docText(field.Doc),
				Line:      v.fset.Position(field.Pos()).Line,
				Exported:  token.IsExported(name.Name),
			})
		}
	}
}

func (v *visitor) addValues(spec *ast.ValueSpec, doc *ast.CommentGroup, tok token.Token) {
	kind := types.KindVar
	if tok == token.CONST {
		kind = types.KindConst
	}
	if spec.Doc != nil {
		doc = spec.Doc
	}

	for _, name := range spec.Names {
		if name.Name == "_" {
			continue
		}

		sig := name.Name
		if spec.Type != nil {
			sig = fmt.Sprintf("%s %s", name.Name, exprString(spec.Type))
		} else if len(spec.Values) > 0 {
			sig = fmt.Sprintf("%s = ...", name.Name)
		}

		v.add(types.SymbolRecord{
			Name:      name.Name,
			Kind:      kind,
			File:      v.relPath,
			Package:   v.pkg,
			Signature: sig,
			Doc:       docText(doc),
			Line:      v.fset.Position(spec.Pos()).Line,
			Exported:  token.IsExported(name.Name),
		})
	}
}

// functionSignature renders a compact signature for a func or method.
func (v *visitor) functionSignature(decl *ast.FuncDecl) string {
	var sig strings.Builder

	sig.WriteString("func ")
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		sig.WriteString("(")
		sig.WriteString(exprString(decl.Recv.List[0].Type))
		sig.WriteString(") ")
	}
	sig.WriteString(decl.Name.Name)

	sig.WriteString("(")
	if decl.Type.Params != nil {
		sig.WriteString(fieldListString(decl.Type.Params))
	}
	sig.WriteString(")")

	if decl.Type.Results != nil {
		results := fieldListString(decl.Type.Results)
		if results != "" {
			if decl.Type.Results.NumFields() > 1 {
				sig.WriteString(" (")
				sig.WriteString(results)
				sig.WriteString(")")
			} else {
				sig.WriteString(" ")
				sig.WriteString(results)
			}
		}
	}

	return sig.String()
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func fieldListString(fields *ast.FieldList) string {
	if fields == nil || len(fields.List) == 0 {
		return ""
	}

	var parts []string
	for _, field := range fields.List {
		typeStr := exprString(field.Type)
		if len(field.Names) > 0 {
			for _, name := range field.Names {
				parts = append(parts, fmt.Sprintf("%s %s", name.Name, typeStr))
			}
		} else {
			parts = append(parts, typeStr)
		}
	}

	return strings.Join(parts, ", ")
}

func exprString(expr ast.Expr) string {
	if expr == nil {
		return ""
	}

	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.MapType:
		return fmt.Sprintf("map[%s]%s", exprString(t.Key), exprString(t.Value))
	case *ast.ChanType:
		return "chan " + exprString(t.Value)
	case *ast.FuncType:
		return "func(...)"
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.Ellipsis:
		return "..." + exprString(t.Elt)
	default:
		return "..."
	}
}

func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}
