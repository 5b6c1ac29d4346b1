package arch_test

import (
	"go/ast"
	"strings"
	"testing"
)

// TestExportedSymbolsHaveGoDoc requires a doc comment that opens with the
// symbol's name on every exported declaration. Consts and vars declared in
// a group may instead rely on a line comment or the group's comment.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()
	pkgs := packages(t)
	for _, pkg := range sortedNames(pkgs) {
		for _, f := range pkgs[pkg] {
			for _, miss := range undocumented(f.ast) {
				t.Errorf("%s: exported %s lacks GoDoc starting with its name", f.path, miss)
			}
		}
	}
}

// undocumented lists the exported names in f whose documentation is missing
// or does not begin with the name.
func undocumented(f *ast.File) []string {
	var missing []string
	// named requires doc to open with name.
	named := func(name string, doc *ast.CommentGroup) {
		if doc == nil || !strings.HasPrefix(doc.Text(), name) {
			missing = append(missing, name)
		}
	}
	// covered accepts any comment on the line, the spec or its group.
	covered := func(name string, docs ...*ast.CommentGroup) {
		for _, d := range docs {
			if d != nil {
				return
			}
		}
		missing = append(missing, name)
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Name.IsExported() && (d.Recv == nil || exportedReceiver(d.Recv)) {
				named(d.Name.Name, d.Doc)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Name.IsExported() {
						doc := s.Doc
						if doc == nil && !d.Lparen.IsValid() {
							doc = d.Doc
						}
						named(s.Name.Name, doc)
					}
				case *ast.ValueSpec:
					for _, n := range s.Names {
						if !n.IsExported() {
							continue
						}
						if d.Lparen.IsValid() {
							covered(n.Name, s.Doc, s.Comment, d.Doc)
						} else {
							named(n.Name, d.Doc)
						}
					}
				}
			}
		}
	}
	return missing
}

// exportedReceiver reports whether a method's receiver type is exported;
// methods on unexported types are not part of the package API.
func exportedReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) == 0 {
		return false
	}
	typ := recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if idx, ok := typ.(*ast.IndexExpr); ok {
		typ = idx.X
	}
	id, ok := typ.(*ast.Ident)
	return ok && id.IsExported()
}
