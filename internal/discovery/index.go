package discovery

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// TypeInfo is one declared type from the scanned tree.
type TypeInfo struct {
	Name      string
	Namespace string
	File      string
	Struct    bool
	Exported  bool
	Generic   bool
	Embeds    []TypeRef
	TableName string

	imports map[string]string // local name -> import path
}

// TypeRef is an embedded field's type, without pointer or type arguments.
type TypeRef struct {
	Qualifier string
	Name      string
}

func (r TypeRef) String() string {
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

// Index is the class map of a scanned tree, in walk order.
type Index struct {
	Types []*TypeInfo

	byKey    map[string]*TypeInfo
	relDirs  map[string]string // relative dir -> namespace
	rootBase string
}

func key(namespace, name string) string {
	return namespace + "." + name
}

// Lookup returns the type declared as name in namespace.
func (ix *Index) Lookup(namespace, name string) (*TypeInfo, bool) {
	t, ok := ix.byKey[key(namespace, name)]
	return t, ok
}

// Index walks root and records every type declared in its Go files. Files
// that fail to read or parse are skipped.
func (s *Scanner) Index(root string) (*Index, error) {
	ix := &Index{
		byKey:    make(map[string]*TypeInfo),
		relDirs:  make(map[string]string),
		rootBase: filepath.Base(filepath.Clean(root)),
	}
	tableNames := make(map[string]string)
	fset := token.NewFileSet()

	err := afero.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != root && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") {
			return nil
		}

		src, err := afero.ReadFile(s.fs, p)
		if err != nil {
			return nil
		}
		file, err := parser.ParseFile(fset, p, src, parser.SkipObjectResolution)
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}
		namespace := s.namespaceFor(rel)
		ix.relDirs[rel] = namespace

		s.collect(ix, file, p, namespace, tableNames)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for k, table := range tableNames {
		if t, ok := ix.byKey[k]; ok {
			t.TableName = table
		}
	}
	return ix, nil
}

func skipDir(name string) bool {
	return name == "testdata" || name == "vendor" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (s *Scanner) namespaceFor(rel string) string {
	switch {
	case rel == "":
		return s.opts.RootNamespace
	case s.opts.RootNamespace == "":
		return rel
	default:
		return s.opts.RootNamespace + "/" + rel
	}
}

func (s *Scanner) collect(ix *Index, file *ast.File, p, namespace string, tableNames map[string]string) {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		local := path.Base(importPath)
		if imp.Name != nil {
			local = imp.Name.Name
		}
		imports[local] = importPath
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				info := &TypeInfo{
					Name:      ts.Name.Name,
					Namespace: namespace,
					File:      p,
					Exported:  ts.Name.IsExported(),
					Generic:   ts.TypeParams != nil && len(ts.TypeParams.List) > 0,
					imports:   imports,
				}
				if st, ok := ts.Type.(*ast.StructType); ok {
					info.Struct = true
					info.Embeds = embeddedRefs(st)
				}
				k := key(namespace, info.Name)
				if _, dup := ix.byKey[k]; dup {
					continue
				}
				ix.byKey[k] = info
				ix.Types = append(ix.Types, info)
			}
		case *ast.FuncDecl:
			if recv, table, ok := tableNameMethod(d); ok {
				tableNames[key(namespace, recv)] = table
			}
		}
	}
}

func embeddedRefs(st *ast.StructType) []TypeRef {
	var refs []TypeRef
	for _, field := range st.Fields.List {
		if len(field.Names) > 0 {
			continue
		}
		if ref, ok := typeRef(field.Type); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func typeRef(expr ast.Expr) (TypeRef, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		return TypeRef{Name: e.Name}, true
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			return TypeRef{Qualifier: x.Name, Name: e.Sel.Name}, true
		}
	case *ast.StarExpr:
		return typeRef(e.X)
	case *ast.IndexExpr:
		return typeRef(e.X)
	case *ast.IndexListExpr:
		return typeRef(e.X)
	}
	return TypeRef{}, false
}

// tableNameMethod matches `func (T) TableName() string { return "literal" }`.
func tableNameMethod(fn *ast.FuncDecl) (string, string, bool) {
	if fn.Name.Name != "TableName" || fn.Recv == nil || len(fn.Recv.List) != 1 || fn.Body == nil {
		return "", "", false
	}
	if fn.Type.Params != nil && len(fn.Type.Params.List) > 0 {
		return "", "", false
	}
	recv, ok := typeRef(fn.Recv.List[0].Type)
	if !ok || recv.Qualifier != "" {
		return "", "", false
	}
	if len(fn.Body.List) != 1 {
		return "", "", false
	}
	ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return "", "", false
	}
	lit, ok := ret.Results[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", "", false
	}
	table, err := strconv.Unquote(lit.Value)
	if err != nil || table == "" {
		return "", "", false
	}
	return recv.Name, table, true
}

// resolve finds the indexed type an embedded reference points at.
func (ix *Index) resolve(from *TypeInfo, ref TypeRef) (*TypeInfo, bool) {
	if ref.Qualifier == "" {
		return ix.Lookup(from.Namespace, ref.Name)
	}
	importPath, ok := from.imports[ref.Qualifier]
	if !ok {
		return nil, false
	}
	namespace, ok := ix.namespaceOf(importPath)
	if !ok {
		return nil, false
	}
	return ix.Lookup(namespace, ref.Name)
}

// namespaceOf maps an import path onto a scanned directory by the longest
// matching path suffix.
func (ix *Index) namespaceOf(importPath string) (string, bool) {
	best, found := "", false
	for rel := range ix.relDirs {
		if rel == "" {
			continue
		}
		if (importPath == rel || strings.HasSuffix(importPath, "/"+rel)) && len(rel) > len(best) {
			best, found = rel, true
		}
	}
	if found {
		return ix.relDirs[best], true
	}
	if ns, ok := ix.relDirs[""]; ok && (importPath == ix.rootBase || strings.HasSuffix(importPath, "/"+ix.rootBase)) {
		return ns, true
	}
	return "", false
}
