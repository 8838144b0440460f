package registry

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Load parses the application rooted at dir into typed registries. The
// source tree is only parsed, never built or imported. dir must contain the
// root package plus the urls, views, serializers and controllers packages;
// the permissions package is optional.
func Load(dir string) (*Application, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve %q: %w", dir, err)
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("registry: application module %q not found", dir)
	}

	app := &Application{
		Name:        filepath.Base(abs),
		Views:       map[string]ViewFile{},
		Handlers:    map[string]Handler{},
		Serializers: map[string]Serializer{},
		Controllers: map[string]Controller{},
		Permissions: map[string]PermissionSet{},
	}

	fset := token.NewFileSet()

	root, err := parseDir(fset, abs)
	if err != nil {
		return nil, fmt.Errorf("registry: load module %s: %w", app.Name, err)
	}
	loadRoot(app, root)

	urls, err := parseDir(fset, filepath.Join(abs, "urls"))
	if err != nil {
		return nil, fmt.Errorf("registry: load %s.urls: %w", app.Name, err)
	}
	if err := loadRoutes(app, urls); err != nil {
		return nil, fmt.Errorf("registry: load %s.urls: %w", app.Name, err)
	}

	views, err := parseDir(fset, filepath.Join(abs, "views"))
	if err != nil {
		return nil, fmt.Errorf("registry: load %s.views: %w", app.Name, err)
	}
	loadViews(app, views)

	serializers, err := parseDir(fset, filepath.Join(abs, "serializers"))
	if err != nil {
		return nil, fmt.Errorf("registry: load %s.serializers: %w", app.Name, err)
	}
	loadSerializers(app, serializers)

	controllers, err := parseDir(fset, filepath.Join(abs, "controllers"))
	if err != nil {
		return nil, fmt.Errorf("registry: load %s.controllers: %w", app.Name, err)
	}
	loadControllers(app, controllers)

	// Permission declarations are optional.
	permDir := filepath.Join(abs, "permissions")
	if st, err := os.Stat(permDir); err == nil && st.IsDir() {
		permissions, err := parseDir(fset, permDir)
		if err != nil {
			return nil, fmt.Errorf("registry: load %s.permissions: %w", app.Name, err)
		}
		loadPermissions(app, permissions)
	}

	return app, nil
}

// parsedFile pairs a parsed file with its base name so later stages can key
// declarations by the declaring file.
type parsedFile struct {
	name string // base name without the .go extension
	file *ast.File
}

func parseDir(fset *token.FileSet, dir string) ([]parsedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []parsedFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		files = append(files, parsedFile{name: strings.TrimSuffix(name, ".go"), file: f})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

func loadRoot(app *Application, files []parsedFile) {
	for _, pf := range files {
		if app.Doc == "" && pf.file.Doc != nil {
			app.Doc = pf.file.Doc.Text()
		}
		ast.Inspect(pf.file, func(n ast.Node) bool {
			gd, ok := n.(*ast.GenDecl)
			if !ok || (gd.Tok != token.CONST && gd.Tok != token.VAR) {
				return true
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for i, ident := range vs.Names {
					if ident.Name != "Version" || i >= len(vs.Values) {
						continue
					}
					if lit, ok := vs.Values[i].(*ast.BasicLit); ok && lit.Kind == token.STRING {
						if v, err := strconv.Unquote(lit.Value); err == nil {
							app.Version = v
						}
					}
				}
			}
			return false
		})
	}
}

func loadRoutes(app *Application, files []parsedFile) error {
	var patterns *ast.CompositeLit
	for _, pf := range files {
		ast.Inspect(pf.file, func(n ast.Node) bool {
			vs, ok := n.(*ast.ValueSpec)
			if !ok {
				return true
			}
			for i, ident := range vs.Names {
				if ident.Name != "Patterns" || i >= len(vs.Values) {
					continue
				}
				if cl, ok := vs.Values[i].(*ast.CompositeLit); ok {
					patterns = cl
				}
			}
			return false
		})
	}
	if patterns == nil {
		return fmt.Errorf("no Patterns route table declared")
	}
	for i, elt := range patterns.Elts {
		cl, ok := elt.(*ast.CompositeLit)
		if !ok {
			return fmt.Errorf("route table entry %d is not a composite literal", i)
		}
		route, err := decodeRoute(cl)
		if err != nil {
			return fmt.Errorf("route table entry %d: %w", i, err)
		}
		app.Routes = append(app.Routes, route)
	}
	return nil
}

func decodeRoute(cl *ast.CompositeLit) (Route, error) {
	var r Route
	for i, elt := range cl.Elts {
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return r, fmt.Errorf("unsupported key expression")
			}
			val, err := stringLit(kv.Value)
			if err != nil {
				return r, err
			}
			switch key.Name {
			case "Pattern":
				r.Pattern = val
			case "View":
				r.View = val
			default:
				return r, fmt.Errorf("unknown field %q", key.Name)
			}
			continue
		}
		val, err := stringLit(elt)
		if err != nil {
			return r, err
		}
		switch i {
		case 0:
			r.Pattern = val
		case 1:
			r.View = val
		default:
			return r, fmt.Errorf("too many positional values")
		}
	}
	if r.View == "" {
		return r, fmt.Errorf("missing view reference")
	}
	return r, nil
}

func stringLit(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", fmt.Errorf("expected string literal")
	}
	return strconv.Unquote(lit.Value)
}

func loadViews(app *Application, files []parsedFile) {
	for _, pf := range files {
		vf := ViewFile{Name: pf.name}
		if pf.file.Doc != nil {
			vf.Doc = pf.file.Doc.Text()
		}
		app.Views[pf.name] = vf
		app.ViewNames = append(app.ViewNames, pf.name)

		for name := range structTypes(pf.file) {
			app.Handlers[name] = Handler{Name: name, View: pf.name, Methods: map[string]string{}}
		}
		for _, fd := range methodDecls(pf.file) {
			recv := receiverName(fd)
			h, ok := app.Handlers[recv]
			if !ok {
				continue
			}
			verb := strings.ToLower(fd.Name.Name)
			if !isHTTPMethodName(verb) {
				continue
			}
			h.Methods[verb] = docText(fd.Doc)
			app.Handlers[recv] = h
		}
	}
	sort.Strings(app.ViewNames)
}

func loadSerializers(app *Application, files []parsedFile) {
	for _, pf := range files {
		for _, ts := range typeSpecs(pf.file) {
			name := ts.spec.Name.Name
			if !strings.HasSuffix(name, "Serializer") {
				continue
			}
			st, ok := ts.spec.Type.(*ast.StructType)
			if !ok {
				continue
			}
			s := Serializer{Name: name, Doc: ts.doc}
			for _, field := range st.Fields.List {
				for _, ident := range field.Names {
					out := outputFieldName(ident.Name, field.Tag)
					if out == "" {
						continue
					}
					s.Fields = append(s.Fields, out)
				}
			}
			app.Serializers[name] = s
		}
	}
}

func loadControllers(app *Application, files []parsedFile) {
	for _, pf := range files {
		for _, ts := range typeSpecs(pf.file) {
			name := ts.spec.Name.Name
			if !strings.HasSuffix(name, "Controller") {
				continue
			}
			app.Controllers[name] = Controller{Name: name, Doc: ts.doc, Validators: map[string]string{}}
		}
		for _, fd := range methodDecls(pf.file) {
			recv := receiverName(fd)
			c, ok := app.Controllers[recv]
			if !ok {
				continue
			}
			field := strings.TrimPrefix(fd.Name.Name, "Validate")
			if field == fd.Name.Name || field == "" {
				continue
			}
			c.Validators[camelToSnake(field)] = docText(fd.Doc)
			app.Controllers[recv] = c
		}
	}
}

func loadPermissions(app *Application, files []parsedFile) {
	for _, pf := range files {
		for _, ts := range typeSpecs(pf.file) {
			name := ts.spec.Name.Name
			if !strings.HasSuffix(name, "Permissions") {
				continue
			}
			entity := strings.TrimSuffix(name, "Permissions")
			if entity == "" {
				continue
			}
			key := strings.ToLower(entity)
			app.Permissions[key] = PermissionSet{Entity: entity, Methods: map[string]string{}}
		}
		for _, fd := range methodDecls(pf.file) {
			recv := receiverName(fd)
			entity := strings.TrimSuffix(recv, "Permissions")
			if entity == recv || entity == "" {
				continue
			}
			ps, ok := app.Permissions[strings.ToLower(entity)]
			if !ok {
				continue
			}
			method := strings.ToLower(fd.Name.Name)
			switch method {
			case "list", "read", "create", "update", "delete":
				ps.Methods[method] = docText(fd.Doc)
			}
		}
	}
}

// typedSpec pairs a type spec with its effective doc comment, which may live
// on the enclosing GenDecl for single-spec declarations.
type typedSpec struct {
	spec *ast.TypeSpec
	doc  string
}

func typeSpecs(f *ast.File) []typedSpec {
	var specs []typedSpec
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil {
				doc = gd.Doc
			}
			specs = append(specs, typedSpec{spec: ts, doc: docText(doc)})
		}
	}
	return specs
}

func structTypes(f *ast.File) map[string]string {
	types := map[string]string{}
	for _, ts := range typeSpecs(f) {
		if _, ok := ts.spec.Type.(*ast.StructType); ok {
			types[ts.spec.Name.Name] = ts.doc
		}
	}
	return types
}

func methodDecls(f *ast.File) []*ast.FuncDecl {
	var decls []*ast.FuncDecl
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
			continue
		}
		decls = append(decls, fd)
	}
	return decls
}

func receiverName(fd *ast.FuncDecl) string {
	expr := fd.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return cg.Text()
}

func isHTTPMethodName(name string) bool {
	for _, m := range HTTPMethodNames {
		if name == m {
			return true
		}
	}
	return false
}

// outputFieldName derives the wire name of a serializer field: the json tag
// when present, otherwise the snake_case form of the Go field name. A json
// tag of "-" drops the field.
func outputFieldName(goName string, tag *ast.BasicLit) string {
	if tag != nil {
		raw, err := strconv.Unquote(tag.Value)
		if err == nil {
			if jsonTag, ok := reflect.StructTag(raw).Lookup("json"); ok {
				name := strings.Split(jsonTag, ",")[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
		}
	}
	return camelToSnake(goName)
}

func camelToSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
