// Package render substitutes named placeholders into template text.
//
// A placeholder is written {{name}} or {{ .name }} and may be piped through
// the sprig function library, for example {{ app_name | upper }}. Every
// placeholder must have a substitution: unresolved names are reported as
// failure.KindUnresolvedPlaceholder before anything is executed.
package render

import (
	"bytes"
	"errors"
	"io/fs"
	"maps"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/Masterminds/sprig/v3"

	"github.com/systemstart/many-scaffold/pkg/failure"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// builtins are the functions text/template defines itself.
var builtins = []string{
	"and", "call", "html", "index", "slice", "js", "len", "not", "or",
	"print", "printf", "println", "urlquery",
	"eq", "ge", "gt", "le", "lt", "ne",
}

// ValidName reports whether name can be used as a substitution key.
func ValidName(name string) bool {
	return identifierPattern.MatchString(name)
}

// File renders the template at path in src.
func File(src fs.FS, path string, subs map[string]string) (string, error) {
	body, err := fs.ReadFile(src, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", failure.WithPath(failure.KindTemplateNotFound, path, "", nil)
		}
		return "", failure.FromFS(path, err)
	}

	out, err := String(path, string(body), subs)
	if err != nil {
		if fe, ok := failure.As(err); ok && fe.Path == "" {
			fe.Path = path
		}
		return "", err
	}
	return out, nil
}

// String renders body. name is only used in error messages.
func String(name, body string, subs map[string]string) (string, error) {
	for _, k := range slices.Sorted(maps.Keys(subs)) {
		if !ValidName(k) {
			return "", failure.Newf(failure.KindConfiguration, "invalid substitution name %q", k)
		}
	}
	funcs := funcMap(subs)

	missing, err := unresolved(name, body, funcs, subs)
	if err != nil {
		return "", failure.Wrap(failure.KindConfiguration, "parsing template", err)
	}
	if len(missing) > 0 {
		return "", failure.Newf(failure.KindUnresolvedPlaceholder, "no substitution for %s", strings.Join(missing, ", "))
	}

	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", failure.Wrap(failure.KindConfiguration, "parsing template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, subs); err != nil {
		return "", failure.Wrap(failure.KindConfiguration, "executing template", err)
	}
	return buf.String(), nil
}

// funcMap returns sprig's functions with one zero-argument function per
// substitution, so {{name}} resolves to its value. Substitutions shadow sprig.
func funcMap(subs map[string]string) template.FuncMap {
	funcs := sprig.TxtFuncMap()
	for k, v := range subs {
		funcs[k] = func() string { return v }
	}
	return funcs
}

// unresolved parses body without checking functions and returns the sorted
// placeholder names without a substitution.
//
// A bare identifier is a placeholder and resolves only through subs, even when
// sprig has a function of that name. An identifier is a function call only at
// the head of a command that takes arguments or piped input; unknown function
// names are reported too.
func unresolved(name, body string, funcs template.FuncMap, subs map[string]string) ([]string, error) {
	tree := parse.New(name)
	tree.Mode = parse.SkipFuncCheck
	treeSet := make(map[string]*parse.Tree)
	if _, err := tree.Parse(body, "", "", treeSet); err != nil {
		return nil, err
	}

	missing := make(map[string]bool)
	w := walker{
		isFunc: func(ident string) bool {
			_, ok := funcs[ident]
			return ok || slices.Contains(builtins, ident)
		},
		hasKey: func(key string) bool {
			_, ok := subs[key]
			return ok
		},
		missing: missing,
	}
	for _, t := range treeSet {
		w.walk(t.Root)
	}

	return slices.Sorted(maps.Keys(missing)), nil
}

type walker struct {
	isFunc  func(string) bool
	hasKey  func(string) bool
	missing map[string]bool
}

func (w walker) walk(node parse.Node) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			w.walk(c)
		}
	case *parse.ActionNode:
		w.walk(n.Pipe)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for i, c := range n.Cmds {
			w.walkCommand(c, i > 0)
		}
	case *parse.CommandNode:
		w.walkCommand(n, false)
	case *parse.IdentifierNode:
		w.placeholder(n.Ident)
	case *parse.FieldNode:
		if len(n.Ident) > 0 && !w.hasKey(n.Ident[0]) {
			w.missing["."+n.Ident[0]] = true
		}
	case *parse.ChainNode:
		w.walk(n.Node)
	case *parse.IfNode:
		w.walkBranch(&n.BranchNode)
	case *parse.RangeNode:
		w.walkBranch(&n.BranchNode)
	case *parse.WithNode:
		w.walkBranch(&n.BranchNode)
	case *parse.TemplateNode:
		w.walk(n.Pipe)
	}
}

// walkCommand checks one pipeline stage. piped is set for every stage but the
// first, which receives the previous result as its final argument.
func (w walker) walkCommand(c *parse.CommandNode, piped bool) {
	for i, a := range c.Args {
		id, ok := a.(*parse.IdentifierNode)
		if !ok {
			w.walk(a)
			continue
		}
		if i == 0 && (piped || len(c.Args) > 1) {
			if !w.isFunc(id.Ident) {
				w.missing[id.Ident] = true
			}
			continue
		}
		w.placeholder(id.Ident)
	}
}

func (w walker) placeholder(ident string) {
	if !w.hasKey(ident) {
		w.missing[ident] = true
	}
}

func (w walker) walkBranch(b *parse.BranchNode) {
	w.walk(b.Pipe)
	w.walk(b.List)
	w.walk(b.ElseList)
}
