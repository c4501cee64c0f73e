package parser

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"app.js", LangJavaScript},
		{"mod.mjs", LangJavaScript},
		{"mod.cjs", LangJavaScript},
		{"app.ts", LangTypeScript},
		{"app.tsx", LangTSX},
		{"app.jsx", LangTSX},
		{"script.py", LangPython},
		{"stub.pyi", LangPython},
		{"Main.java", LangJava},
		{"readme.md", LangUnknown},
		{"Makefile", LangUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestParseJavaScript(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("function hello() { return 42; }")
	res, err := p.Parse(src, LangJavaScript, "hello.js")
	require.NoError(t, err)
	defer res.Tree.Close()

	root := res.Tree.RootNode()
	assert.Equal(t, "program", root.Type())
	assert.False(t, root.HasError())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))

	p := New()
	defer p.Close()

	res, err := p.ParseFile(path)
	require.NoError(t, err)
	defer res.Tree.Close()

	assert.Equal(t, LangPython, res.Language)
	assert.Equal(t, "module", res.Tree.RootNode().Type())
}

func TestParseFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	p := New()
	defer p.Close()

	_, err := p.ParseFile(path)
	assert.Error(t, err)
}

func TestWalkEventsOrder(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("if (a) { b; }")
	res, err := p.Parse(src, LangJavaScript, "x.js")
	require.NoError(t, err)
	defer res.Tree.Close()

	var entered, exited []string
	enter := func(node *sitter.Node, nodeType string, source []byte) bool {
		entered = append(entered, nodeType)
		return true
	}
	exit := func(node *sitter.Node, nodeType string, source []byte) bool {
		exited = append(exited, nodeType)
		return true
	}
	WalkEvents(res.Tree.RootNode(), src, enter, exit)

	assert.Equal(t, "program", entered[0])
	assert.Contains(t, entered, "if_statement")
	// exit fires after children, so the root is last out
	assert.Equal(t, "program", exited[len(exited)-1])
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	src := []byte("let answer = 42;")
	res, err := p.Parse(src, LangJavaScript, "x.js")
	require.NoError(t, err)
	defer res.Tree.Close()

	assert.Equal(t, "let answer = 42;", GetNodeText(res.Tree.RootNode(), src))
	assert.Equal(t, "", GetNodeText(nil, src))
}
