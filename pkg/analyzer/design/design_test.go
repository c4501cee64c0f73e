package design

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facetcode/facet/pkg/config"
)

type mapSource map[string][]byte

func (m mapSource) Read(path string) ([]byte, error) {
	if content, ok := m[path]; ok {
		return content, nil
	}
	return nil, os.ErrNotExist
}

func runRules(t *testing.T, cfg config.DesignConfig, path, src string, opts ...Option) *Analysis {
	t.Helper()
	a := New(cfg, opts...)
	defer a.Close()

	result, err := a.Analyze(context.Background(), []string{path}, mapSource{path: []byte(src)})
	require.NoError(t, err)
	return result
}

func defaultRules() config.DesignConfig {
	return config.DefaultConfig().Design
}

func issuesByRule(a *Analysis, rule string) []Issue {
	var out []Issue
	for _, issue := range a.Issues {
		if issue.Rule == rule {
			out = append(out, issue)
		}
	}
	return out
}

func TestMagicNumber(t *testing.T) {
	src := `function scale(value) {
  const limit = 99;
  if (value > 37) {
    return value * 42;
  }
  return value + limit;
}
`
	result := runRules(t, defaultRules(), "scale.js", src)

	issues := issuesByRule(result, RuleMagicNumber)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, "37")
	assert.Contains(t, issues[1].Message, "42")
	assert.Equal(t, SeverityLow, issues[0].Severity)
}

func TestMagicNumberAllowsNegativeAllowlist(t *testing.T) {
	src := `function find(items, target) {
  if (items.indexOf(target) === -1) {
    return -5;
  }
  return 0;
}
`
	result := runRules(t, defaultRules(), "find.js", src)

	issues := issuesByRule(result, RuleMagicNumber)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "-5")
}

func TestParameterCount(t *testing.T) {
	src := `function connect(host, port, timeout, retries, backoff) {
  return host;
}
`
	result := runRules(t, defaultRules(), "connect.js", src)

	issues := issuesByRule(result, RuleParameterCount)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, `"connect" takes 5 parameters`)
}

func TestParameterCountIgnoresSelf(t *testing.T) {
	src := `class Store:
    def put(self, first, second, third, fourth):
        return first
`
	result := runRules(t, defaultRules(), "store.py", src)
	assert.Empty(t, issuesByRule(result, RuleParameterCount))
}

func TestBooleanFlag(t *testing.T) {
	src := `function toggle(widget) {
  widget.render(true);
}
`
	result := runRules(t, defaultRules(), "toggle.js", src)

	issues := issuesByRule(result, RuleBooleanFlag)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Line)
}

func TestNestingDepthReportsOncePerChain(t *testing.T) {
	src := `function deep(flags) {
  if (flags.a) {
    if (flags.b) {
      if (flags.c) {
        if (flags.d) {
          if (flags.e) {
            flags.hit = 1;
          }
        }
      }
    }
  }
}
`
	result := runRules(t, defaultRules(), "deep.js", src)

	issues := issuesByRule(result, RuleNestingDepth)
	require.Len(t, issues, 1)
	assert.Equal(t, 6, issues[0].Line)
}

func TestFanOut(t *testing.T) {
	src := `function orchestrate(ctx) {
  alpha(ctx);
  beta(ctx);
  gamma(ctx);
  delta(ctx);
  epsilon(ctx);
  zeta(ctx);
  eta(ctx);
  theta(ctx);
}
`
	result := runRules(t, defaultRules(), "orchestrate.js", src)

	issues := issuesByRule(result, RuleFanOut)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "calls 8 distinct functions")
}

func TestImportCount(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 16; i++ {
		fmt.Fprintf(&b, "import { mod%d } from 'mod%d';\n", i, i)
	}
	b.WriteString("export function noop() {}\n")

	result := runRules(t, defaultRules(), "imports.js", b.String())

	issues := issuesByRule(result, RuleImportCount)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "16 imports")
}

func TestIdentifierLength(t *testing.T) {
	src := `function f(x, id) {
  return x + id;
}
`
	result := runRules(t, defaultRules(), "short.js", src)

	issues := issuesByRule(result, RuleIdentifierLength)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].Message, `"f"`)
	assert.Contains(t, issues[1].Message, `"x"`)
}

func TestIdentifierLengthAllowlist(t *testing.T) {
	cfg := defaultRules()
	src := `function sum(values) {
  let i = 0;
  let total = 0;
  while (i < values.length) {
    total = total + values[i];
    i = i + 1;
  }
  return total;
}
`
	result := runRules(t, cfg, "sum.js", src)
	assert.Empty(t, issuesByRule(result, RuleIdentifierLength))
}

func TestStaleVariable(t *testing.T) {
	src := `function compute() {
  const unused = 5;
  const used = 1;
  return used;
}
`
	result := runRules(t, defaultRules(), "compute.js", src)

	issues := issuesByRule(result, RuleStaleVariable)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, `"unused"`)
	assert.Equal(t, 2, issues[0].Line)
}

func TestStaleVariablePython(t *testing.T) {
	src := `def compute(value):
    leftover = value * 3
    total = value * 99
    return total
`
	result := runRules(t, defaultRules(), "compute.py", src)

	stale := issuesByRule(result, RuleStaleVariable)
	require.Len(t, stale, 1)
	assert.Contains(t, stale[0].Message, `"leftover"`)

	magic := issuesByRule(result, RuleMagicNumber)
	require.Len(t, magic, 2)
}

func TestJavaMagicNumber(t *testing.T) {
	src := `class Calc {
    int scale(int value) {
        return value * 37;
    }
}
`
	result := runRules(t, defaultRules(), "Calc.java", src)

	issues := issuesByRule(result, RuleMagicNumber)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "37")
}

func TestDisabledRules(t *testing.T) {
	cfg := defaultRules()
	cfg.DisabledRules = []string{RuleMagicNumber}

	src := `function scale(value) {
  return value * 37;
}
`
	result := runRules(t, cfg, "scale.js", src)
	assert.Empty(t, result.Issues)
}

func TestSummaryCounts(t *testing.T) {
	src := `function scale(value) {
  return value * 37;
}
`
	result := runRules(t, defaultRules(), "scale.js", src)

	assert.Equal(t, 1, result.Summary.TotalFiles)
	assert.Equal(t, 1, result.Summary.TotalIssues)
	assert.Equal(t, 1, result.Summary.ByRule[RuleMagicNumber])
	assert.Equal(t, 1, result.Summary.BySeverity[string(SeverityLow)])
}

func TestTestFilesAreSkipped(t *testing.T) {
	src := `function scale(value) {
  return value * 37;
}
`
	a := New(defaultRules())
	defer a.Close()

	result, err := a.Analyze(context.Background(),
		[]string{"scale.test.js"}, mapSource{"scale.test.js": []byte(src)})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.TotalFiles)
	assert.Empty(t, result.Issues)
}
