package injector_test

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/junioryono/injector"
	"github.com/junioryono/injector/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGraph(t *testing.T) {
	t.Parallel()

	inj := testutil.NewInjectorBuilder(t).
		WithAlias(testutil.LoggerName, testutil.MemoryLoggerName).
		WithShare(testutil.LoggerName).
		WithShare(testutil.NewCounter()).
		WithDelegate(testutil.MailerName, testutil.MailerFactoryName).
		WithDefinition(testutil.PipelineName, injector.Args{
			":name":  "main",
			"stages": []string{testutil.UpperStageName},
		}).
		WithDefinition(testutil.LabelName, injector.Args{"name": "y"}).
		WithAlias("example.com/app.Container", injector.NameOf[*injector.Injector]()).
		Build()

	var buf bytes.Buffer
	require.NoError(t, inj.WriteGraph(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "digraph bindings {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))

	label := func(name, kind string) string {
		s := injector.Canonical(name)
		if kind != "" {
			s += " (" + kind + ")"
		}
		return "label=" + strconv.Quote(s)
	}
	assert.Contains(t, out, label(testutil.LoggerName, ""))
	assert.Contains(t, out, label(testutil.MemoryLoggerName, "pending"))
	assert.Contains(t, out, label(testutil.CounterName, "shared"))
	assert.Contains(t, out, label(testutil.MailerName, "delegate"))
	assert.Contains(t, out, label(testutil.UpperStageName, ""))
	assert.Contains(t, out, label(testutil.MailerFactoryName, ""))
	assert.Contains(t, out, label(injector.NameOf[*injector.Injector](), "injector"))

	assert.Contains(t, out, `[label="alias"]`)
	assert.Contains(t, out, `[label="define:stages"]`)
	assert.Contains(t, out, `[label="delegate"]`)
	assert.NotContains(t, out, "define::name", "raw arguments are not edges")
	assert.NotContains(t, out, `label="y"`, "plain strings for string parameters are values")
	assert.NotContains(t, out, `"define:name"`)
}

func TestWriteGraph_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, injector.New().WriteGraph(&buf))
	assert.Equal(t, "digraph bindings {\n  rankdir=LR;\n  node [shape=box];\n}\n", buf.String())
}
