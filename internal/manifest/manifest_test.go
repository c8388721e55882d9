package manifest

import (
	"path/filepath"
	"testing"

	"github.com/dkoosis/unit/unit"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
env:
  base_url: http://localhost:8080
  retries: 3
  tags: [a, b]
group_prefix: api
tests:
  - path: users.star
  - path: orders.star
    mode: SKIP
  - path: /abs/billing.star
    mode: only
`

func TestLoad(t *testing.T) {
	mem := afero.NewMemMapFs()
	path := filepath.Join("suite", "tests.yaml")
	require.NoError(t, afero.WriteFile(mem, path, []byte(sample), 0o644))

	m, err := Load(mem, path)
	require.NoError(t, err)
	assert.Equal(t, "suite", m.Dir)
	assert.Equal(t, "api", m.GroupPrefix)

	entries, err := m.Entries()
	require.NoError(t, err)
	assert.Equal(t, []unit.Entry{
		{Path: filepath.Join("suite", "users.star"), Mode: unit.Run},
		{Path: filepath.Join("suite", "orders.star"), Mode: unit.Skip},
		{Path: "/abs/billing.star", Mode: unit.Only},
	}, entries)

	env := m.Environment()
	assert.Equal(t, "http://localhost:8080", env["base_url"])
	assert.Equal(t, 3, env["retries"])
	assert.Equal(t, []any{"a", "b"}, env["tags"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad yaml", "tests: [\n", "parsing YAML"},
		{"no tests", "env: {a: 1}\n", "lists no tests"},
		{"missing path", "tests:\n  - mode: run\n", "missing path"},
		{"unknown mode", "tests:\n  - path: a.star\n    mode: sometimes\n", "unknown run mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_UnknownModeWraps(t *testing.T) {
	_, err := Parse([]byte("tests:\n  - path: a.star\n    mode: later\n"))
	require.ErrorIs(t, err, unit.ErrUnknownMode)
}

func TestEnvironment_NeverNil(t *testing.T) {
	m, err := Parse([]byte("tests:\n  - path: a.star\n"))
	require.NoError(t, err)
	env := m.Environment()
	require.NotNil(t, env)
	assert.Empty(t, env)

	entries, err := m.Entries()
	require.NoError(t, err)
	assert.Equal(t, []unit.Entry{{Path: "a.star", Mode: unit.Run}}, entries)
}
