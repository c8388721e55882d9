package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears the environment variables Resolve reads and points the
// user config directory somewhere empty.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{"UNIT_NO_COLOR", "NO_COLOR", "UNIT_DEBUG", "UNIT_LOG"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
}

func TestResolve_Defaults(t *testing.T) {
	isolate(t)
	var stderr bytes.Buffer

	got, err := Resolve(afero.NewMemMapFs(), CliFlags{}, true, &stderr)
	require.NoError(t, err)

	assert.True(t, got.Recorder.ShowTests)
	assert.True(t, got.Recorder.ShowTotals)
	assert.True(t, got.Recorder.ShowFailing)
	assert.False(t, got.Recorder.ShowPassing)
	assert.True(t, got.Recorder.ShowContents)
	assert.True(t, got.Recorder.ShowColor)
	assert.Equal(t, "terminal", got.ColorSource)
	assert.Equal(t, DefaultThemeName, got.ThemeName)
	assert.Empty(t, got.ConfigPath)
	assert.Empty(t, stderr.String())
}

func TestResolve_NoColorWhenNotATerminal(t *testing.T) {
	isolate(t)
	got, err := Resolve(afero.NewMemMapFs(), CliFlags{}, false, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, got.Recorder.ShowColor)
}

func TestResolve_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	mem := afero.NewMemMapFs()
	yamlCfg := `
show_passing: true
show_contents: false
show_color: false
log_file: results.log
overwrite: true
group_prefix: api
theme: orca
`
	require.NoError(t, afero.WriteFile(mem, FileName, []byte(yamlCfg), 0o644))

	got, err := Resolve(mem, CliFlags{}, true, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, FileName, got.ConfigPath)
	assert.True(t, got.Recorder.ShowPassing)
	assert.False(t, got.Recorder.ShowContents)
	assert.True(t, got.Recorder.ShowTests, "unset keys keep defaults")
	assert.False(t, got.Recorder.ShowColor)
	assert.Equal(t, "file", got.ColorSource)
	assert.Equal(t, "results.log", got.Recorder.LogFile)
	assert.True(t, got.Recorder.Overwrite)
	assert.Equal(t, "api", got.Recorder.GroupPrefix)
	assert.Equal(t, "orca", got.ThemeName)
	assert.Equal(t, "orca", got.Theme().Name)
}

func TestResolve_UsesXDGPathWhenLocalMissing(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	mem := afero.NewMemMapFs()
	path := filepath.Join(xdg, "unit", FileName)
	require.NoError(t, afero.WriteFile(mem, path, []byte("show_passing: true\n"), 0o644))

	got, err := Resolve(mem, CliFlags{}, true, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, path, got.ConfigPath)
	assert.True(t, got.Recorder.ShowPassing)
}

func TestResolve_MalformedFileWarnsAndUsesDefaults(t *testing.T) {
	isolate(t)
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, FileName, []byte("show_passing: [\n"), 0o644))
	var stderr bytes.Buffer

	got, err := Resolve(mem, CliFlags{}, true, &stderr)
	require.NoError(t, err)
	assert.False(t, got.Recorder.ShowPassing)
	assert.Empty(t, got.ConfigPath)
	assert.Contains(t, stderr.String(), "Warning:")
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	isolate(t)
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, FileName, []byte("show_color: true\nlog_file: file.log\n"), 0o644))
	t.Setenv("NO_COLOR", "1")
	t.Setenv("UNIT_LOG", "env.log")

	got, err := Resolve(mem, CliFlags{}, true, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, got.Recorder.ShowColor)
	assert.Equal(t, "env", got.ColorSource)
	assert.Equal(t, "env.log", got.Recorder.LogFile)
}

func TestResolve_CliOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("UNIT_NO_COLOR", "true")
	t.Setenv("UNIT_LOG", "env.log")

	got, err := Resolve(afero.NewMemMapFs(), CliFlags{
		NoColor: false, NoColorSet: true,
		Quiet: true, QuietSet: true,
		Passing: true, PassingSet: true,
		NoContents: true, NoContentsSet: true,
		NoTotals: true, NoTotalsSet: true,
		LogFile: "cli.log", LogFileSet: true,
		GroupPrefix: "svc", GroupPrefixSet: true,
		ThemeName: "mono",
	}, false, &bytes.Buffer{})
	require.NoError(t, err)

	rc := got.Recorder
	assert.True(t, rc.ShowColor)
	assert.Equal(t, "cli", got.ColorSource)
	assert.False(t, rc.ShowTests)
	assert.True(t, rc.ShowPassing)
	assert.False(t, rc.ShowContents)
	assert.False(t, rc.ShowTotals)
	assert.Equal(t, "cli.log", rc.LogFile)
	assert.Equal(t, "svc", rc.GroupPrefix)
	assert.Equal(t, "mono", got.ThemeName)
}

func TestResolve_DebugWritesDiagnostics(t *testing.T) {
	isolate(t)
	t.Setenv("UNIT_DEBUG", "1")
	var stderr bytes.Buffer

	got, err := Resolve(afero.NewMemMapFs(), CliFlags{}, true, &stderr)
	require.NoError(t, err)
	assert.True(t, got.Debug)
	assert.Contains(t, stderr.String(), "[DEBUG getConfigPath]")
	assert.Contains(t, stderr.String(), "[DEBUG Resolve]")
}

func TestResolve_RejectsUnknownTheme(t *testing.T) {
	isolate(t)
	_, err := Resolve(afero.NewMemMapFs(), CliFlags{ThemeName: "neon"}, true, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrUnknownTheme)
}

func TestResolve_RejectsOverwriteWithoutLogFile(t *testing.T) {
	isolate(t)
	_, err := Resolve(afero.NewMemMapFs(), CliFlags{Overwrite: true, OverwriteSet: true}, true, &bytes.Buffer{})
	require.Error(t, err)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("A_KEY", "")
	t.Setenv("B_KEY", "false")
	got := getEnvBool("A_KEY", "B_KEY")
	require.NotNil(t, got)
	assert.False(t, *got)

	t.Setenv("B_KEY", "maybe")
	assert.Nil(t, getEnvBool("A_KEY", "B_KEY"))
}
