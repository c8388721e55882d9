package unit

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults_RendersEnabledSectionsInOrder(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.SetShowColor(false)
	r.SetShowPassing(true)
	r.SetGroup("math")
	r.Test("adds", 2, 2)
	r.Test("parses", "1", 1)

	got, err := r.Results()
	require.NoError(t, err)

	want := "\n--------------------------\nTesting Results\n--------------------------\n\n" +
		"Printed Data\n\n" +
		"Failing tests\n-------------\n" +
		"* math\n" +
		"  002 parses: expected int(1), actual string(\"1\")\n" +
		"\n" +
		"Passing tests\n-------------\n" +
		".\n" +
		"* math\n" +
		"  001 adds\n" +
		".\n\n" +
		"1/2 (50%) passed in 0.00 seconds\n"
	assert.Equal(t, want, got)
}

func TestResults_OmitsDisabledSections(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Test("fails", 1, 2)
	r.SetShowContents(false)
	r.SetShowFailing(false)
	r.SetShowTotals(false)

	got, err := r.Results()
	require.NoError(t, err)
	assert.Equal(t, reportHeader, got)
}

func TestResults_SkipsEmptyFailingAndPassingSections(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.SetShowPassing(true)
	r.SetShowContents(false)
	r.SetShowTotals(false)

	got, err := r.Results()
	require.NoError(t, err)
	assert.NotContains(t, got, "Failing tests")
	assert.NotContains(t, got, "Passing tests")
}

func TestResults_PassingNoteAppearsOnlyWhenEnabled(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.SetGroup("g")
	r.Test("the note N", true, true)

	got, err := r.Results()
	require.NoError(t, err)
	assert.NotContains(t, got, "the note N")

	r.SetShowPassing(true)
	got, err = r.Results()
	require.NoError(t, err)
	assert.Contains(t, got, "  001 the note N\n")
}

func TestResults_FailingGroupsOnlyListGroupsWithFailures(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.SetGroup("clean")
	r.Test("ok", 1, 1)
	r.SetGroup("dirty")
	r.Test("bad", 1, 2)

	got, err := r.Results()
	require.NoError(t, err)
	assert.NotContains(t, got, "* clean")
	assert.Contains(t, got, "* dirty\n  002 bad: expected int(2), actual int(1)\n")
}

func TestResults_TruncatesLongValues(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Test("long", "abcdefghijklmnopqrstuvwxyz", "x")

	got, err := r.Results()
	require.NoError(t, err)
	assert.Contains(t, got, `  001 long: expected string("x"), actual string("abcdefghijkl...`+"\n")
}

func TestResults_Totals(t *testing.T) {
	r, _ := newTestRecorder(t, WithClock(stepClock(250*time.Millisecond)))
	r.SetShowContents(false)
	r.SetShowFailing(false)
	r.Test("a", 1, 1)
	r.Test("b", 1, 1)
	r.Test("c", 1, 1)
	r.Test("d", 1, 2)

	got, err := r.Results()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "3/4 (75%) passed in 1.00 seconds\n"), got)
}

func TestResults_TotalsWithNoTests(t *testing.T) {
	r, _ := newTestRecorder(t)
	got, err := r.Results()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "0/0 (0%) passed in 0.00 seconds\n"), got)
}

func TestResults_RoundsPercentage(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.Test("a", 1, 1)
	r.Test("b", 1, 1)
	r.Test("c", 1, 2)

	got, err := r.Results()
	require.NoError(t, err)
	assert.Contains(t, got, "2/3 (67%) passed")
}

func TestResults_IsRepeatable(t *testing.T) {
	r, _ := newTestRecorder(t)
	r.SetShowPassing(true)
	r.SetGroup("g")
	r.Test("a", 1, 1)
	r.Test("b", 1, 2)

	first, err := r.Results()
	require.NoError(t, err)
	second, err := r.Results()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResults_LogFileAppends(t *testing.T) {
	mem := afero.NewMemMapFs()
	r, _ := newTestRecorder(t, WithFs(mem))
	r.SetLogFile("logs/run.log", false)
	require.NoError(t, mem.MkdirAll("logs", 0o755))
	require.NoError(t, afero.WriteFile(mem, "logs/run.log", []byte("previous\n"), 0o644))
	r.Test("a", 1, 1)

	report, err := r.Results()
	require.NoError(t, err)
	_, err = r.Results()
	require.NoError(t, err)

	data, err := afero.ReadFile(mem, "logs/run.log")
	require.NoError(t, err)
	assert.Equal(t, "previous\n"+report+report, string(data))
}

func TestResults_LogFileOverwrites(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "run.log", []byte("previous contents that are long\n"), 0o644))
	r, _ := newTestRecorder(t, WithFs(mem))
	r.SetLogFile("run.log", true)
	r.Test("a", 1, 1)

	report, err := r.Results()
	require.NoError(t, err)
	_, err = r.Results()
	require.NoError(t, err)

	data, err := afero.ReadFile(mem, "run.log")
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
}

func TestResults_LogFileErrorIsReturned(t *testing.T) {
	r, _ := newTestRecorder(t, WithFs(afero.NewReadOnlyFs(afero.NewMemMapFs())))
	r.SetLogFile("run.log", false)
	r.Test("a", 1, 1)

	report, err := r.Results()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.log")
	assert.Contains(t, report, "Testing Results")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"1", `string("1")`},
		{1, "int(1)"},
		{int64(7), "int64(7)"},
		{1.5, "float64(1.5)"},
		{true, "bool(true)"},
		{Kind("E"), `kind("E")`},
		{[]int{1}, "[]int{1}"},
		{"a string well over twenty", `string("a string wel...`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.in))
		})
	}
}

func TestDescribe_TruncatesByDisplayWidth(t *testing.T) {
	got := Describe("日本語日本語日本語")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(got, "..."))), MaxValueWidth)
}
