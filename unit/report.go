package unit

import (
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Report section literals.
const (
	reportHeader  = "\n--------------------------\nTesting Results\n--------------------------\n\n"
	contentsLabel = "Printed Data"
	failingHeader = "Failing tests\n-------------\n"
	passingHeader = "Passing tests\n-------------\n"
)

// MaxValueWidth is the display width at which reported values are cut.
const MaxValueWidth = 20

// Results renders the report for everything recorded so far. When a log
// file is configured the report is also written there; a write failure is
// returned along with the rendered report.
func (r *Recorder) Results() (string, error) {
	r.closeBuffer()
	defer r.openBuffer()

	var sb strings.Builder
	sb.WriteString(reportHeader)

	if r.cfg.ShowContents {
		sb.WriteString(contentsLabel)
		sb.WriteString(r.capture.text.String())
		sb.WriteString("\n\n")
	}
	if r.cfg.ShowFailing && r.failed > 0 {
		r.writeFailing(&sb)
	}
	if r.cfg.ShowPassing && r.passed > 0 {
		r.writePassing(&sb)
	}
	if r.cfg.ShowTotals {
		sb.WriteString(r.totals())
	}

	report := sb.String()
	if r.cfg.LogFile != "" {
		if err := r.writeLog(report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Recorder) writeFailing(sb *strings.Builder) {
	sb.WriteString(failingHeader)
	for _, name := range r.order {
		g := r.groups[name]
		if len(g.fails) == 0 {
			continue
		}
		fmt.Fprintf(sb, "* %s\n", g.name)
		for _, f := range g.fails {
			fmt.Fprintf(sb, "  %03d %s: expected %s, actual %s\n",
				f.seq, f.Note, Describe(f.Expected), Describe(f.Actual))
		}
	}
	sb.WriteString("\n")
}

func (r *Recorder) writePassing(sb *strings.Builder) {
	sb.WriteString(passingHeader)
	sb.WriteString(".\n")
	for _, name := range r.order {
		g := r.groups[name]
		if len(g.passes) == 0 {
			continue
		}
		fmt.Fprintf(sb, "* %s\n", g.name)
		for _, p := range g.passes {
			fmt.Fprintf(sb, "  %03d %s\n", p.seq, p.note)
		}
	}
	sb.WriteString(".\n\n")
}

func (r *Recorder) totals() string {
	total := r.seq
	denom := total
	if denom == 0 {
		denom = 1
	}
	pct := int(math.Round(float64(r.passed) / float64(denom) * 100))
	elapsed := r.end.Sub(r.start).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%d/%d (%d%%) passed in %.2f seconds\n", r.passed, total, pct, elapsed)
}

func (r *Recorder) writeLog(report string) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if r.cfg.Overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := r.fs.OpenFile(r.cfg.LogFile, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", r.cfg.LogFile, err)
	}
	if _, err := f.WriteString(report); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing log file %s: %w", r.cfg.LogFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing log file %s: %w", r.cfg.LogFile, err)
	}
	r.debugf("Results", "wrote %d bytes to %s", len(report), r.cfg.LogFile)
	return nil
}

// Describe renders v with its type so that, for example, the string "1"
// and the integer 1 read differently. Results wider than MaxValueWidth
// columns are cut and marked with "...".
func Describe(v any) string {
	return truncate(describe(v), MaxValueWidth)
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("string(%q)", x)
	case Kind:
		return fmt.Sprintf("kind(%q)", string(x))
	case error:
		return fmt.Sprintf("%T(%q)", x, x.Error())
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%T(%v)", v, v)
	case reflect.String:
		return fmt.Sprintf("%T(%q)", v, v)
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "") + "..."
}

// groupMarker is printed when a group starts.
func (r *Recorder) groupMarker(name string) string {
	return "\n" + r.styles().Group.Render("# "+name)
}

// banner is printed when a batch starts.
func (r *Recorder) banner(files int) string {
	return r.styles().Banner(fmt.Sprintf("running %d test files", files))
}
