package unit

import (
	"bytes"
	"io"
	"strings"
)

// captureRule separates each captured chunk in the Printed Data section.
var captureRule = strings.Repeat("-", 26)

// capture intercepts incidental output written through Recorder.Stdout.
//
// active is set for the duration of RunTests; open marks a stretch in which
// writes go to pending instead of the output writer. Outside an active run
// openBuffer is a no-op, so direct SetGroup/Test calls print through.
type capture struct {
	active  bool
	open    bool
	pending *bytes.Buffer
	text    strings.Builder
}

// stdout routes writes to the pending capture while it is open.
type stdout struct{ r *Recorder }

func (w stdout) Write(p []byte) (int, error) {
	if w.r.capture.open {
		return w.r.capture.pending.Write(p)
	}
	return w.r.out.Write(p)
}

// Stdout returns the writer test units use for incidental output. While a
// batch is running the output is held back and reported under "Printed
// Data"; otherwise it goes straight to the Recorder's output.
func (r *Recorder) Stdout() io.Writer { return stdout{r} }

// Captured returns the incidental output accumulated so far.
func (r *Recorder) Captured() string { return r.capture.text.String() }

// open starts global capture for a batch.
func (r *Recorder) open() {
	r.capture.active = true
	r.openBuffer()
}

// close flushes the pending capture and ends global capture.
func (r *Recorder) close() {
	r.closeBuffer()
	r.capture.active = false
}

func (r *Recorder) openBuffer() {
	if !r.capture.active || r.capture.open {
		return
	}
	r.capture.open = true
	r.capture.pending.Reset()
}

// closeBuffer ends interception and appends anything written since
// openBuffer to the capture text.
func (r *Recorder) closeBuffer() {
	if !r.capture.open {
		return
	}
	r.capture.open = false
	if r.capture.pending.Len() == 0 {
		return
	}
	r.capture.text.WriteString("\n")
	r.capture.text.WriteString(captureRule)
	r.capture.text.WriteString("\n\n")
	r.capture.text.Write(r.capture.pending.Bytes())
	r.capture.text.WriteString("\n")
	r.capture.pending.Reset()
}
