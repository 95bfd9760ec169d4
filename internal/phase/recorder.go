package phase

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var banner = strings.Repeat("=", 50)

// Recorder echoes model responses to the console and keeps a verbatim copy.
type Recorder struct {
	out io.Writer
}

func NewRecorder(out io.Writer) *Recorder {
	return &Recorder{out: out}
}

// Record prints response between banners and, when path is not empty,
// writes it to path unchanged.
func (r *Recorder) Record(response, path string) error {
	fmt.Fprintln(r.out, banner)
	fmt.Fprintln(r.out, "LLM Response:")
	fmt.Fprintln(r.out, banner)
	fmt.Fprintln(r.out, response)
	fmt.Fprintln(r.out, banner)

	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(response), 0644); err != nil {
		return fmt.Errorf("saving response: %w", err)
	}
	return nil
}
