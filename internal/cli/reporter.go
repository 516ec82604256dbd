package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// consoleReporter prints extraction progress for humans. Commands print the
// final outcome themselves, so nothing is written unless verbose is set.
type consoleReporter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func newConsoleReporter(out io.Writer, verbose bool) *consoleReporter {
	return &consoleReporter{out: out, verbose: verbose}
}

func (r *consoleReporter) Info(msg string, fields ...zap.Field) {
	r.print(dim("›"), msg, fields)
}

func (r *consoleReporter) Success(msg string, fields ...zap.Field) {
	r.print(green("✓"), msg, fields)
}

func (r *consoleReporter) Error(msg string, fields ...zap.Field) {
	r.print(red("✗"), msg, fields)
}

func (r *consoleReporter) print(mark, msg string, fields []zap.Field) {
	if !r.verbose {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%s %s", mark, msg)
	if ctx := formatFields(fields); ctx != "" {
		line += " " + dim(ctx)
	}
	fmt.Fprintln(r.out, line)
}

func formatFields(fields []zap.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, enc.Fields[k]))
	}
	return strings.Join(parts, " ")
}
