package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/teamcutter/xtract/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func withSpinner(ctx context.Context, desc string) (stop func()) {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				spinner.Finish()
				return
			default:
				spinner.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()
	return func() {
		close(done)
		spinner.Finish()
	}
}

func formatResult(res domain.Result) string {
	if !res.Succeeded {
		return fmt.Sprintf("%s %s\n  %s", red("✗"), bold(res.Source), res.ErrorMessage)
	}

	size := "?"
	if n, err := dirSize(res.Destination); err == nil {
		size = humanize.Bytes(uint64(n))
	}

	return fmt.Sprintf("%s %s %s\n  %s %s\n  %s %s",
		green("✓"), bold(res.Source), dim(fmt.Sprintf("(%s, %s)", res.Type, elapsed(res.Elapsed))),
		cyan("path:"), res.Destination,
		cyan("size:"), size)
}

func dirSize(dir string) (int64, error) {
	var size int64

	err := afero.Walk(afero.NewOsFs(), dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})

	return size, err
}
