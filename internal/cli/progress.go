package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/soyunomas/ftools/internal/dispatch"
)

const progressInterval = 150 * time.Millisecond

func isTerminal() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// formatProgress describe la etapa en curso a partir de los contadores.
func formatProgress(s dispatch.Snapshot) string {
	switch {
	case s.FullHashed > 0:
		return fmt.Sprintf("Hashing… %d/%d files, %s",
			s.FullHashed, s.Candidates, humanize.IBytes(uint64(s.BytesHashed))) //nolint:gosec // Bytes is always positive
	case s.PartialHashed > 0:
		return fmt.Sprintf("Pre-hashing… %d/%d candidates", s.PartialHashed, s.Candidates)
	default:
		return fmt.Sprintf("Scanning… %d files, %s",
			s.FilesDiscovered, humanize.IBytes(uint64(s.BytesDiscovered))) //nolint:gosec // Bytes is always positive
	}
}

// startProgress pinta una línea de estado en w cada interval hasta que se
// llame a la función devuelta, que además limpia la línea.
func startProgress(ctx context.Context, p *dispatch.Progress, w io.Writer, interval time.Duration) func() {
	// Ocultar el cursor mientras se actualiza la línea
	fmt.Fprint(w, "\033[?25l")

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r\033[2K%s\r", formatProgress(p.Snapshot()))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			fmt.Fprint(w, "\r\033[2K\r\033[?25h")
		})
	}
}
