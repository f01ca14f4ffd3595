package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/pocket-migrate/internal/importers"
	"github.com/mrlokans/pocket-migrate/internal/report"
)

const confirmPrompt = "Proceed with import? (y/N): "

// consoleConfirm shows the preview and asks the operator to approve it.
// Only a "y" answer proceeds; anything else, including EOF, declines.
func consoleConfirm(in io.Reader, out io.Writer) importers.ConfirmFunc {
	return func(preview importers.Preview) bool {
		report.NewPrinter(out).Preview(preview)
		fmt.Fprint(out, "\n"+confirmPrompt)

		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return false
		}
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}
}

// autoConfirm shows the preview and proceeds without asking.
func autoConfirm(out io.Writer) importers.ConfirmFunc {
	return func(preview importers.Preview) bool {
		report.NewPrinter(out).Preview(preview)
		return true
	}
}
