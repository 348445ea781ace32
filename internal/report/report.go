// Package report renders the --html-report debugging artifact for the
// inspect command (spec.md §3). report.templ documents the markup this
// file writes by hand: the module carries no templ-generate build step, so
// Page is implemented directly against the templ runtime's Component/
// ComponentFunc types rather than templ-generated code.
package report

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Summary is the data Page renders: a snapshot of one loaded object's
// structural statistics, independent of internal/core so this package
// carries no dependency on the simulation core.
type Summary struct {
	ObjectName         string
	SimulatorName      string
	PointCount         int
	SpringCount        int
	PerfectSquareCount int
	FrozenPointCount   int
}

// Page returns a templ.Component rendering summary as a standalone HTML
// document.
func Page(summary Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>springlab inspect: %s</title></head>
<body>
<h1>%s</h1>
<table>
<tr><td>Simulator</td><td>%s</td></tr>
<tr><td>Points</td><td>%d</td></tr>
<tr><td>Springs</td><td>%d</td></tr>
<tr><td>Perfect squares</td><td>%d</td></tr>
<tr><td>Frozen points</td><td>%d</td></tr>
</table>
</body>
</html>
`,
			html.EscapeString(summary.ObjectName),
			html.EscapeString(summary.ObjectName),
			html.EscapeString(summary.SimulatorName),
			summary.PointCount,
			summary.SpringCount,
			summary.PerfectSquareCount,
			summary.FrozenPointCount,
		)
		return err
	})
}
