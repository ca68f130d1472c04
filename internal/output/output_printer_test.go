package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewPrinter(out, errOut), out, errOut
}

func TestPrinter(t *testing.T) {
	r := require.New(t)

	t.Run("should disable colors for non terminal writers", func(t *testing.T) {
		newTestPrinter()
		r.True(color.NoColor)
	})

	t.Run("should write progress to the error stream", func(t *testing.T) {
		p, out, errOut := newTestPrinter()
		p.Successf("Copied %s", "docker/")
		p.Warningf("Missing %s", "routes/web.php")
		p.Step(3, 9, "Copying stubs")

		r.Empty(out.String())
		r.Equal("✓ Copied docker/\n⚠ Missing routes/web.php\n[3/9] Copying stubs\n", errOut.String())
	})

	t.Run("should pad table columns", func(t *testing.T) {
		p, out, _ := newTestPrinter()
		p.Table([]string{"Setting", "Value"}, [][]string{
			{"Project ID", "acme-prod"},
			{"Region", "europe-west1"},
		})

		r.Equal(
			"Setting     Value\n"+
				"──────────  ────────────\n"+
				"Project ID  acme-prod\n"+
				"Region      europe-west1\n",
			out.String(),
		)
	})

	t.Run("should render flags", func(t *testing.T) {
		r.Equal("Yes", YesNo(true))
		r.Equal("No", YesNo(false))
	})

	t.Run("should number list items", func(t *testing.T) {
		p, out, _ := newTestPrinter()
		p.NumberedList([]string{"Review the Dockerfile", "Commit the files"})
		r.Equal("  1. Review the Dockerfile\n  2. Commit the files\n", out.String())
	})
}
