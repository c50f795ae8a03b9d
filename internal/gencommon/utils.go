package gencommon

import (
	"io"

	"github.com/fatih/color"
)

// PrintWriteMessage reports a written file.
func PrintWriteMessage(w io.Writer, path string) {
	color.New(color.FgGreen).Fprintf(w, "✅ Generated %s\n", path)
}

// PrintOverwriteWarning reports a file that changed since it was generated
// and is about to be replaced.
func PrintOverwriteWarning(w io.Writer, path string) {
	color.New(color.FgYellow).Fprintf(w, "⚠️  Overwriting %s (modified since last generation)\n", path)
}
