package display

import (
	"fmt"
	"io"

	"github.com/backmassage/filetoutf8/internal/term"
)

const banner = ` _____ _ _      _         _   _ _____ _____ ___
|  ___(_) | ___| |_ ___  | | | |_   _|  ___( _ )
| |_  | | |/ _ \ __/ _ \ | | | | | | | |_  / _ \
|  _| | | |  __/ || (_) || |_| | | | |  _|| (_) |
|_|   |_|_|\___|\__\___/  \___/  |_| |_|   \___/`

// PrintBanner writes the ASCII art banner and version line to w, in magenta
// when colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, term.Magenta(banner))
	fmt.Fprintf(w, "%s v%s\n\n", term.Magenta("filetoutf8"), version)
}
