package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/gubarz/virgil/internal/walkthrough"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// ErrNoClipboard is returned when no clipboard tool is installed
var ErrNoClipboard = errors.New("no clipboard tool found (wl-copy, xclip, xsel, pbcopy)")

// systemClipboard implements Clipboard using system commands
type systemClipboard struct{}

// Copy copies text to the system clipboard
func (c systemClipboard) Copy(text string) error {
	cmd := findClipboardCommand()
	if cmd == nil {
		return ErrNoClipboard
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// findClipboardCommand returns the appropriate clipboard command for the system
func findClipboardCommand() *exec.Cmd {
	switch {
	case commandExists("wl-copy"):
		return exec.Command("wl-copy")
	case commandExists("xclip"):
		return exec.Command("xclip", "-selection", "clipboard")
	case commandExists("xsel"):
		return exec.Command("xsel", "--clipboard", "--input")
	case commandExists("pbcopy"):
		return exec.Command("pbcopy")
	default:
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// ============================================================================
// Writer
// ============================================================================

// Mode represents where a compiled walkthrough goes
type Mode string

const (
	ModePrint Mode = "print"
	ModeCopy  Mode = "copy"
	ModeFile  Mode = "file"
)

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePrint, ModeCopy, ModeFile:
		return m, nil
	case "":
		return ModeFile, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want print, copy or file)", s)
	}
}

// Writer delivers compiled walkthroughs
type Writer struct {
	stdout    io.Writer
	clipboard Clipboard
}

// NewWriter creates a writer printing to stdout and copying to the system clipboard
func NewWriter() *Writer {
	return &Writer{stdout: os.Stdout, clipboard: systemClipboard{}}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// WithStdout sets where print mode writes
func (w *Writer) WithStdout(out io.Writer) *Writer {
	w.stdout = out
	return w
}

// Write delivers wt according to mode. path is the destination file in file
// mode and is returned so callers can report it; other modes return "".
func (w *Writer) Write(wt *walkthrough.Walkthrough, mode Mode, path string) (string, error) {
	switch mode {
	case ModePrint:
		return "", walkthrough.Encode(w.stdout, wt)
	case ModeCopy:
		data, err := walkthrough.Marshal(wt)
		if err != nil {
			return "", err
		}
		return "", w.clipboard.Copy(string(data))
	default:
		if path == "" {
			return "", fmt.Errorf("file output needs a destination path")
		}
		if err := walkthrough.Save(path, wt); err != nil {
			return "", err
		}
		return path, nil
	}
}
