package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	defaultTerminalWidth = 100
	minTerminalWidth     = 40
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// terminalWidth returns the column count of the terminal behind writer, or
// defaultTerminalWidth when writer is not a terminal.
func terminalWidth(writer io.Writer) int {
	file, ok := writer.(*os.File)
	if !ok || !isatty.IsTerminal(file.Fd()) {
		return defaultTerminalWidth
	}
	cols := windowColumns(file.Fd())
	if cols <= 0 {
		return defaultTerminalWidth
	}
	return max(cols, minTerminalWidth)
}
