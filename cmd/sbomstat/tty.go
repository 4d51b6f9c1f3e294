package main

import (
	"io"
	"os"

	"sbomstat/internal/progress"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return progress.IsTerminal(file)
}
