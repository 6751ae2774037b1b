package feedback

import "io"

// SetOpener swaps how Record opens the log file.
func SetOpener(l *Log, open func(path string) (io.WriteCloser, error)) {
	l.open = open
}
