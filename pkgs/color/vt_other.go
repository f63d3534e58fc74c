//go:build !windows

package color

// EnableVirtualTerminal is a no-op: non-Windows terminals interpret ANSI
// escapes natively.
func EnableVirtualTerminal() error { return nil }
