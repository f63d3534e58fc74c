//go:build windows

package color

import "golang.org/x/sys/windows"

// EnableVirtualTerminal turns on ANSI escape processing for the console
// attached to stdout and stderr. Handles that are not consoles are skipped.
func EnableVirtualTerminal() error {
	for _, h := range []windows.Handle{windows.Stdout, windows.Stderr} {
		var mode uint32
		if err := windows.GetConsoleMode(h, &mode); err != nil {
			continue
		}
		if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
			continue
		}
		if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
			return err
		}
	}
	return nil
}
