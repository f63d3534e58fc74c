// Package color formats console text with ANSI foreground colours.
package color

import (
	"fmt"
	"io"
	"strings"

	"github.com/qiniu/x/log"
)

const reset = "\033[0m"

var palette = map[string]string{
	"black":   "\033[30m",
	"red":     "\033[31m",
	"green":   "\033[32m",
	"yellow":  "\033[33m",
	"blue":    "\033[34m",
	"magenta": "\033[35m",
	"cyan":    "\033[36m",
	"white":   "\033[37m",
}

// Sprint wraps text in the escape code of the named colour and resets
// formatting after it. Names are case-insensitive. An unknown colour logs a
// warning and returns text unchanged.
func Sprint(text, name string) string {
	code, ok := palette[strings.ToLower(name)]
	if !ok {
		log.Warnf("color: unknown colour %q, text left unformatted", name)
		return text
	}
	return code + text + reset
}

// Console writes tagged, coloured status lines.
type Console struct {
	w io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Println writes text in the named colour followed by a newline.
func (c *Console) Println(name, text string) {
	fmt.Fprintln(c.w, Sprint(text, name))
}

func (c *Console) Infof(format string, args ...any) {
	c.Println("green", "[INFO]: "+fmt.Sprintf(format, args...))
}

func (c *Console) Successf(format string, args ...any) {
	c.Println("cyan", "[SUCCESS]: "+fmt.Sprintf(format, args...))
}

func (c *Console) Warnf(format string, args ...any) {
	c.Println("yellow", "[WARNING]: "+fmt.Sprintf(format, args...))
}

func (c *Console) Errorf(format string, args ...any) {
	c.Println("red", "[ERROR]: "+fmt.Sprintf(format, args...))
}

// Output writes captured subprocess output in yellow. Empty output is
// skipped.
func (c *Console) Output(b []byte) {
	if s := strings.TrimRight(string(b), "\n"); s != "" {
		c.Println("yellow", s)
	}
}
