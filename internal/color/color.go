// Package color wraps strings in ANSI escape codes for terminal output.
package color

import "fmt"

const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
)

// Enabled turns escape codes on or off for every helper.
var Enabled = true

func wrap(code, s string) string {
	if !Enabled {
		return s
	}
	return fmt.Sprintf("%s%s%s", code, s, Reset)
}

func BlueString(s string) string {
	return wrap(Blue, s)
}

func YellowString(s string) string {
	return wrap(Yellow, s)
}

func GreenString(s string) string {
	return wrap(Green, s)
}

func RedString(s string) string {
	return wrap(Red, s)
}

func BoldString(s string) string {
	return wrap(Bold, s)
}
