// Package log wraps the standard logger. Debug output is compiled out of
// release builds, which also write to a rotating file instead of stderr.
package log

import (
	"fmt"
	"log"
	"os"
)

const debugPrefix = "[DEBUG] "

// Print calls the standard log.Print()
func Print(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
}

// Printf calls the standard log.Printf()
func Printf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
}

// Println calls the standard log.Println()
func Println(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
}

// Fatal logs and exits with status 1.
func Fatal(v ...interface{}) {
	log.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf logs and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	log.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Fatalln logs and exits with status 1.
func Fatalln(v ...interface{}) {
	log.Output(2, fmt.Sprintln(v...))
	os.Exit(1)
}

// Debug logs with a [DEBUG] prefix. It does nothing in release builds.
func Debug(v ...interface{}) {
	if debugEnabled {
		log.Output(2, debugPrefix+fmt.Sprint(v...))
	}
}

// Debugf logs with a [DEBUG] prefix. It does nothing in release builds.
func Debugf(format string, v ...interface{}) {
	if debugEnabled {
		log.Output(2, debugPrefix+fmt.Sprintf(format, v...))
	}
}

// Component logs lines prefixed with its bracketed name, e.g. "[Runner] ".
type Component string

func (c Component) prefix() string {
	return "[" + string(c) + "] "
}

// Printf logs a formatted line.
func (c Component) Printf(format string, v ...interface{}) {
	log.Output(2, c.prefix()+fmt.Sprintf(format, v...))
}

// Println logs its operands separated by spaces.
func (c Component) Println(v ...interface{}) {
	log.Output(2, c.prefix()+fmt.Sprintln(v...))
}

// Debugf logs a formatted debug line. It does nothing in release builds.
func (c Component) Debugf(format string, v ...interface{}) {
	if debugEnabled {
		log.Output(2, debugPrefix+c.prefix()+fmt.Sprintf(format, v...))
	}
}
