package fileio

import (
	"errors"
	"log"
	"os"
)

// Exit logs err and terminates the process with the exit code carried
// by the first ExitCode in err's chain (spec.md §6's 0/1/2/3 exit code
// table: config/parameter/I-O errors map to 1/2/3), or 1 if err wraps
// none of them. Every cmd/* main calls this instead of log.Fatal so
// that ConfigError/ParameterError/IOError actually reach the shell
// exit status, not just the log line.
func Exit(err error) {
	if err == nil {
		return
	}
	code := 1
	var ec ExitCode
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}
	log.Print(err)
	os.Exit(code)
}
