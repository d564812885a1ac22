package node

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Fatalf prints the error and exits. The message goes to stderr, and also to stdout if they are different files
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(fatalWriter(), "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

func fatalWriter() io.Writer {
	if runtime.GOOS == "windows" {
		return os.Stdout
	}
	outf, _ := os.Stdout.Stat()
	errf, _ := os.Stderr.Stat()
	if outf != nil && errf != nil && os.SameFile(outf, errf) {
		return os.Stderr
	}
	return io.MultiWriter(os.Stdout, os.Stderr)
}
