package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version information, set at build time with:
//
//	go build -ldflags "-X github.com/agbru/saxpy/internal/app.Version=v1.2.3 -X github.com/agbru/saxpy/internal/app.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "unknown"
)

// HasVersionFlag reports whether args ask for the version.
// Parsing stops at "--" like the flag package does.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V":
			return true
		case "--":
			return false
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "saxpy %s (commit %s, %s %s/%s)\n", Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
