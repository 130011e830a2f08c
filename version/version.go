package version

import (
	"fmt"
	"runtime"
)

const (
	// NAME is the name of this tool
	NAME = "pidcat"
	// VERSION tracks the feature set of pidcat 2.5.x
	VERSION = "2.5.1"
)

// String format version info
func String() string {
	return fmt.Sprintf("%s version %s, built with %s\n", NAME, VERSION, runtime.Version())
}
