package common

const (
	// LogLevels lists the logcat level letters in severity order
	LogLevels = "VDIWEF"

	// DefaultTagWidth is the tag column width
	DefaultTagWidth = 20
	// DefaultPackageWidth is the package/process column width
	DefaultPackageWidth = 20

	// ColorCacheSize bounds the dynamic tag/package color cache
	ColorCacheSize = 64

	// DeadProcessGraceSeconds is how long a died pid still resolves for
	// display lookups
	DeadProcessGraceSeconds = 5

	// LogcatFormat is the format asked of the device logger
	LogcatFormat = "threadtime"

	// UnknownPackage is shown when a pid has no known owner
	UnknownPackage = "UNKNOWN"
)
