// Package confdebug provides env-var-gated debug logging for this
// module.
package confdebug

import (
	"fmt"
	"os"
	"strconv"
)

var enabled = boolEnv("LAYERCONFIG_DEBUG")

func boolEnv(name string) bool {
	v := os.Getenv(name)
	if v == "" {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func Enabled() bool { return enabled }

// Logf writes a formatted line to stderr when LAYERCONFIG_DEBUG is set.
func Logf(format string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
