package vm

import (
	"os"
	"runtime/debug"
	"strconv"
)

// disableGC mirrors the teacher's RunProgram: memory is allocated up
// front at VM construction, so the garbage collector has nothing
// useful to do during the hot instruction loop and only adds latency.
// Returns the percent to restore afterward.
func disableGC() int {
	key, ok := os.LookupEnv("GOGC")
	if !ok {
		key = "100"
	}
	gcPercent, err := strconv.ParseInt(key, 10, 32)
	if err != nil {
		gcPercent = 100
	}
	debug.SetGCPercent(-1)
	return int(gcPercent)
}

func restoreGC(percent int) {
	debug.SetGCPercent(percent)
}
