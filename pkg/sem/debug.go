package sem

import "fmt"

const debugSem = false

func debugPrintf(format string, args ...interface{}) {
	if debugSem {
		fmt.Printf(format, args...)
	}
}
