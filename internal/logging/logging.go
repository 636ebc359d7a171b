package logging

import "log"

// EveryN logs the first few occurrences of a repeating failure and then every
// nth one. count is the 1-based occurrence number.
func EveryN(count, n uint64, format string, args ...any) {
	if ShouldLog(count, n) {
		log.Printf(format, args...)
	}
}

func ShouldLog(count, n uint64) bool {
	if count <= 3 {
		return true
	}
	if n <= 1 {
		return true
	}
	return count%n == 0
}
