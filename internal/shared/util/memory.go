package util

import "runtime"

// HeapAllocMB reports the live heap in whole megabytes.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc >> 20
}
