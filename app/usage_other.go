//go:build !unix

package app

import "runtime"

func sampleMemoryAndCPU() (mem struct{ heap, rss uint64 }, cpu float64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mem.heap = ms.HeapAlloc
	mem.rss = ms.Sys
	return
}
