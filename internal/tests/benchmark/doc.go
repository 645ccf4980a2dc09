// Package benchmark provides performance benchmarks for the canvas write path.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run one scenario at larger canvas sizes:
//
//	go test -bench=BenchmarkSetPixel -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
