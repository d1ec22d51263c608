// Package fib computes Fibonacci numbers iteratively.
package fib

// Fib returns the nth Fibonacci number: Fib(0) = 0, Fib(1) = 1,
// Fib(n) = Fib(n-1) + Fib(n-2). The computation is a single pass over
// two accumulators; no recursion, no memoization.
func Fib(n uint) uint64 {
	a, b := uint64(0), uint64(1)
	for i := uint(0); i < n; i++ {
		a, b = b, a+b
	}
	return a
}

// Sequence returns the first n Fibonacci numbers starting at Fib(0).
func Sequence(n uint) []uint64 {
	out := make([]uint64, n)
	a, b := uint64(0), uint64(1)
	for i := uint(0); i < n; i++ {
		out[i] = a
		a, b = b, a+b
	}
	return out
}
