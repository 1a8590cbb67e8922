package repl

import "testing"

func BenchmarkDetectFunctionCall(b *testing.B) {
	input := "/say ${{ join(map(range(1, 10, 2), str(#)), \", \") }}"

	for b.Loop() {
		_ = detectFunctionCall(input, len(input)-8)
	}
}

func BenchmarkGetSignature(b *testing.B) {
	names := []string{"range", "resource", "join", "missing"}

	for b.Loop() {
		for _, n := range names {
			_, _ = getSignature(n)
		}
	}
}
