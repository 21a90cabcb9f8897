package utils

import (
	"sync"
	"testing"
)

func TestNodeNames(t *testing.T) {
	nn := NewNodeNames("body", "wheel")
	if name := nn.Name("body"); name != "body" {
		t.Errorf("Name(body)=%q; expected body", name)
	}

	first := nn.Name("")
	second := nn.Name("")
	if first == "" || second == "" || first == second || first == "body" || first == "wheel" {
		t.Errorf("random names %q and %q are not unique", first, second)
	}

	again := NewNodeNames("body", "wheel").Name("")
	if again != first {
		t.Errorf("random name %q differs between runs (%q)", again, first)
	}
}

func TestNodeNamesConcurrent(t *testing.T) {
	expected := NewNodeNames()
	var want []string
	for i := 0; i < 16; i++ {
		want = append(want, expected.Name(""))
	}

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			nn := NewNodeNames()
			for i := 0; i < len(want); i++ {
				results[g] = append(results[g], nn.Name(""))
			}
		}(g)
	}
	wg.Wait()

	for g, got := range results {
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("goroutine %d name %d=%q; expected %q", g, i, got[i], want[i])
				break
			}
		}
	}
}
