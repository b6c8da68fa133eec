package giveaway

import (
	"math/rand"
	"testing"
)

func TestSelectDistinctAndBounded(t *testing.T) {
	s := NewSelectorWithSource(rand.NewSource(1))
	pool := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	got := s.Select(pool, 4)
	if len(got) != 4 {
		t.Fatalf("Select returned %d winners, want 4", len(got))
	}
	assertDistinctMembers(t, got, pool)

	got = s.Select(pool, 25)
	if len(got) != len(pool) {
		t.Fatalf("Select with count > size returned %d winners, want %d", len(got), len(pool))
	}
	assertDistinctMembers(t, got, pool)
}

func TestSelectEmptyPool(t *testing.T) {
	s := NewSelector()
	if got := s.Select(nil, 3); got != nil {
		t.Errorf("Select on empty pool = %v, want nil", got)
	}
	if got := s.Select([]string{"a"}, 0); got != nil {
		t.Errorf("Select with count 0 = %v, want nil", got)
	}
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	s := NewSelectorWithSource(rand.NewSource(7))
	pool := []string{"a", "b", "c", "d"}

	s.Select(pool, 2)

	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if pool[i] != want[i] {
			t.Fatalf("input slice mutated: %v", pool)
		}
	}
}

func TestSelectUniformity(t *testing.T) {
	s := NewSelectorWithSource(rand.NewSource(42))
	pool := []string{"a", "b", "c", "d", "e"}

	const trials = 10000
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		winner := s.Select(pool, 1)
		counts[winner[0]]++
	}

	// Esperado 2000 por miembro; 20% de margen
	expected := trials / len(pool)
	for _, member := range pool {
		got := counts[member]
		if got < expected*8/10 || got > expected*12/10 {
			t.Errorf("member %s selected %d times, expected about %d", member, got, expected)
		}
	}
}

func assertDistinctMembers(t *testing.T, got, pool []string) {
	t.Helper()

	inPool := make(map[string]bool, len(pool))
	for _, p := range pool {
		inPool[p] = true
	}

	seen := make(map[string]bool, len(got))
	for _, w := range got {
		if !inPool[w] {
			t.Fatalf("winner %q is not a pool member", w)
		}
		if seen[w] {
			t.Fatalf("winner %q selected twice", w)
		}
		seen[w] = true
	}
}
