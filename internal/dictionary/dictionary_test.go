package dictionary

import "testing"

func TestContainsScenarioS4(t *testing.T) {
	d := New(true)
	d.Add("words", "cat")

	cases := map[string]bool{
		"Cat":   true,
		"cat":   true,
		"(cat)": true,
		"dog":   false,
		"123":   true,
	}
	for word, want := range cases {
		if got := d.Contains(word); got != want {
			t.Errorf("Contains(%q) = %v, want %v", word, got, want)
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	d := New(false)
	d.Add("g", "word")
	before := d.Len()
	d.Add("g", "word")
	if got := d.Len(); got != before {
		t.Errorf("Len changed after re-adding same word: %d -> %d", before, got)
	}
	if !d.Contains("word") {
		t.Error("expected word to be a member")
	}
}

func TestAddSplitsEmbeddedSpaces(t *testing.T) {
	d := New(false)
	d.Add("g", "New York")
	if !d.Contains("New") || !d.Contains("York") {
		t.Error("expected both words from a space-split entry to be members")
	}
}

func TestAddDropsNonAlpha(t *testing.T) {
	d := New(false)
	d.Add("g", "12345")
	if d.HasGroup("g") {
		t.Error("purely numeric word should not create a group entry")
	}
}

func TestCaseSensitivity(t *testing.T) {
	d := New(false)
	d.Add("g", "Cat")
	if d.Contains("cat") {
		t.Error("case-sensitive dictionary should not match lowercased form")
	}
	if !d.Contains("Cat") {
		t.Error("expected exact-case match")
	}
}
