package catalog

import "testing"

func TestNormalize(t *testing.T) {
	normalized := Normalize("  What is a goroutine? \r\n", "A lightweight thread.")
	expected := "what is a goroutine?\na lightweight thread."

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestCardID(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// SHA-256 of "q\na"
		expected := "27d2d5c8276a1f606af38834a9294ae5d3bfc6c5097c03e3fdd6e8c5c37e2ba7"
		if id := CardID("Q", "A"); id != expected {
			t.Errorf("Expected ID '%s', but got '%s'", expected, id)
		}
	})

	t.Run("ID is deterministic", func(t *testing.T) {
		if CardID("Test", "") != CardID("Test", "") {
			t.Error("Expected IDs for identical cards to be the same")
		}
	})

	t.Run("normalization produces same ID", func(t *testing.T) {
		a := CardID("  what is go? ", "A programming language.")
		b := CardID("What Is Go?", "A programming language.")
		if a != b {
			t.Error("Expected IDs to be the same after normalization, but they were different.")
		}
	})

	t.Run("different cards have different IDs", func(t *testing.T) {
		if CardID("Card 1", "") == CardID("Card 2", "") {
			t.Error("Expected IDs for different cards to be different")
		}
	})
}
