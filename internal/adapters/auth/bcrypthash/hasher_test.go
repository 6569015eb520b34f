package bcrypthash

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, err := h.Hash("Kot#Mruczek42")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Kot#Mruczek42" {
		t.Fatalf("hash must not be the password")
	}
	if !h.Compare(hash, "Kot#Mruczek42") {
		t.Fatalf("expected match")
	}
	if h.Compare(hash, "kot#mruczek42") {
		t.Fatalf("expected mismatch")
	}
}

func TestNew_InvalidCostFallsBack(t *testing.T) {
	if New(99).cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost")
	}
}
