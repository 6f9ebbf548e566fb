package cards

import (
	"errors"
	"testing"

	"github.com/alexbotov/casino/internal/rng"
)

func TestNewShuffledDeck(t *testing.T) {
	src := rng.New()

	t.Run("HasFiftyTwoUniqueCards", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			d := NewShuffledDeck(src)
			all, err := d.Deal(52)
			if err != nil {
				t.Fatalf("Failed to deal full deck: %v", err)
			}
			seen := make(map[Card]bool)
			for _, c := range all {
				if seen[c] {
					t.Fatalf("Duplicate card %s", c)
				}
				seen[c] = true
			}
			if len(seen) != 52 {
				t.Errorf("Expected 52 unique cards, got %d", len(seen))
			}
		}
	})

	t.Run("UsesFiftyOneDraws", func(t *testing.T) {
		seq := rng.NewSequence(make([]float64, 51)...)
		NewShuffledDeck(seq)
		if seq.Consumed() != 51 {
			t.Errorf("Expected 51 draws, got %d", seq.Consumed())
		}
	})

	t.Run("SeededStreamIsReproducible", func(t *testing.T) {
		a, _ := NewShuffledDeck(rng.NewStream("deck")).Deal(52)
		b, _ := NewShuffledDeck(rng.NewStream("deck")).Deal(52)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("Card %d differs: %s vs %s", i, a[i], b[i])
			}
		}
	})
}

func TestDeal(t *testing.T) {
	t.Run("NeverRepeatsAcrossDeals", func(t *testing.T) {
		d := NewShuffledDeck(rng.New())
		seen := make(map[Card]bool)
		for _, n := range []int{2, 2, 5, 5, 5, 33} {
			hand, err := d.Deal(n)
			if err != nil {
				t.Fatalf("Deal(%d) failed: %v", n, err)
			}
			for _, c := range hand {
				if seen[c] {
					t.Fatalf("Card %s dealt twice", c)
				}
				seen[c] = true
			}
		}
		if d.Remaining() != 0 {
			t.Errorf("Expected empty deck, %d left", d.Remaining())
		}
	})

	t.Run("RejectsOverdraw", func(t *testing.T) {
		d := NewDeck()
		if _, err := d.Deal(50); err != nil {
			t.Fatalf("Deal(50) failed: %v", err)
		}
		if _, err := d.Deal(3); !errors.Is(err, ErrDeckExhausted) {
			t.Errorf("Expected ErrDeckExhausted, got %v", err)
		}
		if d.Remaining() != 2 {
			t.Errorf("Failed deal should not consume cards, %d left", d.Remaining())
		}
	})

	t.Run("StackedDeckDealsInOrder", func(t *testing.T) {
		want := MustParseHand("Ah Kh Qh")
		d := NewStackedDeck(want...)
		got, _ := d.Deal(3)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Card
	}{
		{"Ah", Card{Hearts, Ace}},
		{"Ts", Card{Spades, Ten}},
		{"10d", Card{Diamonds, Ten}},
		{"2c", Card{Clubs, Two}},
		{"qH", Card{Hearts, Queen}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}

	for _, bad := range []string{"", "A", "1h", "Ax", "11s"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidCard) {
			t.Errorf("Parse(%q): expected ErrInvalidCard, got %v", bad, err)
		}
	}
}

func TestCardText(t *testing.T) {
	c := Card{Hearts, Ten}
	if c.String() != "10♥" {
		t.Errorf("Expected 10♥, got %s", c.String())
	}
	text, _ := c.MarshalText()
	var back Card
	if err := back.UnmarshalText(text); err != nil || back != c {
		t.Errorf("Round trip of %s failed: %v", text, err)
	}
}
