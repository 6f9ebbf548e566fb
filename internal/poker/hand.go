// Package poker classifies card hands into ranked categories.
//
// Hands of equal HandRank are not split by kickers: callers treat them as a
// tie. EvaluatePool looks at a 7-card Hold'em pool as a whole instead of
// searching every 5-card subset, so a flush and a straight may be built from
// different cards. StrictCompare is available for full showdown rules.
package poker

import (
	"fmt"
	"sort"

	"github.com/alexbotov/casino/internal/cards"
)

// HandRank orders hand categories from weakest to strongest.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var rankNames = [...]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

func (r HandRank) String() string {
	if r < HighCard || r > RoyalFlush {
		return fmt.Sprintf("HandRank(%d)", int(r))
	}
	return rankNames[r]
}

func (r HandRank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Hand is the result of classifying a set of cards.
type Hand struct {
	Rank  HandRank `json:"rank"`
	Label string   `json:"label"`
}

// Beats reports whether h outranks other. Equal categories never beat each
// other.
func (h Hand) Beats(other Hand) bool {
	return h.Rank > other.Rank
}

// shape holds the counts the classifier works from.
type shape struct {
	counts   []int // group sizes, largest first
	flush    bool
	straight bool
	royal    bool
}

func countRanks(cs []cards.Card) map[cards.Rank]int {
	byRank := make(map[cards.Rank]int, len(cs))
	for _, c := range cs {
		byRank[c.Rank]++
	}
	return byRank
}

func groupShape(byRank map[cards.Rank]int) ([]int, []cards.Rank) {
	groups := make([]cards.Rank, 0, len(byRank))
	for r := range byRank {
		groups = append(groups, r)
	}
	sort.Slice(groups, func(i, j int) bool {
		if byRank[groups[i]] != byRank[groups[j]] {
			return byRank[groups[i]] > byRank[groups[j]]
		}
		return groups[i] > groups[j]
	})

	counts := make([]int, len(groups))
	for i, r := range groups {
		counts[i] = byRank[r]
	}
	return counts, groups
}

// classify applies the category precedence shared by every evaluator.
func classify(s shape) HandRank {
	second := 0
	if len(s.counts) > 1 {
		second = s.counts[1]
	}

	switch {
	case s.straight && s.flush && s.royal:
		return RoyalFlush
	case s.straight && s.flush:
		return StraightFlush
	case s.counts[0] == 4:
		return FourOfAKind
	case s.counts[0] == 3 && second >= 2:
		return FullHouse
	case s.flush:
		return Flush
	case s.straight:
		return Straight
	case s.counts[0] == 3:
		return ThreeOfAKind
	case s.counts[0] == 2 && second == 2:
		return TwoPair
	case s.counts[0] == 2:
		return Pair
	}
	return HighCard
}

// EvaluateFive classifies exactly five cards. A straight needs five
// consecutive ranks with the ace high only; A-2-3-4-5 is not a straight.
func EvaluateFive(cs []cards.Card) Hand {
	if len(cs) != 5 {
		panic(fmt.Sprintf("poker: EvaluateFive needs 5 cards, got %d", len(cs)))
	}

	byRank := countRanks(cs)
	counts, groups := groupShape(byRank)

	flush := true
	for _, c := range cs[1:] {
		if c.Suit != cs[0].Suit {
			flush = false
			break
		}
	}

	straight := false
	low := groups[len(groups)-1]
	if len(groups) == 5 {
		sorted := append([]cards.Rank(nil), groups...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		low = sorted[0]
		straight = sorted[4]-sorted[0] == 4
	}

	rank := classify(shape{
		counts:   counts,
		flush:    flush,
		straight: straight,
		royal:    straight && low == cards.Ten,
	})
	return Hand{Rank: rank, Label: rank.String()}
}

// EvaluatePool classifies a Hold'em pool of any size by looking at it as a
// whole: a flush is any suit held five or more times and a straight is any
// run of five consecutive ranks.
func EvaluatePool(cs []cards.Card) Hand {
	if len(cs) < 5 {
		panic(fmt.Sprintf("poker: EvaluatePool needs at least 5 cards, got %d", len(cs)))
	}

	byRank := countRanks(cs)
	counts, _ := groupShape(byRank)

	bySuit := make(map[cards.Suit]int, 4)
	flush := false
	for _, c := range cs {
		bySuit[c.Suit]++
		if bySuit[c.Suit] >= 5 {
			flush = true
		}
	}

	straight, royal := false, false
	run := 0
	for r := cards.Two; r <= cards.Ace; r++ {
		if byRank[r] == 0 {
			run = 0
			continue
		}
		run++
		if run >= 5 {
			straight = true
			if r == cards.Ace {
				royal = true
			}
		}
	}

	rank := classify(shape{
		counts:   counts,
		flush:    flush,
		straight: straight,
		royal:    royal,
	})
	return Hand{Rank: rank, Label: rank.String()}
}

// HasAceKing reports whether both an ace and a king are among cs.
func HasAceKing(cs []cards.Card) bool {
	var ace, king bool
	for _, c := range cs {
		switch c.Rank {
		case cards.Ace:
			ace = true
		case cards.King:
			king = true
		}
	}
	return ace && king
}
