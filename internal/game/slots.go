package game

import (
	"github.com/alexbotov/casino/internal/domain"
	"github.com/alexbotov/casino/internal/rng"
)

// Symbol represents a slot reel symbol
type Symbol string

const (
	SymbolCherry  Symbol = "🍒"
	SymbolLemon   Symbol = "🍋"
	SymbolOrange  Symbol = "🍊"
	SymbolGrapes  Symbol = "🍇"
	SymbolStar    Symbol = "⭐"
	SymbolDiamond Symbol = "💎"
	SymbolSeven   Symbol = "7️⃣"

	SymbolCrown    Symbol = "👑"
	SymbolMoneyBag Symbol = "💰"
	SymbolGift     Symbol = "🎁"
	SymbolCake     Symbol = "🎂"
	SymbolParty    Symbol = "🎉"
	SymbolSparkles Symbol = "✨"
	SymbolFire     Symbol = "🔥"
)

// Jackpot forces every reel to Symbol with probability Chance, checked
// before the reels are drawn.
type Jackpot struct {
	Symbol Symbol
	Chance float64
}

// Machine is a three-reel slot where every reel draws uniformly from the
// same symbol set.
type Machine struct {
	Game          domain.GameID
	Symbols       []Symbol
	Paytable      map[Symbol]int64 // three of a kind
	DefaultTriple int64
	PairPays      int64 // any two matching
	Jackpot       *Jackpot
}

var Lucky7 = &Machine{
	Game:    domain.GameLucky7,
	Symbols: []Symbol{SymbolCherry, SymbolLemon, SymbolOrange, SymbolGrapes, SymbolStar, SymbolDiamond, SymbolSeven},
	Paytable: map[Symbol]int64{
		SymbolSeven:   100,
		SymbolDiamond: 50,
		SymbolStar:    25,
		SymbolGrapes:  10,
		SymbolOrange:  8,
		SymbolLemon:   6,
		SymbolCherry:  5,
	},
	DefaultTriple: 5,
	PairPays:      2,
}

var Fortune = &Machine{
	Game:    domain.GameFortune,
	Symbols: []Symbol{SymbolCrown, SymbolMoneyBag, SymbolGift, SymbolCake, SymbolParty, SymbolSparkles, SymbolFire},
	Paytable: map[Symbol]int64{
		SymbolCrown:    80,
		SymbolMoneyBag: 40,
		SymbolGift:     30,
		SymbolCake:     40,
		SymbolParty:    20,
		SymbolSparkles: 15,
		SymbolFire:     25,
	},
	DefaultTriple: 10,
	PairPays:      2,
	Jackpot:       &Jackpot{Symbol: SymbolCake, Chance: 0.05},
}

// SlotOutcome represents the outcome of a slot spin
type SlotOutcome struct {
	Reels      []Symbol `json:"reels"`
	Jackpot    bool     `json:"jackpot"`
	Match      int      `json:"match"` // 3, 2 or 0
	Multiplier int64    `json:"multiplier"`
}

// Spin draws the reels. A jackpot machine spends one draw on the jackpot
// check and, if it hits, none on the reels.
func (m *Machine) Spin(src rng.Source) ([]Symbol, bool) {
	if m.Jackpot != nil && rng.Chance(src, m.Jackpot.Chance) {
		return []Symbol{m.Jackpot.Symbol, m.Jackpot.Symbol, m.Jackpot.Symbol}, true
	}
	reels := make([]Symbol, 3)
	for i := range reels {
		reels[i] = m.Symbols[rng.Intn(src, len(m.Symbols))]
	}
	return reels, false
}

// Evaluate returns the multiplier for a set of reels.
func (m *Machine) Evaluate(reels []Symbol) (int64, int) {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		if pay, ok := m.Paytable[a]; ok {
			return pay, 3
		}
		return m.DefaultTriple, 3
	case a == b || b == c || a == c:
		return m.PairPays, 2
	}
	return 0, 0
}

// Settle pays a given set of reels.
func (m *Machine) Settle(wager domain.Money, reels []Symbol, jackpot bool) domain.RoundResult {
	mult, match := m.Evaluate(reels)

	label := "No match"
	switch {
	case jackpot:
		label = "Jackpot! Three " + string(reels[0])
	case match == 3:
		label = "Three " + string(reels[0])
	case match == 2:
		label = "Two match"
	}

	return domain.RoundResult{
		Game:        m.Game,
		WagerAmount: wager,
		WinAmount:   wager.Times(mult),
		Label:       label,
		Outcome: SlotOutcome{
			Reels:      reels,
			Jackpot:    jackpot,
			Match:      match,
			Multiplier: mult,
		},
	}
}

// Resolve spins and pays.
func (m *Machine) Resolve(wager domain.Money, src rng.Source) domain.RoundResult {
	reels, jackpot := m.Spin(src)
	return m.Settle(wager, reels, jackpot)
}

// ExpectedReturn is the exact long-run payout per unit staked, found by
// enumerating every reel combination.
func (m *Machine) ExpectedReturn() float64 {
	n := len(m.Symbols)
	var total int64
	reels := make([]Symbol, 3)
	for _, a := range m.Symbols {
		for _, b := range m.Symbols {
			for _, c := range m.Symbols {
				reels[0], reels[1], reels[2] = a, b, c
				mult, _ := m.Evaluate(reels)
				total += mult
			}
		}
	}
	base := float64(total) / float64(n*n*n)
	if m.Jackpot == nil {
		return base
	}
	jackpot, _ := m.Evaluate([]Symbol{m.Jackpot.Symbol, m.Jackpot.Symbol, m.Jackpot.Symbol})
	return m.Jackpot.Chance*float64(jackpot) + (1-m.Jackpot.Chance)*base
}
