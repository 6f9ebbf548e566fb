package session

import (
	"errors"
	"testing"
	"time"

	"github.com/alexbotov/casino/internal/domain"
)

func money(f float64) domain.Money { return domain.NewMoney(f) }

func testConfig() Config {
	return Config{
		PlayerName:      "Tester",
		StartingBalance: money(200),
		WagerLevels:     []domain.Money{money(0.2), money(1), money(2), money(5)},
		Milestones: []Milestone{
			{Threshold: money(500), Bonus: money(20)},
			{Threshold: money(1000), Bonus: money(40)},
			{Threshold: money(1500), Bonus: money(40)},
		},
		Goal: money(2000),
	}
}

func TestProgression(t *testing.T) {
	t.Run("MilestoneFiresOnce", func(t *testing.T) {
		cfg := testConfig()
		p := NewProgression(cfg.Milestones, cfg.Goal)

		fired := 0
		for _, b := range []float64{490, 505, 480, 505} {
			fired += len(p.Observe(money(b)).Milestones)
		}
		if fired != 1 {
			t.Errorf("Expected exactly one bonus, got %d", fired)
		}
	})

	t.Run("JumpFiresAllCrossed", func(t *testing.T) {
		cfg := testConfig()
		p := NewProgression(cfg.Milestones, cfg.Goal)

		got := p.Observe(money(1200)).Milestones
		if len(got) != 2 {
			t.Fatalf("Expected 2 milestones, got %d", len(got))
		}
		if !got[0].Threshold.Equal(money(500)) || !got[1].Threshold.Equal(money(1000)) {
			t.Errorf("Unexpected milestones %v", got)
		}
	})

	t.Run("GoalLatches", func(t *testing.T) {
		cfg := testConfig()
		p := NewProgression(cfg.Milestones, cfg.Goal)

		if p.Observe(money(1999.99)).GoalReached {
			t.Error("Goal reached too early")
		}
		first := p.Observe(money(2000))
		if !first.GoalReached || !first.GoalJustReached {
			t.Error("Expected goal to be reached at 2000")
		}
		later := p.Observe(money(10))
		if !later.GoalReached || later.GoalJustReached {
			t.Error("Goal flag should stay latched without re-announcing")
		}
	})

	t.Run("UnsortedInput", func(t *testing.T) {
		p := NewProgression([]Milestone{
			{Threshold: money(1000), Bonus: money(40)},
			{Threshold: money(500), Bonus: money(20)},
		}, money(2000))
		status := p.Status()
		if !status[0].Threshold.Equal(money(500)) {
			t.Errorf("Expected milestones sorted by threshold, got %v", status)
		}
	})
}

func TestRecordRoundEnd(t *testing.T) {
	s := New("s1", testConfig())
	w := s.Wallet()

	w.Credit(money(290)) // 490
	if p, _ := s.RecordRoundEnd(); len(p.Milestones) != 0 {
		t.Fatal("No milestone expected at 490")
	}

	w.Credit(money(15)) // 505
	p, err := s.RecordRoundEnd()
	if err != nil {
		t.Fatalf("RecordRoundEnd failed: %v", err)
	}
	if len(p.Milestones) != 1 {
		t.Fatalf("Expected one milestone, got %d", len(p.Milestones))
	}
	if !s.Balance().Equal(money(525)) {
		t.Errorf("Expected bonus credited to 525, got %s", s.Balance())
	}

	w.Debit(money(45)) // 480
	s.RecordRoundEnd()
	w.Credit(money(25)) // 505
	if p, _ := s.RecordRoundEnd(); len(p.Milestones) != 0 {
		t.Error("Milestone fired a second time")
	}
	if !s.Balance().Equal(money(505)) {
		t.Errorf("Expected 505 with no second bonus, got %s", s.Balance())
	}

	bonuses := 0
	for _, tx := range w.Transactions(0) {
		if tx.Type == domain.TxTypeBonus {
			bonuses++
		}
	}
	if bonuses != 1 {
		t.Errorf("Expected one bonus transaction, got %d", bonuses)
	}
}

func TestWagerSelection(t *testing.T) {
	s := New("s1", testConfig())

	t.Run("StartsAtLowest", func(t *testing.T) {
		if !s.Wager().Equal(money(0.2)) {
			t.Errorf("Expected 0.20, got %s", s.Wager())
		}
	})

	t.Run("StepsToAdjacentLevels", func(t *testing.T) {
		want := []float64{1, 2, 5, 5}
		for _, w := range want {
			if got := s.StepUp(); !got.Equal(money(w)) {
				t.Errorf("StepUp: expected %.2f, got %s", w, got)
			}
		}
		want = []float64{2, 1, 0.2, 0.2}
		for _, w := range want {
			if got := s.StepDown(); !got.Equal(money(w)) {
				t.Errorf("StepDown: expected %.2f, got %s", w, got)
			}
		}
	})

	t.Run("ValidatesMembership", func(t *testing.T) {
		if err := s.ValidateWager(money(2)); err != nil {
			t.Errorf("Expected 2.00 valid, got %v", err)
		}
		if err := s.ValidateWager(money(3)); !errors.Is(err, ErrInvalidWager) {
			t.Errorf("Expected ErrInvalidWager, got %v", err)
		}
		if err := s.SetWager(money(0.5)); !errors.Is(err, ErrInvalidWager) {
			t.Errorf("Expected ErrInvalidWager, got %v", err)
		}
		if err := s.SetWager(money(5)); err != nil || !s.Wager().Equal(money(5)) {
			t.Errorf("SetWager(5) failed: %v", err)
		}
	})
}

func TestState(t *testing.T) {
	s := New("s1", testConfig())
	s.SetPending("round")

	st := s.State()
	if st.ID != "s1" || st.PlayerName != "Tester" {
		t.Errorf("Unexpected identity %q/%q", st.ID, st.PlayerName)
	}
	if !st.Balance.Equal(money(200)) || !st.Pending {
		t.Errorf("Unexpected state %+v", st)
	}
	if len(st.Milestones) != 3 || st.Milestones[0].Fired {
		t.Errorf("Unexpected milestones %+v", st.Milestones)
	}

	s.ClearPending()
	if s.Pending() != nil {
		t.Error("Pending round not cleared")
	}
}

func TestStore(t *testing.T) {
	st := NewStore(testConfig())

	a := st.Create("")
	b := st.Create("Alice")
	if a.ID == b.ID {
		t.Fatal("Sessions share an ID")
	}
	if a.PlayerName != "Tester" || b.PlayerName != "Alice" {
		t.Errorf("Unexpected names %q, %q", a.PlayerName, b.PlayerName)
	}

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		a.Wallet().Debit(money(50))
		if !b.Balance().Equal(money(200)) {
			t.Errorf("Debit leaked across sessions: %s", b.Balance())
		}
	})

	t.Run("Get", func(t *testing.T) {
		got, err := st.Get(a.ID)
		if err != nil || got != a {
			t.Errorf("Get failed: %v", err)
		}
		if _, err := st.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Sweep", func(t *testing.T) {
		if n := st.Sweep(time.Hour); n != 0 {
			t.Errorf("Expected nothing swept, got %d", n)
		}
		if n := st.Sweep(-time.Second); n != 2 {
			t.Errorf("Expected 2 swept, got %d", n)
		}
		if st.Len() != 0 {
			t.Errorf("Expected empty store, got %d", st.Len())
		}
	})
}
