package session

import (
	"sort"

	"github.com/alexbotov/casino/internal/domain"
)

// Milestone pays Bonus the first time the balance reaches Threshold.
type Milestone struct {
	Threshold domain.Money `json:"threshold"`
	Bonus     domain.Money `json:"bonus"`
}

// Progress is what observing a balance produced.
type Progress struct {
	Milestones      []Milestone `json:"milestones,omitempty"`
	GoalReached     bool        `json:"goal_reached"`
	GoalJustReached bool        `json:"goal_just_reached"`
}

// Progression latches milestone and goal flags. A flag, once set, stays set
// no matter where the balance goes afterwards.
type Progression struct {
	milestones  []Milestone
	fired       []bool
	goal        domain.Money
	goalReached bool
}

func NewProgression(milestones []Milestone, goal domain.Money) *Progression {
	sorted := append([]Milestone(nil), milestones...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})
	return &Progression{
		milestones: sorted,
		fired:      make([]bool, len(sorted)),
		goal:       goal,
	}
}

// Observe fires every milestone at or below balance that has not fired
// before, lowest first, and latches the goal flag.
func (p *Progression) Observe(balance domain.Money) Progress {
	var out Progress
	for i, m := range p.milestones {
		if p.fired[i] || balance.LessThan(m.Threshold) {
			continue
		}
		p.fired[i] = true
		out.Milestones = append(out.Milestones, m)
	}

	if !p.goalReached && balance.GreaterThanOrEqual(p.goal) {
		p.goalReached = true
		out.GoalJustReached = true
	}
	out.GoalReached = p.goalReached
	return out
}

func (p *Progression) GoalReached() bool {
	return p.goalReached
}

func (p *Progression) Goal() domain.Money {
	return p.goal
}

// MilestoneStatus pairs a milestone with whether it has fired.
type MilestoneStatus struct {
	Milestone
	Fired bool `json:"fired"`
}

func (p *Progression) Status() []MilestoneStatus {
	out := make([]MilestoneStatus, len(p.milestones))
	for i, m := range p.milestones {
		out[i] = MilestoneStatus{Milestone: m, Fired: p.fired[i]}
	}
	return out
}
