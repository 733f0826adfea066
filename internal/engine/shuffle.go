package engine

import (
	"math/rand"
	"sort"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Presentation is the order in which a question's options are shown.
// Mapping[slot] is the 0-based canonical index of the option at slot.
type Presentation struct {
	Options []string `json:"options"`
	Mapping []int    `json:"mapping"`
}

// PresentedOption is one option as shown, labelled by its slot.
type PresentedOption struct {
	Slot  int    `json:"slot"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Identity presents options in canonical order.
func Identity(q model.Question) Presentation {
	p := Presentation{
		Options: append([]string(nil), q.Options...),
		Mapping: make([]int, len(q.Options)),
	}
	for i := range p.Mapping {
		p.Mapping[i] = i
	}
	return p
}

// Randomize shuffles the option order with Fisher-Yates over indices, so
// repeated option texts keep distinct canonical positions.
func Randomize(q model.Question, rng *rand.Rand) Presentation {
	p := Identity(q)
	for i := len(p.Mapping) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.Mapping[i], p.Mapping[j] = p.Mapping[j], p.Mapping[i]
	}
	for slot, idx := range p.Mapping {
		p.Options[slot] = q.Options[idx]
	}
	return p
}

// Canonical translates presentation slots to sorted, distinct 1-based
// canonical indices. Slots must be in range.
func (p Presentation) Canonical(slots []int) []int {
	seen := make(map[int]bool, len(slots))
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		idx := p.Mapping[s] + 1
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Labeled lists the options in presentation order with their slot letters.
func (p Presentation) Labeled() []PresentedOption {
	out := make([]PresentedOption, len(p.Options))
	for slot, text := range p.Options {
		out[slot] = PresentedOption{Slot: slot, Label: model.OptionLabel(slot), Text: text}
	}
	return out
}
