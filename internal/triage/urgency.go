package triage

import "strings"

// Urgency is the closed taxonomy mail items are sorted into.
type Urgency string

const (
	High   Urgency = "ALTA"
	Medium Urgency = "MÉDIA"
	Low    Urgency = "BAIXA"
)

// DefaultUrgency is used whenever the model's answer cannot be mapped.
const DefaultUrgency = Medium

// ParseUrgency maps free model output onto the taxonomy. Matching is
// case-insensitive and exact; anything else yields DefaultUrgency.
func ParseUrgency(text string) (Urgency, bool) {
	switch Urgency(strings.ToUpper(strings.TrimSpace(text))) {
	case High:
		return High, true
	case Medium:
		return Medium, true
	case Low:
		return Low, true
	}
	return DefaultUrgency, false
}

func (u Urgency) Marker() string {
	switch u {
	case High:
		return "🔴"
	case Medium:
		return "🟡"
	case Low:
		return "🟢"
	}
	return "⚪"
}
