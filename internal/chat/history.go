package chat

import "mailwatch/internal/agent"

// History is an append-only conversation log. Readers take a window of the
// most recent entries; nothing is ever removed.
type History struct {
	entries []agent.Message
	start   int
}

func (h *History) Append(m agent.Message) {
	h.entries = append(h.entries, m)
}

// Window returns a copy of the last n visible entries.
func (h *History) Window(n int) []agent.Message {
	visible := h.entries[h.start:]
	if n >= 0 && len(visible) > n {
		visible = visible[len(visible)-n:]
	}
	out := make([]agent.Message, len(visible))
	copy(out, visible)
	return out
}

// Clear hides everything appended so far from future windows.
func (h *History) Clear() {
	h.start = len(h.entries)
}

// Len is the number of visible entries.
func (h *History) Len() int { return len(h.entries) - h.start }

// Total counts every entry ever appended, cleared or not.
func (h *History) Total() int { return len(h.entries) }
