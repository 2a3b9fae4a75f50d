package web

import "gmemo/internal/memo"

// PriorityDisplay is how a priority is drawn: label, icon and badge classes.
type PriorityDisplay struct {
	Value      memo.Priority
	Label      string
	IconClass  string
	BadgeClass string
}

var priorityDisplays = map[memo.Priority]PriorityDisplay{
	memo.PriorityLow:    {memo.PriorityLow, "Low", "fas fa-arrow-down text-success", "bg-success"},
	memo.PriorityNormal: {memo.PriorityNormal, "Normal", "fas fa-minus text-secondary", "bg-secondary"},
	memo.PriorityHigh:   {memo.PriorityHigh, "High", "fas fa-arrow-up text-warning", "bg-warning text-dark"},
	memo.PriorityUrgent: {memo.PriorityUrgent, "Urgent", "fas fa-exclamation text-danger", "bg-danger"},
}

// displayFor falls back to normal for values it does not know.
func displayFor(p memo.Priority) PriorityDisplay {
	if d, ok := priorityDisplays[p]; ok {
		return d
	}
	return priorityDisplays[memo.PriorityNormal]
}

func priorityOptions() []PriorityDisplay {
	out := make([]PriorityDisplay, 0, len(priorityDisplays))
	for _, p := range memo.Priorities() {
		out = append(out, priorityDisplays[p])
	}
	return out
}
