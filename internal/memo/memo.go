// Package memo holds the memo entity and the owner-scoped pipeline around it:
// authorization scoping, search, pagination, statistics and validated mutations.
package memo

import (
	"strings"
	"time"

	"gmemo/internal/validation"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

const TitleMaxLength = 200

// Priorities lists the accepted values from least to most important.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return PriorityNormal, true
	}
	return p, p.Valid()
}

type Memo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Priority  Priority  `json:"priority"`
	IsPinned  bool      `json:"is_pinned"`
	OwnerID   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the mutable part of a memo as submitted by a client.
type Input struct {
	Title    string `form:"title" validate:"required,max=200"`
	Content  string `form:"content" validate:"required"`
	Priority string `form:"priority" validate:"oneof=low normal high urgent"`
	IsPinned bool   `form:"is_pinned"`
}

// InputFrom returns the input that would reproduce m, for prefilling edit forms.
func InputFrom(m Memo) Input {
	return Input{
		Title:    m.Title,
		Content:  m.Content,
		Priority: string(m.Priority),
		IsPinned: m.IsPinned,
	}
}

func (in Input) normalized() Input {
	in.Title = strings.TrimSpace(in.Title)
	if strings.TrimSpace(in.Content) == "" {
		in.Content = ""
	}
	in.Priority = strings.ToLower(strings.TrimSpace(in.Priority))
	if in.Priority == "" {
		in.Priority = string(PriorityNormal)
	}
	return in
}

// Validate normalizes in and checks every field. The error, when not nil,
// is a *ValidationError naming each failing field.
func (in Input) Validate() (Input, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return in, err
	}
	return in, nil
}
