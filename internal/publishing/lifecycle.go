package publishing

import (
	"fmt"
	"strings"
	"time"
)

// Status is the derived lifecycle stage of a content item.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ParseStatus validates a status string from a transition request.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(s), nil
	}
	return "", &ValidationError{Reason: fmt.Sprintf("unknown status %q", s)}
}

// State is the stored flag pair the lifecycle status derives from.
// PublishedAt is monotonic: set once on the first publish, never cleared.
type State struct {
	IsActive    bool
	PublishedAt *time.Time
}

// Status derives the lifecycle stage. This is the single source of truth;
// no caller writes a status field directly.
func (s State) Status() Status {
	switch {
	case s.IsActive && s.PublishedAt != nil:
		return StatusPublished
	case s.PublishedAt != nil:
		return StatusArchived
	default:
		return StatusDraft
	}
}

// DeriveStatus is the package-level form of State.Status.
func DeriveStatus(isActive bool, publishedAt *time.Time) Status {
	return State{IsActive: isActive, PublishedAt: publishedAt}.Status()
}

// Document holds the fields checked for minimum completeness on publish.
type Document struct {
	Title string
	Body  string
}

func (d Document) complete() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Reason: "cannot publish: title is empty"}
	}
	if strings.TrimSpace(d.Body) == "" {
		return &ValidationError{Reason: "cannot publish: body is empty"}
	}
	return nil
}

// Transition computes the flag state after an admin-triggered status change.
// A transition to the current status is a no-op. Publishing an incomplete
// document fails with a ValidationError and leaves cur untouched.
func Transition(cur State, target Status, doc Document, now time.Time) (State, error) {
	if cur.Status() == target {
		return cur, nil
	}

	switch target {
	case StatusPublished:
		if err := doc.complete(); err != nil {
			return cur, err
		}
		next := State{IsActive: true, PublishedAt: cur.PublishedAt}
		if next.PublishedAt == nil {
			t := now
			next.PublishedAt = &t
		}
		return next, nil

	case StatusDraft, StatusArchived:
		// PublishedAt is history and is kept. For a previously published
		// item both targets deactivate it and the derived status is
		// archived; a never-published item stays a draft.
		return State{IsActive: false, PublishedAt: cur.PublishedAt}, nil
	}

	return cur, &ValidationError{Reason: fmt.Sprintf("unknown status %q", target)}
}
