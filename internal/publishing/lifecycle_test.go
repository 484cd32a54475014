package publishing

import (
	"errors"
	"testing"
	"time"
)

var doc = Document{Title: "Annual Report", Body: "full text"}

func TestDeriveStatus(t *testing.T) {
	now := time.Now()
	cases := []struct {
		isActive    bool
		publishedAt *time.Time
		want        Status
	}{
		{false, nil, StatusDraft},
		{true, nil, StatusDraft},
		{true, &now, StatusPublished},
		{false, &now, StatusArchived},
	}
	for _, c := range cases {
		if got := DeriveStatus(c.isActive, c.publishedAt); got != c.want {
			t.Errorf("DeriveStatus(%v, %v) = %q, want %q", c.isActive, c.publishedAt != nil, got, c.want)
		}
	}
}

func TestPublishSetsPublishedAtOnce(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)

	st, err := Transition(State{}, StatusPublished, doc, t1)
	if err != nil {
		t.Fatal(err)
	}
	if st.Status() != StatusPublished || st.PublishedAt == nil || !st.PublishedAt.Equal(t1) {
		t.Fatalf("after publish: %+v", st)
	}

	st, err = Transition(st, StatusArchived, doc, t2)
	if err != nil {
		t.Fatal(err)
	}
	if st.Status() != StatusArchived {
		t.Fatalf("after archive: %q", st.Status())
	}
	if st.PublishedAt == nil || !st.PublishedAt.Equal(t1) {
		t.Fatalf("archive cleared publishedAt: %+v", st)
	}

	// Republish keeps the original timestamp, it is not reset to now.
	st, err = Transition(st, StatusPublished, doc, t2)
	if err != nil {
		t.Fatal(err)
	}
	if st.Status() != StatusPublished || !st.PublishedAt.Equal(t1) {
		t.Fatalf("after republish: %+v", st)
	}
}

func TestPublishIncompleteFailsWithoutMutation(t *testing.T) {
	cur := State{}
	for _, d := range []Document{
		{Title: "", Body: "text"},
		{Title: "title", Body: ""},
		{Title: "   ", Body: "text"},
	} {
		got, err := Transition(cur, StatusPublished, d, time.Now())
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("doc %+v: got %v, want ValidationError", d, err)
		}
		if got != cur {
			t.Errorf("doc %+v: state mutated on failed publish: %+v", d, got)
		}
	}
}

func TestTransitionToCurrentStatusIsNoop(t *testing.T) {
	now := time.Now()
	published := State{IsActive: true, PublishedAt: &now}

	for _, c := range []struct {
		cur    State
		target Status
	}{
		{State{}, StatusDraft},
		{published, StatusPublished},
		{State{IsActive: false, PublishedAt: &now}, StatusArchived},
	} {
		got, err := Transition(c.cur, c.target, Document{}, time.Now())
		if err != nil {
			t.Fatalf("no-op transition to %q errored: %v", c.target, err)
		}
		if got != c.cur {
			t.Errorf("no-op transition to %q changed state", c.target)
		}
	}
}

func TestArchiveNeverPublishedKeepsPublishedAtNil(t *testing.T) {
	st, err := Transition(State{IsActive: true}, StatusArchived, doc, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if st.PublishedAt != nil {
		t.Errorf("archiving a never-published item set publishedAt")
	}
	if st.IsActive {
		t.Errorf("archiving left the item active")
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("published"); err != nil {
		t.Error(err)
	}
	if _, err := ParseStatus("live"); err == nil {
		t.Error("unknown status accepted")
	}
}
