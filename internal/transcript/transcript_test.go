package transcript

import (
	"sync"
	"testing"
)

func TestAppendOrderAndStates(t *testing.T) {
	tr := New()

	uid := tr.AppendUser("привет")
	b := tr.AppendReply()

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != uid || entries[0].Role != RoleUser || !entries[0].Settled() {
		t.Fatalf("bad user entry: %+v", entries[0])
	}
	if entries[1].Role != RoleAssistant || !entries[1].Typing || entries[1].Settled() {
		t.Fatalf("bad reply entry: %+v", entries[1])
	}
	if entries[1].ID != b.(*Bubble).ID() {
		t.Fatal("bubble ID does not match entry ID")
	}
}

func TestBubbleLifecycle(t *testing.T) {
	tr := New()
	b := tr.AppendReply()

	b.SetSpeaking(true)
	b.ClearTyping()
	b.SetSpeaking(false)
	b.SetText("Здр")
	b.SetText("Здравствуйте")
	b.MarkComplete()

	e := tr.Entries()[0]
	if e.Content != "Здравствуйте" || e.Typing || e.Speaking || !e.Complete || e.Failed {
		t.Fatalf("unexpected final entry: %+v", e)
	}
}

func TestBubbleFailClearsIndicators(t *testing.T) {
	tr := New()
	b := tr.AppendReply()
	b.SetSpeaking(true)

	b.Fail("request failed")

	e := tr.Entries()[0]
	if e.Content != "request failed" || e.Typing || e.Speaking || !e.Failed {
		t.Fatalf("unexpected failed entry: %+v", e)
	}
}

func TestEntriesIsASnapshot(t *testing.T) {
	tr := New()
	b := tr.AppendReply()
	snap := tr.Entries()

	b.SetText("later")
	if snap[0].Content != "" {
		t.Fatal("snapshot changed after a later write")
	}
}

func TestChangesCoalesce(t *testing.T) {
	tr := New()
	tr.AppendUser("a")
	tr.AppendUser("b")
	tr.AppendUser("c")

	select {
	case <-tr.Changes():
	default:
		t.Fatal("expected a change signal")
	}
	select {
	case <-tr.Changes():
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestConcurrentWrites(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := tr.AppendReply()
			for j := 0; j < 50; j++ {
				b.SetText("x")
			}
			b.MarkComplete()
		}()
	}
	wg.Wait()

	if tr.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", tr.Len())
	}
	for _, e := range tr.Entries() {
		if !e.Complete {
			t.Fatalf("entry %s not complete", e.ID)
		}
	}
}
