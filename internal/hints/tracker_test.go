package hints

import (
	"strings"
	"testing"
	"time"
)

var base = time.Unix(1700000000, 0)

func TestTracker_QuestionLikely(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	tr.Observe("今日は天気がいいですね", base.Add(100*time.Millisecond))

	if ok, _ := tr.QuestionLikely(base, base.Add(time.Second)); ok {
		t.Error("Expected declarative transcript to not be question-likely")
	}

	tr.Observe("会議は何時に始まりますか", base.Add(time.Second))
	ok, age := tr.QuestionLikely(base, base.Add(1500*time.Millisecond))
	if !ok {
		t.Fatal("Expected question-likely after interrogative transcript")
	}
	if age != 500*time.Millisecond {
		t.Errorf("Expected hint age 500ms, got %v", age)
	}
}

func TestTracker_QuestionLikelyIgnoresEntriesBeforeBoundary(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	tr.Observe("What time is it?", base)

	// The boundary was cut after the transcript arrived
	if ok, _ := tr.QuestionLikely(base.Add(time.Millisecond), base.Add(time.Second)); ok {
		t.Error("Expected transcript older than the last boundary to be ignored")
	}
}

func TestTracker_QuestionLikelyWindow(t *testing.T) {
	tr := NewTracker(Config{Window: 3 * time.Second})
	tr.Observe("どこで会いますか", base.Add(time.Millisecond))

	if ok, _ := tr.QuestionLikely(base, base.Add(3*time.Second)); !ok {
		t.Error("Expected transcript inside the window to count")
	}
	if ok, _ := tr.QuestionLikely(base, base.Add(4*time.Second)); ok {
		t.Error("Expected transcript outside the window to be ignored")
	}
}

func TestTracker_RingEvictsOldest(t *testing.T) {
	tr := NewTracker(Config{RingSize: 2, Window: time.Hour})
	tr.Observe("why is that", base.Add(1*time.Second))
	tr.Observe("okay", base.Add(2*time.Second))
	tr.Observe("sure", base.Add(3*time.Second))

	if ok, _ := tr.QuestionLikely(base, base.Add(4*time.Second)); ok {
		t.Error("Expected evicted interrogative to no longer count")
	}
}

func TestTracker_FullWidthFolding(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	// Full-width "？" folds to "?"
	if !tr.Append("本当に？", base) {
		t.Error("Expected full-width question mark to match")
	}
	if got := Normalize("ＷＨＡＴ "); got != "what " {
		t.Errorf("Expected folded text %q, got %q", "what ", got)
	}
}

func TestTracker_AppendDebounce(t *testing.T) {
	tr := NewTracker(Config{Debounce: 500 * time.Millisecond})

	if tr.Append("hello there", base) {
		t.Fatal("Expected no match on declarative text")
	}
	// Within the debounce interval the scan is skipped
	if tr.Append(" can you help", base.Add(100*time.Millisecond)) {
		t.Error("Expected scan to be debounced")
	}
	if tr.Poll(base.Add(300 * time.Millisecond)) {
		t.Error("Expected poll inside debounce interval to be skipped")
	}
	if !tr.Poll(base.Add(600 * time.Millisecond)) {
		t.Error("Expected pending text to be scanned once the interval elapsed")
	}
	if tr.Pending() != 0 {
		t.Errorf("Expected positive scan to clear buffer, got %d runes", tr.Pending())
	}
	if tr.Poll(base.Add(2 * time.Second)) {
		t.Error("Expected cleared buffer to not re-trigger")
	}
}

func TestTracker_BufferDropsOldest(t *testing.T) {
	tr := NewTracker(Config{BufferRunes: 10, Debounce: time.Hour})
	tr.Append("why", base)
	tr.Append(strings.Repeat("あ", 12), base.Add(time.Millisecond))

	if tr.Pending() != 10 {
		t.Errorf("Expected buffer capped at 10 runes, got %d", tr.Pending())
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	tr.Observe("誰が来ますか", base.Add(time.Millisecond))
	tr.Append("partial", base)
	tr.Reset()

	if ok, _ := tr.QuestionLikely(base, base.Add(time.Second)); ok {
		t.Error("Expected ring cleared after reset")
	}
	if tr.Pending() != 0 {
		t.Errorf("Expected buffer cleared after reset, got %d runes", tr.Pending())
	}
}
