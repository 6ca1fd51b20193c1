package question

import "testing"

func TestRefine(t *testing.T) {
	p, err := NewPipeline(nil)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"keeps question", "今日の予定はどうなっていますか？", "今日の予定はどうなっていますか？"},
		{"mid filler dropped", "会議は、えーと、何時ですか", "会議は、何時ですか？"},
		{"adjacent repeat collapsed", "where where is the room", "Where is the room?"},
		{"trailing particle stripped", "これは誰のペンですよね", "これは誰のペン？"},
		{"mark kept without interrogative", "そうなの？", "そうなの？"},
		{"no mark for request", "教えてください", "教えてください"},
		{"full-width latin folded", "ＷＨＡＴ　ＩＳ　ＩＴ？", "What is it?"},
		{"degenerate falls back", "えー？", "えー？"},
		{"imperative left unmarked", "do it now", "Do it now"},
		{"non-interrogative left unmarked", "いつもの店", "いつもの店"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Refine(tt.candidate); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	m, err := newMatcher(DefaultLexicon())
	if err != nil {
		t.Fatalf("newMatcher failed: %v", err)
	}

	got := m.split("最初の質問です！本当ですか⁇次は\nどこですか")
	want := []string{"最初の質問です！", "本当ですか⁇", "次は", "どこですか"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d segments, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected segment %d to be %q, got %q", i, want[i], got[i])
		}
	}
}

func TestTrimPreface(t *testing.T) {
	m, err := newMatcher(DefaultLexicon())
	if err != nil {
		t.Fatalf("newMatcher failed: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"えーと、あの、まあ、ちなみに、何時ですか？", "ちなみに、何時ですか？"},
		{"あの人は誰ですか？", "あの人は誰ですか？"},
		{"so, um, where is it?", "where is it?"},
		{"sofa color?", "sofa color?"},
		{"えー、？", "えー、？"},
	}

	for _, tt := range tests {
		if got := m.trimPreface(tt.in); got != tt.want {
			t.Errorf("trimPreface(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
