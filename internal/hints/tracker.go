// Package hints tracks recent transcript text and decides when a question
// appears to be forming so the next chunk can be cut early.
package hints

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/width"
)

// DefaultPatterns are the fast interrogative matchers applied to folded,
// lower-cased text
var DefaultPatterns = []string{
	"?",
	"ですか", "ますか", "でしょうか", "ませんか", "のか", "かな",
	"何", "なに", "なぜ", "どう", "どこ", "いつ", "誰", "だれ", "どれ", "どの", "いくら",
	"教えて", "ください",
	"what ", "why ", "how ", "when ", "where ", "who ", "which ",
	"can you", "could you", "would you", "is it", "are you", "do you",
}

// Config holds tracker limits
type Config struct {
	RingSize    int           // Recent transcripts kept for the question-likely signal
	BufferRunes int           // Streaming buffer capacity, oldest runes dropped first
	Debounce    time.Duration // Minimum interval between streaming scans
	Window      time.Duration // How far back transcripts count toward question-likely
	Patterns    []string
}

// DefaultConfig returns the standard tracker limits
func DefaultConfig() Config {
	return Config{
		RingSize:    10,
		BufferRunes: 500,
		Debounce:    500 * time.Millisecond,
		Window:      3000 * time.Millisecond,
		Patterns:    DefaultPatterns,
	}
}

type entry struct {
	text string
	at   time.Time
}

// Tracker keeps a ring of recent transcripts and a debounced streaming buffer
type Tracker struct {
	mu       sync.Mutex
	cfg      Config
	patterns []string

	ring []entry
	head int
	size int

	buffer   []rune
	dirty    bool
	lastScan time.Time
}

// NewTracker creates a tracker; zero limits fall back to defaults
func NewTracker(cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.RingSize <= 0 {
		cfg.RingSize = def.RingSize
	}
	if cfg.BufferRunes <= 0 {
		cfg.BufferRunes = def.BufferRunes
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = def.Patterns
	}

	patterns := make([]string, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		if p = Normalize(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	return &Tracker{
		cfg:      cfg,
		patterns: patterns,
		ring:     make([]entry, cfg.RingSize),
	}
}

// Normalize folds full-width ASCII and lower-cases text for matching
func Normalize(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// Observe records a completed transcript in the ring
func (t *Tracker) Observe(text string, at time.Time) {
	text = Normalize(strings.TrimSpace(text))
	if text == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.ring[t.head] = entry{text: text, at: at}
	t.head = (t.head + 1) % len(t.ring)
	if t.size < len(t.ring) {
		t.size++
	}
}

// QuestionLikely scans the transcripts that arrived after since and within
// the window ending at now. It returns the age of the newest such transcript.
func (t *Tracker) QuestionLikely(since, now time.Time) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var (
		b      strings.Builder
		newest time.Time
	)
	for i := 0; i < t.size; i++ {
		// Oldest first so the concatenation reads in arrival order
		idx := (t.head - t.size + i + len(t.ring)) % len(t.ring)
		e := t.ring[idx]
		if !e.at.After(since) || now.Sub(e.at) > t.cfg.Window {
			continue
		}
		b.WriteString(e.text)
		b.WriteByte(' ')
		if e.at.After(newest) {
			newest = e.at
		}
	}

	if b.Len() == 0 || !t.match(b.String()) {
		return false, 0
	}
	age := now.Sub(newest)
	if age < 0 {
		age = 0
	}
	return true, age
}

// Append adds partial text to the streaming buffer and scans it if the
// debounce interval allows. A positive scan clears the buffer.
func (t *Tracker) Append(text string, now time.Time) bool {
	if text == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.buffer = append(t.buffer, []rune(Normalize(text))...)
	if over := len(t.buffer) - t.cfg.BufferRunes; over > 0 {
		t.buffer = append(t.buffer[:0], t.buffer[over:]...)
	}
	t.dirty = true

	return t.scanLocked(now)
}

// Poll scans text left pending by an earlier debounced Append
func (t *Tracker) Poll(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanLocked(now)
}

// Pending returns the number of buffered runes
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffer)
}

// Reset clears both structures
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.ring {
		t.ring[i] = entry{}
	}
	t.head, t.size = 0, 0
	t.buffer = t.buffer[:0]
	t.dirty = false
	t.lastScan = time.Time{}
}

func (t *Tracker) scanLocked(now time.Time) bool {
	if !t.dirty {
		return false
	}
	if !t.lastScan.IsZero() && now.Sub(t.lastScan) < t.cfg.Debounce {
		return false
	}

	t.lastScan = now
	t.dirty = false

	if !t.match(string(t.buffer)) {
		return false
	}
	t.buffer = t.buffer[:0]
	return true
}

func (t *Tracker) match(text string) bool {
	for _, p := range t.patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
