package question

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the language tables the pipeline matches against.
// Every list is matched after width folding and lower-casing.
type Lexicon struct {
	// Terminators end a coarse segment. Each entry is a single character.
	Terminators []string `yaml:"terminators"`
	// QuestionMarks are every question-mark variant; non-terminator
	// variants split a segment a second time.
	QuestionMarks []string `yaml:"question_marks"`
	// Connectors separate distinct asks inside one long run
	Connectors []string `yaml:"connectors"`
	// Fillers are preamble and disfluency tokens
	Fillers []string `yaml:"fillers"`
	// PoliteSuffixes mark a request phrased without a question mark
	PoliteSuffixes []string `yaml:"polite_suffixes"`
	// Interrogatives are pronouns and adverbs that open a question
	Interrogatives []string `yaml:"interrogatives"`
	// NonInterrogatives begin with an interrogative but ask nothing, such as
	// いつも or どうぞ. An interrogative is ignored where one of them starts.
	NonInterrogatives []string `yaml:"non_interrogatives"`
	// QuestionOpeners are auxiliary-and-subject pairs that open a question
	// only at the start of a segment
	QuestionOpeners []string `yaml:"question_openers"`
	// QuestionEndings are sentence-final particle patterns
	QuestionEndings []string `yaml:"question_endings"`
	// TrailingParticles carry no content at the end of a refined question
	TrailingParticles []string `yaml:"trailing_particles"`
	// TopicMarkers follow the leading topic in a topic-then-question shape
	TopicMarkers []string `yaml:"topic_markers"`

	MinConnectorSplitRunes int `yaml:"min_connector_split_runes"`
	MaxPrefaceStrips       int `yaml:"max_preface_strips"`
	MaxTopicRunes          int `yaml:"max_topic_runes"`
}

// DefaultLexicon returns the built-in Japanese and English tables
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Terminators:   []string{"\n", "!", "?", "！", "？", "。"},
		QuestionMarks: []string{"?", "？", "﹖", "⁇", "⁈", "؟"},
		Connectors: []string{
			"それから", "それと", "そして", "次に", "あとは",
			"and then", "next",
		},
		Fillers: []string{
			"えーと", "えっと", "えーっと", "えー", "ええと", "あのー", "あの", "まあ", "うーん", "うん",
			"じゃあ", "それでは", "ちなみに", "それから", "ところで",
			"um", "uh", "er", "erm", "hmm", "so", "well", "okay", "ok",
		},
		PoliteSuffixes: []string{
			"ください", "下さい", "お願いします", "おねがいします", "教えて", "もらえますか",
			"いただけますか", "くれますか", "please",
		},
		Interrogatives: []string{
			"何", "なに", "なん", "なぜ", "なんで", "どうして", "どう", "どこ", "いつ", "誰", "だれ",
			"どれ", "どの", "どちら", "どっち", "いくら", "いくつ",
			"what", "why", "how", "when", "where", "who", "whom", "whose", "which",
		},
		NonInterrogatives: []string{
			"いつも", "いつでも", "いつか", "いつまでも", "いつの間にか",
			"どうも", "どうぞ", "どうせ", "どうか", "どうしても", "どうやら", "どうにか", "どうでも",
			"どこでも", "どこか", "どこにも",
			"何でも", "なんでも", "何か", "なにか", "何も", "なにも", "何とか", "なんとか",
			"何とも", "なんとも", "なんとなく", "なんか", "なんだか", "なんて",
			"誰でも", "だれでも", "誰か", "だれか", "誰も", "だれも",
			"どれでも", "どれも", "どちらでも", "どちらも", "どっちでも", "どっちも",
			"いくらでも", "いくらか", "いくつか", "いくつも",
		},
		QuestionOpeners: []string{
			"is it", "is this", "is that", "is there", "is he", "is she", "is the", "is your", "is anyone",
			"are you", "are we", "are they", "are there", "are these", "are those", "are the",
			"was it", "was there", "was that", "were you", "were there", "were they",
			"do you", "do we", "do they", "do i", "do these", "do those",
			"does it", "does this", "does that", "does he", "does she", "does anyone", "does the",
			"did you", "did we", "did they", "did i", "did he", "did she", "did it", "did anyone",
			"can you", "can i", "can we", "can someone", "can anyone",
			"could you", "could i", "could we", "could someone",
			"would you", "would it", "would that", "would anyone",
			"will you", "will it", "will there", "will we", "will they", "will the",
			"should i", "should we", "should you",
			"may i", "may we",
			"have you", "have we", "has anyone", "has it",
		},
		QuestionEndings: []string{
			"ですか", "ますか", "でしょうか", "ませんか", "ましたか", "でしたか",
			"のか", "だろうか", "かな", "かしら", "っけ",
		},
		TrailingParticles: []string{
			"ですよね", "ですね", "だよね", "よね", "ねえ", "ね", "よ", "です", "だ",
		},
		TopicMarkers: []string{
			"については", "について", "に関して", "っては", "って", "は",
		},
		MinConnectorSplitRunes: 30,
		MaxPrefaceStrips:       3,
		MaxTopicRunes:          24,
	}
}

// LoadLexicon reads a YAML lexicon. Lists and limits missing from the file
// keep their default values.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes YAML lexicon data over the defaults
func ParseLexicon(data []byte) (*Lexicon, error) {
	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}

	lex := DefaultLexicon()
	mergeList(&lex.Terminators, override.Terminators)
	mergeList(&lex.QuestionMarks, override.QuestionMarks)
	mergeList(&lex.Connectors, override.Connectors)
	mergeList(&lex.Fillers, override.Fillers)
	mergeList(&lex.PoliteSuffixes, override.PoliteSuffixes)
	mergeList(&lex.Interrogatives, override.Interrogatives)
	mergeList(&lex.NonInterrogatives, override.NonInterrogatives)
	mergeList(&lex.QuestionOpeners, override.QuestionOpeners)
	mergeList(&lex.QuestionEndings, override.QuestionEndings)
	mergeList(&lex.TrailingParticles, override.TrailingParticles)
	mergeList(&lex.TopicMarkers, override.TopicMarkers)
	if override.MinConnectorSplitRunes > 0 {
		lex.MinConnectorSplitRunes = override.MinConnectorSplitRunes
	}
	if override.MaxPrefaceStrips > 0 {
		lex.MaxPrefaceStrips = override.MaxPrefaceStrips
	}
	if override.MaxTopicRunes > 0 {
		lex.MaxTopicRunes = override.MaxTopicRunes
	}

	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Validate checks the tables the pipeline cannot run without
func (l *Lexicon) Validate() error {
	if len(l.Terminators) == 0 {
		return fmt.Errorf("lexicon: at least one terminator is required")
	}
	for _, t := range l.Terminators {
		if utf8.RuneCountInString(t) != 1 {
			return fmt.Errorf("lexicon: terminator %q must be a single character", t)
		}
	}
	for _, q := range l.QuestionMarks {
		if utf8.RuneCountInString(q) != 1 {
			return fmt.Errorf("lexicon: question mark %q must be a single character", q)
		}
	}
	if len(l.QuestionMarks) == 0 {
		return fmt.Errorf("lexicon: at least one question mark is required")
	}
	return nil
}

func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// byLengthDesc returns the normalized entries, longest first, so prefix and
// suffix matching prefers the most specific entry
func byLengthDesc(entries []string) []string {
	out := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		n := normalize(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}
