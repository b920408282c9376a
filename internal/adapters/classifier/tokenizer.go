package classifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// defaultFilters is the Keras Tokenizer default filter set.
const defaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Tokenizer maps text to token ids using a frozen Keras vocabulary.
// It is read-only after construction.
type Tokenizer struct {
	wordIndex map[string]int32
	numWords  int // 0 means no limit
	oovIndex  int32
	hasOOV    bool
	lower     bool
	charLevel bool
	split     string
	replacer  *strings.Replacer
}

// LoadTokenizer reads a tokenizer definition produced by Keras' Tokenizer.to_json().
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer %s: %w", path, err)
	}
	return ParseTokenizer(data)
}

// ParseTokenizer parses the Keras tokenizer JSON document.
// word_index may be stored as a JSON-encoded string (what Keras writes) or as an object.
func ParseTokenizer(data []byte) (*Tokenizer, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("tokenizer: invalid JSON")
	}

	cfg := gjson.GetBytes(data, "config")
	if !cfg.Exists() {
		return nil, fmt.Errorf("tokenizer: missing config section")
	}

	wordIndex := cfg.Get("word_index")
	if wordIndex.Type == gjson.String {
		raw := wordIndex.String()
		if !gjson.Valid(raw) {
			return nil, fmt.Errorf("tokenizer: word_index is not valid JSON")
		}
		wordIndex = gjson.Parse(raw)
	}
	if !wordIndex.IsObject() {
		return nil, fmt.Errorf("tokenizer: missing word_index")
	}

	t := &Tokenizer{
		wordIndex: make(map[string]int32),
		lower:     true,
		split:     " ",
	}

	var bad error
	wordIndex.ForEach(func(word, id gjson.Result) bool {
		if id.Type != gjson.Number || id.Int() <= 0 {
			bad = fmt.Errorf("tokenizer: invalid id for %q", word.String())
			return false
		}
		t.wordIndex[word.String()] = int32(id.Int())
		return true
	})
	if bad != nil {
		return nil, bad
	}
	if len(t.wordIndex) == 0 {
		return nil, fmt.Errorf("tokenizer: empty word_index")
	}

	if v := cfg.Get("num_words"); v.Type == gjson.Number {
		t.numWords = int(v.Int())
	}
	if v := cfg.Get("lower"); v.Exists() {
		t.lower = v.Bool()
	}
	if v := cfg.Get("char_level"); v.Exists() {
		t.charLevel = v.Bool()
	}
	if v := cfg.Get("split"); v.Type == gjson.String && v.String() != "" {
		t.split = v.String()
	}

	filters := defaultFilters
	if v := cfg.Get("filters"); v.Type == gjson.String {
		filters = v.String()
	}
	pairs := make([]string, 0, 2*len(filters))
	for _, r := range filters {
		pairs = append(pairs, string(r), t.split)
	}
	t.replacer = strings.NewReplacer(pairs...)

	if v := cfg.Get("oov_token"); v.Type == gjson.String {
		if id, ok := t.wordIndex[v.String()]; ok {
			t.oovIndex = id
			t.hasOOV = true
		}
	}

	return t, nil
}

// VocabularySize is the number of distinct words in the vocabulary.
func (t *Tokenizer) VocabularySize() int {
	return len(t.wordIndex)
}

// TextsToSequence converts a single text to its token ids.
// Unknown words map to the OOV id when the vocabulary has one, and are dropped otherwise.
func (t *Tokenizer) TextsToSequence(text string) []int32 {
	words := t.words(text)

	seq := make([]int32, 0, len(words))
	for _, w := range words {
		id, ok := t.wordIndex[w]
		switch {
		case ok && t.numWords > 0 && int(id) >= t.numWords:
			if t.hasOOV {
				seq = append(seq, t.oovIndex)
			}
		case ok:
			seq = append(seq, id)
		case t.hasOOV:
			seq = append(seq, t.oovIndex)
		}
	}
	return seq
}

func (t *Tokenizer) words(text string) []string {
	if t.lower {
		text = strings.ToLower(text)
	}

	if t.charLevel {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	text = t.replacer.Replace(text)

	parts := strings.Split(text, t.split)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
