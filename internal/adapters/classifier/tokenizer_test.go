package classifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/lifeline/internal/adapters/classifier"
)

// kerasTokenizerJSON mirrors what Tokenizer.to_json() writes: word_index is a
// JSON document encoded as a string. filters is left out so the Keras default applies.
const kerasTokenizerJSON = `{
  "class_name": "Tokenizer",
  "config": {
    "num_words": null,
    "lower": true,
    "split": " ",
    "char_level": false,
    "oov_token": "<OOV>",
    "document_count": 2,
    "word_index": "{\"<OOV>\": 1, \"i\": 2, \"want\": 3, \"to\": 4, \"end\": 5, \"it\": 6, \"all\": 7, \"weather\": 8, \"today\": 9}"
  }
}`

func TestParseTokenizerKerasFormat(t *testing.T) {
	tok, err := classifier.ParseTokenizer([]byte(kerasTokenizerJSON))
	require.NoError(t, err)

	assert.Equal(t, 9, tok.VocabularySize())
	assert.Equal(t, []int32{2, 3, 4, 5, 6, 7}, tok.TextsToSequence("I want to end it all"))
}

func TestTextsToSequenceFiltersAndOOV(t *testing.T) {
	tok, err := classifier.ParseTokenizer([]byte(kerasTokenizerJSON))
	require.NoError(t, err)

	// "what's" keeps its apostrophe (not a filter) and is unknown, "?" is filtered.
	assert.Equal(t, []int32{1, 1, 8, 9}, tok.TextsToSequence("What's the weather today?"))
	assert.Equal(t, []int32{6, 7}, tok.TextsToSequence("  IT,all!!  "))
	assert.Empty(t, tok.TextsToSequence("?!..."))
}

func TestTextsToSequenceDropsUnknownWithoutOOV(t *testing.T) {
	tok, err := classifier.ParseTokenizer([]byte(`{"config": {"word_index": {"hello": 1, "world": 2}}}`))
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2}, tok.TextsToSequence("hello big world"))
}

func TestTextsToSequenceNumWordsLimit(t *testing.T) {
	doc := `{"config": {"num_words": 4, "oov_token": "<OOV>",
		"word_index": {"<OOV>": 1, "a": 2, "b": 3, "c": 4, "d": 5}}}`
	tok, err := classifier.ParseTokenizer([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []int32{2, 3, 1, 1}, tok.TextsToSequence("a b c d"))

	noOOV, err := classifier.ParseTokenizer([]byte(`{"config": {"num_words": 3, "word_index": {"a": 1, "b": 2, "c": 3}}}`))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, noOOV.TextsToSequence("a b c"))
}

func TestTextsToSequenceCustomOptions(t *testing.T) {
	doc := `{"config": {"lower": false, "filters": "", "split": "|",
		"word_index": {"Hi": 1, "there.": 2}}}`
	tok, err := classifier.ParseTokenizer([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2}, tok.TextsToSequence("Hi||there."))
	assert.Empty(t, tok.TextsToSequence("hi|there"))
}

func TestTextsToSequenceCharLevel(t *testing.T) {
	tok, err := classifier.ParseTokenizer([]byte(`{"config": {"char_level": true, "word_index": {"a": 1, "b": 2, "!": 3}}}`))
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2, 3}, tok.TextsToSequence("AB!"))
}

func TestParseTokenizerErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":        `{"config": `,
		"missing config":      `{"class_name": "Tokenizer"}`,
		"missing word index":  `{"config": {}}`,
		"broken word index":   `{"config": {"word_index": "{not json"}}`,
		"empty word index":    `{"config": {"word_index": {}}}`,
		"non numeric id":      `{"config": {"word_index": {"a": "one"}}}`,
		"non positive id":     `{"config": {"word_index": {"a": 0}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := classifier.ParseTokenizer([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTokenizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.json")
	require.NoError(t, os.WriteFile(path, []byte(kerasTokenizerJSON), 0o600))

	tok, err := classifier.LoadTokenizer(path)
	require.NoError(t, err)
	assert.Equal(t, []int32{8}, tok.TextsToSequence("weather"))

	_, err = classifier.LoadTokenizer(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPadPost(t *testing.T) {
	short := []int32{4, 5, 6}
	padded := classifier.PadPost(short, 5)
	assert.Equal(t, []int32{4, 5, 6, 0, 0}, padded)

	long := []int32{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, []int32{1, 2, 3, 4}, classifier.PadPost(long, 4))

	assert.Equal(t, []int32{0, 0, 0}, classifier.PadPost(nil, 3))

	padded[0] = 99
	assert.Equal(t, int32(4), short[0], "PadPost must not alias its input")
}
