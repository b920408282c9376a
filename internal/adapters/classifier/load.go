package classifier

import (
	"github.com/PabloGalante/lifeline/internal/observability"
)

// Load builds a Classifier from a tokenizer file and either a remote scorer
// address or a local weight export. scorerAddr wins when both are set. The
// returned close func releases the remote connection and is never nil.
func Load(tokenizerPath, modelPath, scorerAddr string) (*Classifier, func() error, error) {
	noop := func() error { return nil }

	tok, err := LoadTokenizer(tokenizerPath)
	if err != nil {
		return nil, noop, err
	}

	if scorerAddr != "" {
		remote, err := DialGRPCModel(scorerAddr)
		if err != nil {
			return nil, noop, err
		}
		observability.Logger().Info("using remote risk model", "addr", scorerAddr, "vocabulary", tok.VocabularySize())
		return New(tok, remote), remote.Close, nil
	}

	model, err := LoadBiLSTM(modelPath)
	if err != nil {
		return nil, noop, err
	}

	observability.Logger().Info("loaded local risk model", "path", modelPath, "vocabulary", model.VocabularySize())
	return New(tok, model), noop, nil
}
