// Command lifeline-score runs the risk classifier over messages given as
// arguments, or one per line on stdin, and prints one JSON object per message.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/PabloGalante/lifeline/internal/adapters/classifier"
	"github.com/PabloGalante/lifeline/internal/domain"
	"github.com/PabloGalante/lifeline/internal/observability"
)

type result struct {
	Message     string  `json:"message"`
	Label       string  `json:"label,omitempty"`
	MessageType string  `json:"message_type,omitempty"`
	Score       float64 `json:"score"`
	Error       string  `json:"error,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		observability.Logger().Error("lifeline-score failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if err := godotenv.Load(envOr("LIFELINE_ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	fset := flag.NewFlagSet("lifeline-score", flag.ContinueOnError)
	tokenizerPath := fset.String("tokenizer", envOr("LIFELINE_TOKENIZER_PATH", "tokenizer.json"), "Keras tokenizer JSON")
	modelPath := fset.String("model", envOr("LIFELINE_MODEL_PATH", "model.json"), "BiLSTM weight export")
	scorerAddr := fset.String("scorer", os.Getenv("LIFELINE_SCORER_ADDR"), "remote gRPC risk scorer, overrides -model")
	debug := fset.Bool("debug", false, "log at debug level")
	if err := fset.Parse(args); err != nil {
		return err
	}

	observability.Init(os.Stderr, *debug)

	c, closeFn, err := classifier.Load(*tokenizerPath, *modelPath, *scorerAddr)
	if err != nil {
		return err
	}
	defer closeFn()

	enc := json.NewEncoder(stdout)
	ctx := context.Background()

	if fset.NArg() > 0 {
		for _, msg := range fset.Args() {
			if err := enc.Encode(score(ctx, c, msg)); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := enc.Encode(score(ctx, c, line)); err != nil {
			return err
		}
	}
	return sc.Err()
}

func score(ctx context.Context, scorer domain.RiskScorer, msg string) result {
	s, err := scorer.Score(ctx, msg)
	if err != nil {
		return result{Message: msg, Error: err.Error()}
	}
	label := domain.ClassifyScore(s)
	return result{
		Message:     msg,
		Label:       string(label),
		MessageType: label.MessageType(),
		Score:       float64(s),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
