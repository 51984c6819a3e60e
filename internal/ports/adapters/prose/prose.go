// Package prose tags text with parts of speech using the prose/v2
// library, mapping its Penn Treebank tags to the coarse tag set the
// scorer counts.
package prose

import (
	"errors"
	"fmt"
	"strings"

	nlp "github.com/jdkato/prose/v2"
	"github.com/rs/zerolog"

	"github.com/clipkit/clipkit/internal/logging"
	"github.com/clipkit/clipkit/internal/types"
)

type Adapter struct {
	log zerolog.Logger
}

// New builds the tagger and probes it once with a known sentence. A
// tagger that cannot produce tokens returns an error here so the run
// can fall back to length scoring up front, never mid-batch.
func New() (*Adapter, error) {
	a := &Adapter{log: logging.WithComponent("tagger")}
	toks, err := a.Tag("The quick brown fox jumps over the lazy dog.")
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, errors.New("prose: tagger produced no tokens")
	}
	return a, nil
}

func (a *Adapter) Tag(text string) ([]types.Token, error) {
	doc, err := nlp.NewDocument(text,
		nlp.WithExtraction(false),
		nlp.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose: %w", err)
	}
	toks := doc.Tokens()
	out := make([]types.Token, 0, len(toks))
	for _, t := range toks {
		out = append(out, types.Token{Text: t.Text, POS: mapTag(t.Tag)})
	}
	return out, nil
}

// mapTag folds Penn Treebank tags into coarse classes. Only NOUN,
// PROPN and VERB matter to the scorer; the rest are mapped for log
// readability.
func mapTag(tag string) string {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return "PROPN"
	case strings.HasPrefix(tag, "NN"):
		return "NOUN"
	case strings.HasPrefix(tag, "VB"):
		return "VERB"
	case strings.HasPrefix(tag, "JJ"):
		return "ADJ"
	case strings.HasPrefix(tag, "RB"):
		return "ADV"
	case strings.HasPrefix(tag, "PRP"), tag == "WP", tag == "WP$":
		return "PRON"
	case tag == "DT", tag == "WDT", tag == "PDT":
		return "DET"
	case tag == "IN":
		return "ADP"
	case tag == "CC":
		return "CCONJ"
	case tag == "CD":
		return "NUM"
	case tag == "MD":
		return "AUX"
	case tag == "UH":
		return "INTJ"
	default:
		return "X"
	}
}
