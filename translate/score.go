package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/figtools/figloc/flatmap"
)

// Score runs the confidence-scoring pass: for every key of source it asks
// the provider to rate the corresponding translated value from 0 to 100.
//
// Scoring is deliberately decoupled from translation: it runs over its own
// (larger) batches and NEVER fails the run. Transport and parse errors
// degrade to nil scores for the affected batch; callers persist only the
// non-nil ones. The translated map is read, never modified.
func Score(ctx context.Context, source, translated *flatmap.FlatMap, opts Options) map[string]*int {
	scores := make(map[string]*int, source.Len())
	if source.Len() == 0 {
		return scores
	}

	systemPrompt := opts.resolvedScorePrompt()
	batches := splitKeys(source.Keys(), opts.effectiveScoreBatchSize())

	for i, keys := range batches {
		select {
		case <-ctx.Done():
			// Cancellation still yields nil scores, not an error.
			for _, k := range keys {
				scores[k] = nil
			}
			continue
		default:
		}

		if opts.Verbose {
			opts.log("  Scoring batch %d/%d (%d entries)", i+1, len(batches), len(keys))
		}

		batchScores, err := scoreBatch(ctx, keys, source, translated, systemPrompt, opts)
		if err != nil {
			opts.logError("Scoring batch %d/%d failed, recording no scores: %v", i+1, len(batches), err)
			for _, k := range keys {
				scores[k] = nil
			}
			continue
		}

		for _, k := range keys {
			if v, ok := batchScores[k]; ok {
				s := clampScore(v)
				scores[k] = &s
			} else {
				scores[k] = nil
			}
		}
	}

	return scores
}

// scoreBatch issues one scoring request and decodes the key→integer object.
func scoreBatch(ctx context.Context, keys []string, source, translated *flatmap.FlatMap, systemPrompt string, opts Options) (map[string]float64, error) {
	userPrompt, err := buildScorePrompt(keys, source, translated, opts.targetLangName())
	if err != nil {
		return nil, err
	}

	text, err := callProvider(ctx, opts.Provider, systemPrompt, userPrompt,
		opts.effectiveMaxRetries(), opts.effectiveTimeout(), opts.Verbose)
	if err != nil {
		return nil, err
	}

	return parseScoreResponse(text)
}

// scorePair is one entry of the scoring request payload.
type scorePair struct {
	En         string `json:"en"`
	Translated string `json:"translated"`
}

func buildScorePrompt(keys []string, source, translated *flatmap.FlatMap, langName string) (string, error) {
	pairs := make(map[string]scorePair, len(keys))
	for _, k := range keys {
		en, _ := source.Get(k)
		tr, _ := translated.Get(k)
		pairs[k] = scorePair{En: en, Translated: tr}
	}

	payload, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("encoding scoring batch: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rate these %s translations:\n\n", langName)
	b.Write(payload)
	fmt.Fprintf(&b, "\n\nReturn a JSON object mapping the same %d keys to integer scores 0-100.", len(keys))
	return b.String(), nil
}

// parseScoreResponse decodes the key→number object from a model response,
// tolerating markdown fences, surrounding prose, and fractional scores.
func parseScoreResponse(content string) (map[string]float64, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var out map[string]float64
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse scoring response as JSON object: %w\nResponse: %s", err, truncate(content, 300))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("got 0 scores")
	}
	return out, nil
}

func clampScore(v float64) int {
	s := int(math.Round(v))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
