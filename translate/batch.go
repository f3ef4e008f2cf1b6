package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/figtools/figloc/flatmap"
)

// identicalThreshold is the fraction of byte-identical values above which a
// batch response is rejected as insufficiently translated.
const identicalThreshold = 0.8

// markdownCodeBlock matches a fenced code block wrapping the whole response.
var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// placeholderPattern matches the template placeholder styles the prompt
// requires the model to preserve: {var}, {{var}}, %s/%d, :var.
var placeholderPattern = regexp.MustCompile(`\{\{[^}]+\}\}|\{[^}]+\}|%[sd]|:[a-zA-Z_][a-zA-Z0-9_]*`)

// Report summarizes one Batch run.
type Report struct {
	// Batches is the number of requests issued (excluding retries).
	Batches int
	// Translated counts entries that came back translated.
	Translated int
	// FallbackEntries counts entries that degraded to their English source
	// after the batch retry budget was exhausted.
	FallbackEntries int
	// FallbackBatches counts batches that degraded entirely.
	FallbackBatches int
	// PlaceholderWarnings counts entries whose translation altered a
	// template placeholder (kept anyway, but reported).
	PlaceholderWarnings int
}

// Batch translates every entry of fm into the target language configured in
// opts. The result has exactly the same keys as fm, in the same order.
//
// Entries are sent in bounded batches, in order, one request at a time. A
// batch whose response cannot be parsed — or whose values are mostly still
// English — is retried up to opts.BatchRetries times and then degraded to
// the original English values, so translation never blocks the rest of the
// pipeline. Only credential rejection, persistent rate limiting, and context
// cancellation abort the run.
func Batch(ctx context.Context, fm *flatmap.FlatMap, opts Options) (*flatmap.FlatMap, *Report, error) {
	result := flatmap.New()
	report := &Report{}
	if fm.Len() == 0 {
		return result, report, nil
	}

	systemPrompt := opts.resolvedPrompt()
	batches := splitKeys(fm.Keys(), opts.effectiveBatchSize())
	report.Batches = len(batches)

	done := 0
	for i, keys := range batches {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		batch := fm.Slice(keys)
		if opts.Verbose {
			opts.log("  Batch %d/%d (%d entries)", i+1, len(batches), batch.Len())
		}

		translated, err := translateBatch(ctx, batch, systemPrompt, opts)
		if err != nil {
			if IsFatal(err) {
				return nil, nil, fmt.Errorf("translating batch %d/%d: %w", i+1, len(batches), err)
			}
			// Retry budget exhausted: keep the English source for this
			// batch and move on.
			opts.logError("Batch %d/%d failed after retries, keeping English: %v", i+1, len(batches), err)
			translated = batch.Clone()
			report.FallbackBatches++
			report.FallbackEntries += batch.Len()
		}

		batch.Range(func(key, source string) bool {
			value, ok := translated.Get(key)
			if !ok || value == "" {
				// A single dropped key degrades alone, not the batch.
				value = source
				report.FallbackEntries++
			} else if value != source {
				report.Translated++
			}
			if !placeholdersPreserved(source, value) {
				report.PlaceholderWarnings++
				opts.logError("Placeholder mismatch in %q: %q -> %q", key, source, value)
			}
			result.Set(key, value)
			return true
		})

		done += batch.Len()
		if opts.OnProgress != nil {
			opts.OnProgress(opts.Language, done, fm.Len())
		}

		if i < len(batches)-1 && opts.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(opts.RequestDelay):
			}
		}
	}

	return result, report, nil
}

// translateBatch issues one batch request with bounded retries on malformed
// or insufficiently translated responses. Fatal provider errors pass
// through untouched.
func translateBatch(ctx context.Context, batch *flatmap.FlatMap, systemPrompt string, opts Options) (*flatmap.FlatMap, error) {
	userPrompt, err := buildBatchPrompt(batch, opts.targetLangName())
	if err != nil {
		return nil, err
	}

	retries := opts.effectiveBatchRetries()
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 && opts.Verbose {
			opts.log("  Retrying batch (attempt %d/%d): %v", attempt+1, retries+1, lastErr)
		}

		text, err := callProvider(ctx, opts.Provider, systemPrompt, userPrompt,
			opts.effectiveMaxRetries(), opts.effectiveTimeout(), opts.Verbose)
		if err != nil {
			if IsFatal(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		parsed, err := parseObjectResponse(text)
		if err != nil {
			lastErr = err
			continue
		}

		if frac := identicalFraction(batch, parsed); frac > identicalThreshold {
			lastErr = fmt.Errorf("response left %.0f%% of entries untranslated", frac*100)
			continue
		}

		return parsed, nil
	}

	return nil, lastErr
}

// buildBatchPrompt renders the batch as a JSON object inside the user
// message, so keys survive the round trip verbatim.
func buildBatchPrompt(batch *flatmap.FlatMap, langName string) (string, error) {
	payload, err := batch.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encoding batch: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate the values of this JSON object to %s:\n\n", langName)
	b.Write(payload)
	fmt.Fprintf(&b, "\n\nReturn a JSON object with exactly the same %d keys and translated values.", batch.Len())
	return b.String(), nil
}

// parseObjectResponse extracts and decodes the key→string object from a
// model response, tolerating markdown fences and surrounding prose.
func parseObjectResponse(content string) (*flatmap.FlatMap, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	out := flatmap.New()
	if err := out.UnmarshalJSON([]byte(content)); err != nil {
		return nil, fmt.Errorf("failed to parse translation response as JSON object: %w\nResponse: %s", err, truncate(content, 300))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("got 0 translations")
	}
	return out, nil
}

// identicalFraction returns the share of batch entries whose response value
// is byte-identical to the English source. Missing keys count as identical —
// they will fall back to English anyway.
func identicalFraction(batch, parsed *flatmap.FlatMap) float64 {
	if batch.Len() == 0 {
		return 0
	}
	identical := 0
	batch.Range(func(key, source string) bool {
		v, ok := parsed.Get(key)
		if !ok || v == source {
			identical++
		}
		return true
	})
	return float64(identical) / float64(batch.Len())
}

// placeholdersPreserved reports whether the translation kept every template
// placeholder of the source.
func placeholdersPreserved(source, translated string) bool {
	want := placeholderPattern.FindAllString(source, -1)
	if len(want) == 0 {
		return true
	}
	for _, p := range want {
		if !strings.Contains(translated, p) {
			return false
		}
	}
	return true
}

// splitKeys divides keys into chunks of the given size, preserving order.
func splitKeys(keys []string, size int) [][]string {
	if size <= 0 || size >= len(keys) {
		return [][]string{keys}
	}
	var chunks [][]string
	for i := 0; i < len(keys); i += size {
		end := i + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[i:end])
	}
	return chunks
}
