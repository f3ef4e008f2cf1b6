package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// System prompts
// ---------------------------------------------------------------------------

// TranslateSystemPrompt is the default prompt for translating UI strings
// extracted from a design file. {{targetLang}} is substituted with the
// target language's English name.
const TranslateSystemPrompt = `You are a professional translator specializing in software and product localization. You are translating UI strings extracted from a product design file.

CONTEXT AWARENESS:
- The strings are short UI labels, buttons, headings, and helper texts
- Keys are dotted identifiers derived from the design structure; they hint at where the string appears (e.g. "checkout.footer.save")
- The audience is application users
- Tone: professional yet approachable, clear and concise
- Use IT/software terminology that is standard in {{targetLang}} tech community

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use idiomatic expressions natural to {{targetLang}}, not literal translations
- Adapt sentence structure to match {{targetLang}} conventions
- Keep UI labels as short as the original where possible
- Maintain the original tone and intent, but express it naturally in {{targetLang}}

TECHNICAL REQUIREMENTS:
- Translate EVERY value; never leave a value in English unless it is a brand name or proper noun.
- Preserve template placeholders exactly as-is: {var}, {{var}}, %s, %d, :var.
- Preserve leading/trailing whitespace, newlines, and punctuation patterns.
- Keep brand names and proper nouns unchanged.
- Return ONLY a JSON object mapping the SAME keys to translated strings.
- Do not add, drop, or rename keys. No explanations, no markdown code blocks.`

// ScoreSystemPrompt is the default prompt for the confidence-scoring pass.
const ScoreSystemPrompt = `You are a translation quality reviewer. For each entry you receive the English source string and its {{targetLang}} translation.

Rate each translation with an integer score from 0 to 100:
- 90-100: fluent, accurate, natural for a UI
- 70-89: understandable, minor wording or register issues
- 40-69: awkward or partially wrong
- 0-39: wrong meaning, untranslated, or broken placeholders

Penalize heavily any translation that drops or alters template placeholders ({var}, {{var}}, %s, %d, :var), or that is left in English.

Return ONLY a JSON object mapping the SAME keys to integer scores. No explanations, no markdown code blocks.`

// ---------------------------------------------------------------------------
// Custom prompt overrides (prompts.json)
// ---------------------------------------------------------------------------

// PromptsConfig holds system prompts loaded from a prompts.json file. Known
// keys: "translate", "score".
type PromptsConfig struct {
	Prompts map[string]string `json:"prompts"`
}

var globalPrompts *PromptsConfig

// LoadPromptsFromFile loads custom system prompts from a JSON file. A
// missing file is not an error — the embedded defaults apply.
func LoadPromptsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read prompts file: %w", err)
	}

	var config PromptsConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse prompts file: %w", err)
	}

	globalPrompts = &config
	return nil
}

// getPrompt returns the prompt for a type ("translate" or "score"),
// preferring a loaded override.
func getPrompt(promptType string) string {
	if globalPrompts != nil {
		if prompt, ok := globalPrompts.Prompts[promptType]; ok && prompt != "" {
			return prompt
		}
	}

	switch promptType {
	case "score":
		return ScoreSystemPrompt
	default:
		return TranslateSystemPrompt
	}
}

// resolvedPrompt returns the translation system prompt with {{targetLang}}
// replaced by the target language's English name.
func (o *Options) resolvedPrompt() string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = getPrompt("translate")
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", o.targetLangName())
}

// resolvedScorePrompt returns the scoring system prompt with {{targetLang}}
// replaced.
func (o *Options) resolvedScorePrompt() string {
	prompt := o.ScorePrompt
	if prompt == "" {
		prompt = getPrompt("score")
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", o.targetLangName())
}

func (o *Options) targetLangName() string {
	if o.LanguageName != "" {
		return o.LanguageName
	}
	return o.Language
}
