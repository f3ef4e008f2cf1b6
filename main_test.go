package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/figtools/figloc/config"
	"github.com/figtools/figloc/confidence"
	"github.com/figtools/figloc/figma"
	"github.com/figtools/figloc/flatmap"
	"github.com/figtools/figloc/keygen"
	"github.com/figtools/figloc/nested"
	"github.com/figtools/figloc/store"
	"github.com/figtools/figloc/translate"
)

// TestPipelineDuplicateLabels drives the extraction output of two identical
// "Save" labels through key generation, translation against a mocked
// provider, and document persistence.
func TestPipelineDuplicateLabels(t *testing.T) {
	nodes := []figma.TextNode{
		{Text: "Save", Path: []string{"Footer"}, NodeID: "1:1"},
		{Text: "Save", Path: []string{"Footer"}, NodeID: "1:2"},
	}

	gen := keygen.New()
	current := flatmap.New()
	for _, n := range nodes {
		current.Set(gen.Derive(n.Path, n.Text), n.Text)
	}

	wantKeys := []string{"footer.save", "footer.save_2"}
	for i, k := range current.Keys() {
		if k != wantKeys[i] {
			t.Fatalf("keys = %v, want %v", current.Keys(), wantKeys)
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": `{"footer.save": "Сохранить", "footer.save_2": "Сохранить"}`}},
			},
		}
		data, _ := json.Marshal(resp)
		fmt.Fprint(w, string(data))
	}))
	defer srv.Close()

	opts := translate.Options{
		Provider: translate.Provider{
			ID:      translate.ProviderGroq,
			BaseURL: srv.URL,
			APIKey:  "test-key",
			Model:   "test-model",
		},
		Language:     "ru",
		LanguageName: "Russian",
		MaxRetries:   1,
		BatchRetries: 1,
	}
	translated, _, err := translate.Batch(context.Background(), current, opts)
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}

	st := store.New(t.TempDir())
	tree, err := st.Load("ru")
	if err != nil {
		t.Fatal(err)
	}
	st.Apply(tree, translated, nil)
	if err := st.Save("ru", tree); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load("ru")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range wantKeys {
		v, ok := nested.Get(got, k)
		if !ok || v != "Сохранить" {
			t.Errorf("persisted %q = %q (present=%v)", k, v, ok)
		}
	}
}

// TestTranslateLanguagePersistsConfidence verifies the per-language
// durability contract: after one language finishes, both its document and
// its confidence scores are on disk, so a later language failing fatally
// loses nothing already earned.
func TestTranslateLanguagePersistsConfidence(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		content := `{"footer.save": "Сохранить"}`
		if requests > 1 {
			content = `{"footer.save": 91}`
		}
		resp := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		}
		data, _ := json.Marshal(resp)
		fmt.Fprint(w, string(data))
	}))
	defer srv.Close()

	root := t.TempDir()
	st := store.New(root + "/locales")
	conf, err := confidence.Load(root)
	if err != nil {
		t.Fatal(err)
	}

	prov := translate.Provider{
		ID:      translate.ProviderGroq,
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}
	proj := &config.Project{Provider: "groq"}

	work := flatmap.New()
	work.Set("footer.save", "Save")

	err = translateLanguage(context.Background(), st, conf, prov, proj, "ru", nested.Tree{}, work, nil, 0)
	if err != nil {
		t.Fatalf("translateLanguage: %v", err)
	}

	// Both files must already be on disk, not just in memory.
	doc, err := st.Load("ru")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := nested.Get(doc, "footer.save"); v != "Сохранить" {
		t.Errorf("persisted document footer.save = %q", v)
	}

	reloaded, err := confidence.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	score, ok := reloaded.Get("ru", "footer.save")
	if !ok || score != 91 {
		t.Errorf("persisted confidence = %d (present=%v), want 91", score, ok)
	}
}

func TestBuildProvider(t *testing.T) {
	proj := &config.Project{Provider: "google", Model: "gemini-2.5-pro"}
	env := &config.Env{GoogleAPIKey: "gk"}

	prov := buildProvider(proj, env)
	if prov.ID != translate.ProviderGoogle {
		t.Errorf("ID = %q", prov.ID)
	}
	if prov.APIKey != "gk" {
		t.Errorf("APIKey = %q", prov.APIKey)
	}
	if prov.Model != "gemini-2.5-pro" {
		t.Errorf("model override lost: %q", prov.Model)
	}
}

func TestBuildProviderCustomOpenAI(t *testing.T) {
	proj := &config.Project{Provider: "custom-openai"}
	env := &config.Env{OpenAIAPIKey: "ok", OpenAIBaseURL: "https://llm.internal/v1"}

	prov := buildProvider(proj, env)
	if prov.BaseURL != "https://llm.internal/v1" {
		t.Errorf("BaseURL = %q", prov.BaseURL)
	}
	if prov.APIKey != "ok" {
		t.Errorf("APIKey = %q", prov.APIKey)
	}
	// The default model survives when no override is configured.
	if prov.Model == "" {
		t.Error("model empty")
	}
}

func TestBuildProviderOllamaHostOverride(t *testing.T) {
	proj := &config.Project{Provider: "ollama"}

	prov := buildProvider(proj, &config.Env{})
	if prov.BaseURL != "http://localhost:11434" {
		t.Errorf("default BaseURL = %q", prov.BaseURL)
	}

	prov = buildProvider(proj, &config.Env{OllamaHost: "http://gpu-box:11434"})
	if prov.BaseURL != "http://gpu-box:11434" {
		t.Errorf("override BaseURL = %q", prov.BaseURL)
	}
}
