package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pantry-service/internal/core/ai/service"
	"pantry-service/internal/core/reconcile"
	"pantry-service/internal/infrastructure/config"
)

type stubGenerator struct {
	content string
	err     error
	prompts []string
}

func (g *stubGenerator) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

func testExtractor(gen *stubGenerator) *LLMExtractor {
	cfg := &config.Config{}
	return NewLLMExtractor(service.NewServiceWithGenerator(cfg, gen, nil))
}

func testSummaries() []reconcile.CatalogSummary {
	return []reconcile.CatalogSummary{
		{ItemCode: "dairy.milk", Names: []string{"Milk", "leche"}},
		{
			ItemCode: "pantry.rice",
			Names:    []string{"Rice"},
			Varieties: []reconcile.CatalogSummaryVariety{
				{VarietyCode: "jasmine", Names: []string{"jasmine rice"}},
			},
		},
	}
}

func TestExtractParsesCleanJSON(t *testing.T) {
	gen := &stubGenerator{
		content: `{"items":[{"item_code":"dairy.milk","quantity":2,"operation":"add"}],"warnings":["skipped: mumbling"]}`,
	}
	result, err := testExtractor(gen).Extract(context.Background(), "bought two milks", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ItemCode != "dairy.milk" || result.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", result.Items)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestExtractStripsMarkdownFence(t *testing.T) {
	gen := &stubGenerator{
		content: "Here you go:\n```json\n{\"items\":[{\"item_code\":\"pantry.rice\",\"quantity\":1}]}\n```",
	}
	result, err := testExtractor(gen).Extract(context.Background(), "one bag of rice", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ItemCode != "pantry.rice" {
		t.Errorf("items = %+v", result.Items)
	}
}

func TestExtractRetriesUnquotedKeys(t *testing.T) {
	gen := &stubGenerator{
		content: `{items:[{item_code:"dairy.milk",quantity:3}]}`,
	}
	result, err := testExtractor(gen).Extract(context.Background(), "three milks", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Quantity != 3 {
		t.Errorf("items = %+v", result.Items)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	gen := &stubGenerator{content: "sorry, I could not understand the transcript"}
	_, err := testExtractor(gen).Extract(context.Background(), "???", testSummaries())
	if err == nil {
		t.Fatal("unparseable response must fail the call")
	}
}

func TestExtractPropagatesBackendError(t *testing.T) {
	backendErr := errors.New("upstream 502")
	gen := &stubGenerator{err: backendErr}
	_, err := testExtractor(gen).Extract(context.Background(), "bought milk", testSummaries())
	if !errors.Is(err, backendErr) {
		t.Errorf("err = %v, want backend error", err)
	}
}

func TestExtractMissingItemsBecomesEmptySlice(t *testing.T) {
	gen := &stubGenerator{content: `{"warnings":["nothing actionable"]}`}
	result, err := testExtractor(gen).Extract(context.Background(), "nice weather today", testSummaries())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("items = %#v, want empty non-nil slice", result.Items)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("bought two milks", testSummaries())
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{"bought two milks", "dairy.milk", "pantry.rice", "jasmine", `"decrement"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
