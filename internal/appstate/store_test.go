package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"detailgen/internal/domain"
	"detailgen/internal/store/kv"
)

type failingKV struct {
	kv.Store
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func newTestStore(t *testing.T, backend kv.Store) *Store {
	t.Helper()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s := New(Options{
		KV: backend,
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return s
}

func sampleContent(id string) domain.GeneratedContent {
	return domain.GeneratedContent{
		ID:       id,
		Platform: domain.PlatformAmazon,
		Style:    domain.StyleMinimal,
		Language: domain.LanguageEnglish,
		Texts: domain.ListingTexts{
			Title:          "Lamp",
			Description:    "A lamp",
			Specifications: []string{"Material: Metal", "Color: White"},
		},
		Images: []domain.GeneratedImage{
			{ID: "img-1", URL: "data:image/png;base64,AA==", Prompt: "front", Type: domain.ImageTypeMain},
			{ID: "img-2", URL: "data:image/png;base64,AA==", Prompt: "detail", Type: domain.ImageTypeDetail},
		},
	}
}

func TestLoadDefaultsWhenEmpty(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	got := s.Settings()
	if got.MainImageCount != 5 || got.DetailImageCount != 2 {
		t.Fatalf("default counts = %d/%d, want 5/2", got.MainImageCount, got.DetailImageCount)
	}
	if got.UILanguage != domain.LanguageTraditionalChinese {
		t.Fatalf("default UI language = %q", got.UILanguage)
	}
	if _, err := s.Current(); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Current err = %v, want ErrNotFound", err)
	}
}

func TestSettingsWriteThroughAndReload(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	key := "secret"
	theme := domain.ThemeDark
	if _, err := s.UpdateSettings(context.Background(), domain.SettingsPatch{APIKey: &key, Theme: &theme}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	reloaded := newTestStore(t, backend)
	got := reloaded.Settings()
	if got.APIKey != "secret" || got.Theme != domain.ThemeDark {
		t.Fatalf("reloaded settings = %+v", got)
	}
}

func TestProviderChangeClearsBaseURL(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	base := "https://proxy.example.com"
	if _, err := s.UpdateSettings(context.Background(), domain.SettingsPatch{BaseURL: &base}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	provider := domain.ProviderZeabur
	got, err := s.UpdateSettings(context.Background(), domain.SettingsPatch{APIProvider: &provider})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if got.BaseURL != "" || got.APIProvider != domain.ProviderZeabur {
		t.Fatalf("settings = %+v, want zeabur with blank base url", got)
	}
}

func TestResetSettings(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	brand := "Acme"
	if _, err := s.UpdateSettings(context.Background(), domain.SettingsPatch{BrandName: &brand}); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	got, err := s.ResetSettings(context.Background())
	if err != nil {
		t.Fatalf("ResetSettings returned error: %v", err)
	}
	if got.BrandName != "" {
		t.Fatalf("BrandName after reset = %q", got.BrandName)
	}
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	s := newTestStore(t, failingKV{Store: kv.NewMemory()})
	brand := "Acme"
	if _, err := s.UpdateSettings(context.Background(), domain.SettingsPatch{BrandName: &brand}); err == nil {
		t.Fatal("expected error")
	}
	if s.Settings().BrandName != "" {
		t.Fatalf("settings mutated despite failed write")
	}
}

func TestApplyTemplate(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	tpl, err := s.CreateTemplate(ctx, domain.Template{
		Name:      "Shopee cute",
		Platform:  domain.PlatformShopee,
		Style:     domain.StyleCute,
		Model:     domain.ModelNanaBanana,
		Language:  domain.LanguageTraditionalChinese,
		BrandName: "Acme",
		ExtraInfo: "silicone",
	})
	if err != nil {
		t.Fatalf("CreateTemplate returned error: %v", err)
	}

	settings, applied, err := s.ApplyTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("ApplyTemplate returned error: %v", err)
	}
	if applied.UsageCount != 1 {
		t.Fatalf("UsageCount = %d, want 1", applied.UsageCount)
	}
	if settings.DefaultPlatform != domain.PlatformShopee || settings.DefaultStyle != domain.StyleCute ||
		settings.SelectedModel != domain.ModelNanaBanana || settings.BrandName != "Acme" || settings.ExtraInfo != "silicone" {
		t.Fatalf("settings not applied: %+v", settings)
	}
	if settings.MainImageCount != 5 || settings.DetailImageCount != 2 {
		t.Fatalf("counts = %d/%d, want defaults 5/2", settings.MainImageCount, settings.DetailImageCount)
	}

	if _, _, err := s.ApplyTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("second ApplyTemplate returned error: %v", err)
	}
	got, _ := s.Template(tpl.ID)
	if got.UsageCount != 2 {
		t.Fatalf("UsageCount after two applies = %d", got.UsageCount)
	}
}

func TestTemplatesSortedFavoritesFirst(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	a, _ := s.CreateTemplate(ctx, domain.Template{Name: "a"})
	b, _ := s.CreateTemplate(ctx, domain.Template{Name: "b"})
	c, _ := s.CreateTemplate(ctx, domain.Template{Name: "c"})
	if _, err := s.ToggleFavorite(ctx, a.ID); err != nil {
		t.Fatalf("ToggleFavorite returned error: %v", err)
	}

	list := s.Templates()
	want := []string{a.ID, c.ID, b.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("order[%d] = %s, want %s", i, list[i].ID, id)
		}
	}
}

func TestTemplateValidationAndDelete(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	if _, err := s.CreateTemplate(ctx, domain.Template{Name: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name err = %v", err)
	}
	tpl, _ := s.CreateTemplate(ctx, domain.Template{Name: "x", Platform: "bogus"})
	if tpl.Platform != domain.PlatformAmazon {
		t.Fatalf("Platform = %q, want normalized amazon", tpl.Platform)
	}
	name := "renamed"
	updated, err := s.UpdateTemplate(ctx, tpl.ID, domain.TemplatePatch{Name: &name})
	if err != nil || updated.Name != "renamed" {
		t.Fatalf("UpdateTemplate = %+v, %v", updated, err)
	}
	if err := s.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate returned error: %v", err)
	}
	if err := s.DeleteTemplate(ctx, tpl.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestHistoryNewestFirstAndLoad(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	for _, id := range []string{"c1", "c2", "c3"} {
		if err := s.AddHistory(ctx, sampleContent(id)); err != nil {
			t.Fatalf("AddHistory returned error: %v", err)
		}
	}
	history := s.History()
	if len(history) != 3 || history[0].ID != "c3" || history[2].ID != "c1" {
		t.Fatalf("history order = %v", []string{history[0].ID, history[1].ID, history[2].ID})
	}
	cur, _ := s.Current()
	if cur.ID != "c3" {
		t.Fatalf("current = %s, want c3", cur.ID)
	}

	loaded, err := s.LoadHistory(ctx, "c1")
	if err != nil || loaded.ID != "c1" {
		t.Fatalf("LoadHistory = %s, %v", loaded.ID, err)
	}
	if err := s.DeleteHistory(ctx, "c2"); err != nil {
		t.Fatalf("DeleteHistory returned error: %v", err)
	}
	if _, err := s.HistoryItem("c2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("HistoryItem deleted err = %v", err)
	}
}

func TestHistoryCapped(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	for i := 0; i < MaxHistory+5; i++ {
		if err := s.AddHistory(ctx, sampleContent(fmt.Sprintf("c%d", i))); err != nil {
			t.Fatalf("AddHistory returned error: %v", err)
		}
	}
	if got := len(s.History()); got != MaxHistory {
		t.Fatalf("history length = %d, want %d", got, MaxHistory)
	}
	keys, err := s.kv.Keys(ctx, historyPrefix)
	if err != nil {
		t.Fatalf("Keys returned error: %v", err)
	}
	if len(keys) != MaxHistory {
		t.Fatalf("persisted entries = %d, want %d", len(keys), MaxHistory)
	}
	if _, err := s.kv.Get(ctx, historyKey("c0")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("evicted entry err = %v, want ErrNotFound", err)
	}
}

type recordingKV struct {
	kv.Store
	writes map[string]int
}

func (r *recordingKV) Set(ctx context.Context, key string, value []byte) error {
	r.writes[key] += len(value)
	return r.Store.Set(ctx, key, value)
}

func TestEditWritesOnlyTouchedRecords(t *testing.T) {
	backend := &recordingKV{Store: kv.NewMemory(), writes: map[string]int{}}
	s := newTestStore(t, backend)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := s.AddHistory(ctx, sampleContent(fmt.Sprintf("c%d", i))); err != nil {
			t.Fatalf("AddHistory returned error: %v", err)
		}
	}
	clear(backend.writes)

	if _, err := s.SetSpec(ctx, 0, "Material: Wood"); err != nil {
		t.Fatalf("SetSpec returned error: %v", err)
	}
	if len(backend.writes) != 2 || backend.writes[keyCurrent] == 0 || backend.writes[historyKey("c49")] == 0 {
		t.Fatalf("writes = %v, want current and history/c49 only", backend.writes)
	}
}

func TestHistoryReloadDropsOrphans(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	ctx := context.Background()
	for _, id := range []string{"c1", "c2"} {
		if err := s.AddHistory(ctx, sampleContent(id)); err != nil {
			t.Fatalf("AddHistory returned error: %v", err)
		}
	}
	if err := backend.Set(ctx, historyKey("stray"), []byte(`{"id":"stray"}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	reloaded := newTestStore(t, backend)
	history := reloaded.History()
	if len(history) != 2 || history[0].ID != "c2" || history[1].ID != "c1" {
		t.Fatalf("reloaded history = %+v", history)
	}
	if _, err := backend.Get(ctx, historyKey("stray")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("orphan err = %v, want ErrNotFound", err)
	}
	if cur, err := reloaded.Current(); err != nil || cur.ID != "c2" {
		t.Fatalf("reloaded current = %s, %v", cur.ID, err)
	}
}

type failingHistoryKV struct {
	kv.Store
}

func (f failingHistoryKV) Set(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, historyPrefix) {
		return errors.New("value too large")
	}
	return f.Store.Set(ctx, key, value)
}

func TestAddHistoryWritesCurrentFirst(t *testing.T) {
	s := newTestStore(t, failingHistoryKV{Store: kv.NewMemory()})
	if err := s.AddHistory(context.Background(), sampleContent("c1")); err == nil {
		t.Fatal("expected error")
	}
	if cur, err := s.Current(); err != nil || cur.ID != "c1" {
		t.Fatalf("current = %s, %v", cur.ID, err)
	}
	if len(s.History()) != 0 {
		t.Fatalf("history = %d, want 0", len(s.History()))
	}
}

func TestEditCurrentMirrorsHistory(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	ctx := context.Background()
	if err := s.AddHistory(ctx, sampleContent("c1")); err != nil {
		t.Fatalf("AddHistory returned error: %v", err)
	}

	title := "Desk Lamp Pro"
	if _, err := s.UpdateTexts(ctx, TextsPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateTexts returned error: %v", err)
	}
	if _, err := s.SetSpec(ctx, 1, "Color: Black"); err != nil {
		t.Fatalf("SetSpec returned error: %v", err)
	}
	if _, err := s.SetSpec(ctx, 5, "nope"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("SetSpec out of range err = %v", err)
	}
	if _, err := s.ReplaceImage(ctx, "img-2", "data:image/png;base64,BB==", "new prompt"); err != nil {
		t.Fatalf("ReplaceImage returned error: %v", err)
	}
	if _, err := s.ReplaceImage(ctx, "missing", "x", "y"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ReplaceImage missing err = %v", err)
	}

	h, _ := s.HistoryItem("c1")
	if h.Texts.Title != title || h.Texts.Specifications[1] != "Color: Black" || h.Images[1].Prompt != "new prompt" {
		t.Fatalf("history not mirrored: %+v", h)
	}

	raw, err := backend.Get(ctx, keyCurrent)
	if err != nil {
		t.Fatalf("current not persisted: %v", err)
	}
	var persisted domain.GeneratedContent
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode persisted current: %v", err)
	}
	if persisted.Images[1].URL != "data:image/png;base64,BB==" {
		t.Fatalf("persisted image url = %q", persisted.Images[1].URL)
	}
}

func TestEditWithoutCurrent(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	title := "x"
	if _, err := s.UpdateTexts(context.Background(), TextsPatch{Title: &title}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateTexts err = %v, want ErrNotFound", err)
	}
}
