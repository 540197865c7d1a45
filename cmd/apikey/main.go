package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"detailgen/internal/appstate"
	"detailgen/internal/domain"
	"detailgen/internal/infra"
	"detailgen/internal/store/kv"
)

func main() {
	var (
		keyFlag      string
		providerFlag string
		baseURLFlag  string
	)
	flag.StringVar(&keyFlag, "key", "", "API key for the selected provider (falls back to environment)")
	flag.StringVar(&providerFlag, "provider", string(domain.ProviderGoogle), "provider to configure (google, zeabur or openai)")
	flag.StringVar(&baseURLFlag, "base-url", "", "optional custom endpoint")
	flag.Parse()

	_ = godotenv.Load()

	provider := domain.APIProvider(strings.TrimSpace(strings.ToLower(providerFlag)))
	switch provider {
	case domain.ProviderGoogle, domain.ProviderZeabur, domain.ProviderOpenAI:
	case "":
		provider = domain.ProviderGoogle
	default:
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		switch provider {
		case domain.ProviderOpenAI:
			key = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		default:
			key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		}
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or environment\n", provider)
		os.Exit(1)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.StoreDriver == infra.StoreMemory {
		fmt.Fprintln(os.Stderr, "STORE_DRIVER=memory does not persist; use file, postgres or redis")
		os.Exit(1)
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "apikey").Str("provider", string(provider)).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	backend, closeBackend, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer closeBackend()

	state := appstate.New(appstate.Options{KV: backend, Logger: &logger})
	if err := state.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "load state: %v\n", err)
		os.Exit(1)
	}

	patch := domain.SettingsPatch{APIProvider: &provider, APIKey: &key}
	if base := strings.TrimSpace(baseURLFlag); base != "" {
		patch.BaseURL = &base
	}
	settings, err := state.UpdateSettings(ctx, patch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}

	logger.Info().Str("key", settings.Redacted().APIKey).Msg("api key stored")
}
