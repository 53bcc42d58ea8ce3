package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/recoforge/internal/config"
	"github.com/iishyfishyy/recoforge/internal/embeddings"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

func runConfigure(cmd *cobra.Command, args []string) error {
	ui.ShowSection("recoforge configuration")

	if err := config.LoadEnv(); err != nil {
		ui.ShowWarning(fmt.Sprintf("Could not load .env: %v", err))
	}

	// file values only, so environment secrets are not written back
	cfg, err := config.LoadFile()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	provider, err := ui.SelectProvider(embeddings.Providers(), cfg.Embeddings.Provider)
	if err != nil {
		return quitOnInterrupt(err)
	}
	cfg.Embeddings.Provider = provider

	switch provider {
	case embeddings.ProviderOllama:
		if err := configureOllama(cmd.Context(), cfg); err != nil {
			return quitOnInterrupt(err)
		}
	case embeddings.ProviderOpenAI:
		if err := configureOpenAI(cfg); err != nil {
			return quitOnInterrupt(err)
		}
	}

	path, err := ui.PromptInput("Default catalog (empty for the sample catalog):", cfg.Catalog)
	if err != nil {
		return quitOnInterrupt(err)
	}
	cfg.Catalog = path

	kStr, err := ui.PromptInput("Default number of recommendations:", strconv.Itoa(cfg.DefaultK))
	if err != nil {
		return quitOnInterrupt(err)
	}
	if k, err := strconv.Atoi(kStr); err == nil && k > 0 {
		cfg.DefaultK = k
	} else {
		ui.ShowWarning(fmt.Sprintf("%q is not a positive number, keeping %d", kStr, cfg.DefaultK))
	}

	if cfg.History, err = ui.PromptYesNo("Keep a history of queries?", cfg.History); err != nil {
		return quitOnInterrupt(err)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", configPath))
	return nil
}

func configureOllama(ctx context.Context, cfg *config.Config) error {
	url := cfg.Embeddings.Ollama.URL
	if url == "" {
		url = embeddings.DefaultOllamaURL
	}
	url, err := ui.PromptInput("Ollama URL:", url)
	if err != nil {
		return err
	}
	model, err := ui.PromptInput("Embedding model:", orDefault(cfg.Embeddings.Ollama.Model, embeddings.DefaultOllamaModel))
	if err != nil {
		return err
	}
	cfg.Embeddings.Ollama = config.OllamaConfig{URL: url, Model: model}

	ui.ShowInfo("Checking Ollama...")
	e, err := embeddings.NewOllamaEmbedder(url, model)
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("%v (saved anyway)", err))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := e.Embed(ctx, "hello"); err != nil {
		ui.ShowWarning(fmt.Sprintf("Model %s did not answer: %v. Try 'ollama pull %s'", model, err, model))
		return nil
	}
	ui.ShowSuccess(fmt.Sprintf("Ollama is ready (%d dimensions)", e.Dimensions()))
	return nil
}

func configureOpenAI(cfg *config.Config) error {
	msg := "OpenAI API key (leave empty to use $" + config.EnvOpenAI + "):"
	if cfg.Embeddings.OpenAI.APIKey != "" {
		msg = "OpenAI API key (leave empty to keep the saved key):"
	}
	key, err := ui.PromptSecret(msg)
	if err != nil {
		return err
	}
	if key != "" {
		cfg.Embeddings.OpenAI.APIKey = key
	}

	baseURL, err := ui.PromptInput("API base URL:", orDefault(cfg.Embeddings.OpenAI.BaseURL, embeddings.DefaultOpenAIBaseURL))
	if err != nil {
		return err
	}
	model, err := ui.PromptInput("Embedding model:", orDefault(cfg.Embeddings.OpenAI.Model, "text-embedding-3-small"))
	if err != nil {
		return err
	}
	cfg.Embeddings.OpenAI.BaseURL = baseURL
	cfg.Embeddings.OpenAI.Model = model
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
