package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/recoforge/internal/history"
	"github.com/iishyfishyy/recoforge/internal/recommend"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

func runDescribe(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))

	a, err := newApp()
	if err != nil {
		return err
	}

	if text == "" {
		if !isInteractiveTerminal() {
			return errors.New("describe needs a description, e.g. recoforge describe \"heist with a twist\"")
		}
		if text, err = ui.PromptDescription(); err != nil {
			return err
		}
	}
	a.log.Debug("Main: describe %q tags=%q k=%d", text, tagsFlag, a.k())

	ctx := cmd.Context()
	engine, err := a.openEngine(ctx, a.catalogPath())
	if err != nil {
		return err
	}

	recs, err := engine.Answer(ctx, text, tagsFlag, a.k())
	if err != nil {
		return err
	}

	return a.emit(cmd.OutOrStdout(), history.ModeDescribe, text, recs)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))

	a, err := newApp()
	if err != nil {
		return err
	}
	a.log.Debug("Main: similar to %q tags=%q k=%d", name, tagsFlag, a.k())

	ctx := cmd.Context()
	engine, err := a.openEngine(ctx, a.catalogPath())
	if err != nil {
		return err
	}

	recs, err := engine.AnswerByItem(ctx, name, tagsFlag, a.k())
	if err != nil {
		if errors.Is(err, recommend.ErrItemNotFound) {
			return fmt.Errorf("%w; run 'recoforge items' to list the catalog", err)
		}
		return err
	}

	return a.emit(cmd.OutOrStdout(), history.ModeSimilar, name, recs)
}

// emit prints results in the requested format, copies them if asked and
// records the query
func (a *app) emit(w io.Writer, mode, query string, recs recommend.Recommendations) error {
	if jsonFlag {
		if err := ui.WriteJSON(w, recs); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	} else {
		ui.PrintRecommendations(w, recs)
	}

	if copyFlag {
		if err := clipboard.WriteAll(ui.RenderRecommendations(recs)); err != nil {
			ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		} else if !jsonFlag {
			ui.ShowSuccess("Copied to clipboard!")
		}
	}

	a.record(mode, query, tagsFlag, a.k(), recs)
	return nil
}

// record saves a history entry; failures are only warnings
func (a *app) record(mode, query, tags string, k int, recs recommend.Recommendations) {
	if !a.cfg.History {
		return
	}

	histPath, err := history.GetHistoryPath()
	if err != nil {
		a.log.Error("History: %v", err)
		return
	}
	a.log.Debug("History: saving entry to %s", histPath)

	hist, err := history.LoadFrom(histPath)
	if err == nil {
		entry := history.NewEntry(mode, query, recommend.ParseTagFilter(tags).String(), k, recs.Names())
		entry.Catalog = catalogLabel(a.catalogPath())
		err = hist.Record(entry)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
	}
}

func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, ctx.Err())
}
