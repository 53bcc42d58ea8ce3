package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/recoforge/internal/history"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	histPath, err := history.GetHistoryPath()
	if err != nil {
		return err
	}
	a.log.Debug("History: loading from %s", histPath)

	hist, err := history.LoadFrom(histPath)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyClear {
		n := len(hist.Entries)
		hist.Clear()
		if err := hist.Save(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		ui.ShowSuccess(fmt.Sprintf("Removed %d history entries", n))
		return nil
	}

	entries := hist.Recent(historyLimit)
	if len(entries) == 0 {
		ui.ShowInfo("No history yet")
		return nil
	}

	dim := color.New(color.FgHiBlack)
	bold := color.New(color.Bold)
	for _, e := range entries {
		dim.Printf("%s  %-8s  k=%d  tags=%s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Mode, e.K, e.Tags)
		bold.Printf("  %s\n", e.Query)
		if len(e.Results) == 0 {
			fmt.Printf("  -> %s\n\n", ui.NoResults)
			continue
		}
		fmt.Printf("  -> %s\n\n", strings.Join(e.Results, ", "))
	}
	return nil
}
