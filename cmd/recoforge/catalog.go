package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/recoforge/internal/catalog"
	"github.com/iishyfishyy/recoforge/internal/recommend"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

// runItems lists the catalog without embedding it
func runItems(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	path := a.catalogPath()
	src, err := catalog.Open(path)
	if err != nil {
		return err
	}
	items, err := src.Load(cmd.Context())
	if err != nil {
		return err
	}

	filter := recommend.ParseTagFilter(tagsFlag)
	if !filter.IsEmpty() {
		a.log.Debug("Catalog: requiring tags %v", filter.Tags())
	}
	matched := make([]recommend.Item, 0, len(items))
	for _, item := range items {
		if filter.Match(item.Tags) {
			matched = append(matched, item)
		}
	}
	a.log.Debug("Catalog: %d of %d items match %q", len(matched), len(items), filter.String())

	if jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(matched)
	}
	ui.PrintItems(cmd.OutOrStdout(), matched)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	srcPath, destPath := args[0], args[1]

	a, err := newApp()
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(destPath)) {
	case ".db", ".sqlite", ".sqlite3":
	default:
		return fmt.Errorf("destination %s must end in .db, .sqlite or .sqlite3", destPath)
	}
	if same, _ := samePath(srcPath, destPath); same {
		return fmt.Errorf("source and destination are the same file")
	}

	src, err := catalog.Open(srcPath)
	if err != nil {
		return err
	}
	if s, ok := src.(*catalog.SQLite); ok {
		s.Table = importTable
	}

	ctx := cmd.Context()
	items, err := src.Load(ctx)
	if err != nil {
		return err
	}
	a.log.Debug("Import: read %d items from %s", len(items), srcPath)

	if err := catalog.WriteSQLite(ctx, destPath, items); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Imported %d items into %s", len(items), destPath))
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
