package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iishyfishyy/recoforge/internal/history"
	"github.com/iishyfishyy/recoforge/internal/recommend"
	"github.com/iishyfishyy/recoforge/internal/ui"
)

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	if !isInteractiveTerminal() {
		return errors.New("interactive mode needs a terminal; use 'recoforge describe' or 'recoforge similar' instead")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	ui.ShowSection("recoforge")

	var engine *recommend.Engine
	load := func(path string) error {
		ui.ShowInfo(fmt.Sprintf("Loading %s...", catalogLabel(path)))
		e, err := a.openEngine(ctx, path)
		if err != nil {
			return err
		}
		engine = e
		a.chosen, a.catalog = true, path
		return nil
	}

	if catalogFlag != "" {
		if err := load(catalogFlag); err != nil {
			return err
		}
	} else if _, err := ui.PromptCatalogPath(load); err != nil {
		return quitOnInterrupt(err)
	}

	store := engine.Store()
	ui.ShowSuccess(fmt.Sprintf("Loaded %d items from %s", store.Len(), catalogLabel(a.catalogPath())))

	names := make([]string, 0, store.Len())
	for _, item := range store.Items() {
		names = append(names, item.Name)
	}
	tags := store.Tags()

	for {
		mode, err := ui.SelectMode()
		if err != nil {
			return quitOnInterrupt(err)
		}
		if mode == ui.ModeQuit {
			return nil
		}

		tagsRequest, err := ui.PromptTags(tags)
		if err != nil {
			return quitOnInterrupt(err)
		}

		var (
			recs  recommend.Recommendations
			query string
			hmode string
		)
		switch mode {
		case ui.ModeDescribe:
			hmode = history.ModeDescribe
			if query, err = ui.PromptDescription(); err != nil {
				return quitOnInterrupt(err)
			}
			recs, err = engine.Answer(ctx, query, tagsRequest, a.k())

		case ui.ModeSimilar:
			hmode = history.ModeSimilar
			for {
				if query, err = ui.PromptItemName(names); err != nil {
					return quitOnInterrupt(err)
				}
				recs, err = engine.AnswerByItem(ctx, query, tagsRequest, a.k())
				if !errors.Is(err, recommend.ErrItemNotFound) {
					break
				}
				ui.ShowError(err.Error())
			}
		}

		if err != nil {
			if isCancelled(ctx, err) {
				return nil
			}
			ui.ShowError(err.Error())
			continue
		}

		fmt.Println()
		ui.PrintRecommendations(os.Stdout, recs)
		fmt.Println()
		a.record(hmode, query, tagsRequest, a.k(), recs)
	}
}

// quitOnInterrupt turns Ctrl-C at a prompt into a clean exit
func quitOnInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		ui.ShowInfo("Bye!")
		return nil
	}
	return err
}
