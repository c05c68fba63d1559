package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kerbaras/mangadex-dl/pkg/app/components"
	"github.com/kerbaras/mangadex-dl/pkg/app/styles"
	"github.com/kerbaras/mangadex-dl/pkg/chapters"
	"github.com/kerbaras/mangadex-dl/pkg/services"
	"github.com/sirupsen/logrus"
)

// App runs one download session on the console.
type App struct {
	controller *services.MangaController
	prompter   Prompter
	out        io.Writer
	log        *logrus.Logger
	tracker    *components.ProgressTracker
}

func NewApp(controller *services.MangaController, prompter Prompter, out io.Writer, logger *logrus.Logger) *App {
	return &App{
		controller: controller,
		prompter:   prompter,
		out:        out,
		log:        logger,
		tracker:    components.NewProgressTracker(30),
	}
}

// Run lists the chapters of mangaID in lang and downloads the ones picked
// by selection. An empty selection asks the user.
func (a *App) Run(ctx context.Context, mangaID, lang, selection string) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for progress := range a.controller.Progress() {
			fmt.Fprint(a.out, a.tracker.Update(progress))
		}
	}()
	defer wg.Wait()
	defer a.controller.Close()

	plan, err := a.controller.Plan(ctx, mangaID, lang)
	if errors.Is(err, services.ErrNoChapters) {
		fmt.Fprintf(a.out, "\n%s %s\n", styles.TitleStyle.Render("Title:"), plan.Manga.Title)
		fmt.Fprintln(a.out, styles.WarningStyle.Render("No chapters available to download!"))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s %s\n", styles.TitleStyle.Render("Title:"), plan.Manga.Title)
	fmt.Fprintln(a.out, styles.SubtitleStyle.Render("Available chapters:"))
	fmt.Fprintf(a.out, " %s\n", strings.Join(chapters.DisplayLabels(plan.Available), ", "))
	for _, r := range plan.Invalid {
		fmt.Fprintln(a.out, styles.WarningStyle.Render(
			fmt.Sprintf("Chapter %q [%s] has an invalid number. Skipping.", r.Number, r.Group)))
	}

	if selection == "" {
		fmt.Fprintln(a.out)
		selection, err = a.prompter.Ask("Enter chapter(s) to download:", "e.g. 1,3-5 or last")
		if err != nil {
			return err
		}
	}

	sel, targets, warnings := a.controller.Select(plan, selection)
	for _, skipped := range sel.Skipped {
		fmt.Fprintln(a.out, styles.WarningStyle.Render(skipped.String()))
	}
	for _, w := range warnings {
		a.log.WithError(w).Debug("chapter record skipped")
	}
	if len(targets) == 0 {
		fmt.Fprintln(a.out, styles.MutedStyle.Render("Nothing to download."))
	}

	fmt.Fprintln(a.out)
	_, err = a.controller.Download(ctx, plan, targets)

	// let the listener print everything before the summary
	a.controller.Close()
	wg.Wait()

	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, styles.MutedStyle.Render(a.tracker.Summary()))
	fmt.Fprintln(a.out, styles.StatusCompleted.Render("Done!"))
	return nil
}
