package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"
	"github.com/tgienger/pmdash/internal/csvimport"
	"github.com/tgienger/pmdash/internal/scheduler"
	"github.com/tgienger/pmdash/internal/stats"
	"github.com/tgienger/pmdash/internal/ui"
)

func runTUI(ctx context.Context, v *viper.Viper) error {
	ws, err := openWorkspace(ctx, v)
	if err != nil {
		return err
	}
	defer ws.Close()

	agg := stats.NewAggregator(ws.store, time.Now)
	agg.Attach(ws.bus)
	importer := csvimport.NewImporter(ws.store, ws.bus, ws.logger.Logger)

	if ws.db != nil {
		autosaver := scheduler.NewAutosaver(ws.store, ws.db, ws.logger.Logger)
		autosaver.Attach(ws.bus)
		if spec := ws.cfg.Storage.AutosaveSchedule; spec != "" {
			if _, err := autosaver.Schedule(spec); err != nil {
				return err
			}
		}
		autosaver.Start()
		defer func() {
			autosaver.Stop()
			if err := autosaver.SaveNow(context.Background()); err != nil {
				ws.logger.Error("final save failed", "error", err)
			}
		}()
	}

	app := ui.NewApp(ws.store, agg, importer, time.Now)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Forward(ws.bus, p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
