package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/albumsync/internal/shared"
	"github.com/desertthunder/albumsync/internal/ui"
)

// Browse launches the interactive album browser.
func (r *Runner) Browse(ctx context.Context) error {
	// Log lines would tear the alternate screen, so they go to a file while the browser runs.
	fileLogger, f, err := shared.NewFileLogger(filepath.Join(os.TempDir(), "albumsync", "browse.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()

	prev := r.logger
	fileLogger.SetLevel(prev.GetLevel())
	r.logger = fileLogger
	defer func() { r.logger = prev }()

	service, err := r.albumService()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, service, r.config.Credentials.UserID)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	if m, ok := final.(*ui.Model); ok && m.Err() != nil {
		return fmt.Errorf("failed to list albums: %w", m.Err())
	}
	return nil
}
