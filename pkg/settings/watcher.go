package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/harborchat/spotlight/pkg/observability"
)

// fileSettings mirrors the on-disk settings document. Keys match the
// workspace setting names used by admin tooling.
type fileSettings struct {
	StoreLastMessage   *bool `json:"Store_Last_Message"`
	AllowAnonymousRead *bool `json:"Accounts_AllowAnonymousRead"`
	SuggestionLimit    *int  `json:"Number_of_users_autocomplete_suggestions"`
	UseRealName        *bool `json:"UI_Use_Real_Name"`
}

// FileWatcher reloads settings from a JSON file whenever it changes.
type FileWatcher struct {
	path     string
	settings *Settings
	logger   *observability.Logger
}

// NewFileWatcher creates a watcher for the given settings file.
func NewFileWatcher(path string, settings *Settings, logger *observability.Logger) *FileWatcher {
	return &FileWatcher{
		path:     path,
		settings: settings,
		logger:   logger,
	}
}

// Load reads the settings file once and applies it. Absent keys keep their
// current values.
func (w *FileWatcher) Load() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var fs fileSettings
	if err := json.Unmarshal(data, &fs); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	if fs.StoreLastMessage != nil {
		w.settings.SetStoreLastMessage(*fs.StoreLastMessage)
	}
	if fs.AllowAnonymousRead != nil {
		w.settings.SetAllowAnonymousRead(*fs.AllowAnonymousRead)
	}
	if fs.SuggestionLimit != nil {
		w.settings.SetSuggestionLimit(*fs.SuggestionLimit)
	}
	if fs.UseRealName != nil {
		w.settings.SetUseRealName(*fs.UseRealName)
	}

	return nil
}

// Watch reloads the file on every write event until the context is canceled.
// Watching the parent directory survives editors that replace the file on
// save instead of writing in place.
func (w *FileWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := w.Load(); err != nil {
					w.logger.WithError(err).Warn("settings reload failed")
					continue
				}
				w.logger.WithField("path", w.path).Info("settings reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.WithError(err).Warn("settings watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
