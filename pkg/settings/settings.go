// Package settings holds the runtime-tunable workspace settings consumed by
// spotlight search. Values can be updated while the process runs, either
// programmatically or through the file watcher.
package settings

import "sync"

// Default values applied when a setting was never configured.
const (
	DefaultSuggestionLimit = 5
)

// Settings is a concurrency-safe view of the workspace runtime settings.
type Settings struct {
	mu sync.RWMutex

	storeLastMessage   bool
	allowAnonymousRead bool
	suggestionLimit    int
	useRealName        bool
}

// New returns settings with default values: last-message previews stored,
// anonymous browsing off, five user suggestions, username sort.
func New() *Settings {
	return &Settings{
		storeLastMessage: true,
		suggestionLimit:  DefaultSuggestionLimit,
	}
}

// StoreLastMessage reports whether rooms carry a last-message preview.
func (s *Settings) StoreLastMessage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeLastMessage
}

// SetStoreLastMessage updates the last-message preview setting.
func (s *Settings) SetStoreLastMessage(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeLastMessage = v
}

// AllowAnonymousRead reports whether anonymous actors may browse public rooms.
func (s *Settings) AllowAnonymousRead() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowAnonymousRead
}

// SetAllowAnonymousRead updates the anonymous browsing setting.
func (s *Settings) SetAllowAnonymousRead(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowAnonymousRead = v
}

// SuggestionLimit returns the maximum number of user suggestions per search.
func (s *Settings) SuggestionLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.suggestionLimit <= 0 {
		return DefaultSuggestionLimit
	}
	return s.suggestionLimit
}

// SetSuggestionLimit updates the user suggestion limit.
func (s *Settings) SetSuggestionLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestionLimit = n
}

// UseRealName reports whether search results sort by display name rather
// than username.
func (s *Settings) UseRealName() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useRealName
}

// SetUseRealName updates the display-name sort preference.
func (s *Settings) SetUseRealName(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useRealName = v
}
