package bot

import "sync"

// Status is the published session state shared with the HTTP layer.
// The supervisor is the only writer; request handlers read snapshots.
type Status struct {
	mu      sync.RWMutex
	chatID  string
	videoID string
}

// Snapshot is the read-only view exposed to the HTTP layer.
type Snapshot struct {
	IsLive  bool   `json:"is_live"`
	VideoID string `json:"video_id,omitempty"`
}

// Set publishes an active session atomically.
func (s *Status) Set(chatID, videoID string) {
	s.mu.Lock()
	s.chatID = chatID
	s.videoID = videoID
	s.mu.Unlock()
}

// Clear resets the published state to "no session".
func (s *Status) Clear() {
	s.mu.Lock()
	s.chatID = ""
	s.videoID = ""
	s.mu.Unlock()
}

// ChatID returns the active chat id, or ok=false when no session is live.
func (s *Status) ChatID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatID, s.chatID != ""
}

// Get returns the current snapshot.
func (s *Status) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{IsLive: s.chatID != "", VideoID: s.videoID}
}
