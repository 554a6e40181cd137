package bot

import (
	"sync"
)

// Mode names the conversation a chat is currently in.
type Mode string

const (
	ModeNone     Mode = ""
	ModeSFT      Mode = "SFT"
	ModeMovement Mode = "MOVEMENT"
	ModeParade   Mode = "PARADE"
	ModeImport   Mode = "IMPORT"
	ModeMedical  Mode = "MEDICAL"
)

// Conversation is the explicit per-chat state for multi-step flows. The
// services below it never see this; they take explicit arguments only.
type Conversation struct {
	Mode     Mode
	Step     string
	Data     map[string]string
	Selected map[string]bool
	Names    []string
}

// StateStore keeps one Conversation per chat, guarded for concurrent updates.
type StateStore struct {
	mu       sync.Mutex
	sessions map[int64]*Conversation
}

func NewStateStore() *StateStore {
	return &StateStore{sessions: make(map[int64]*Conversation)}
}

// Get returns the chat's conversation, creating an empty one if needed.
func (s *StateStore) Get(chatID int64) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.sessions[chatID]
	if !ok {
		conv = &Conversation{Data: map[string]string{}, Selected: map[string]bool{}}
		s.sessions[chatID] = conv
	}
	return conv
}

// Reset clears the chat's state and optionally enters a new mode.
func (s *StateStore) Reset(chatID int64, mode Mode) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := &Conversation{Mode: mode, Data: map[string]string{}, Selected: map[string]bool{}}
	s.sessions[chatID] = conv
	return conv
}
