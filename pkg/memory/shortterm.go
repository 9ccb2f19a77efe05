package memory

import "sync"

// DefaultShortTermCapacity is the per-project window size used when no
// capacity is configured.
const DefaultShortTermCapacity = 10

// ShortTermMemory keeps a bounded FIFO window of recent entries per project.
// When a project's window is full, adding evicts the oldest entry. The zero
// value is not usable; construct with NewShortTermMemory.
type ShortTermMemory struct {
	mu       sync.Mutex
	capacity int
	windows  map[string][]Entry
}

// NewShortTermMemory creates a short-term memory with the given per-project
// capacity. A capacity of zero or less falls back to
// DefaultShortTermCapacity.
func NewShortTermMemory(capacity int) *ShortTermMemory {
	if capacity <= 0 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTermMemory{
		capacity: capacity,
		windows:  make(map[string][]Entry),
	}
}

// Add appends an entry to the project's window, evicting the oldest entry
// when the window is at capacity.
func (s *ShortTermMemory) Add(projectID string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[projectID]
	if len(window) == s.capacity {
		copy(window, window[1:])
		window[len(window)-1] = e
	} else {
		window = append(window, e)
	}
	s.windows[projectID] = window
}

// Get returns the project's window oldest first. A positive limit keeps
// only the most recent limit entries; zero or less returns the whole
// window. The returned slice is a copy; callers may mutate it freely.
func (s *ShortTermMemory) Get(projectID string, limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[projectID]
	if limit > 0 && limit < len(window) {
		window = window[len(window)-limit:]
	}
	if len(window) == 0 {
		return nil
	}

	out := make([]Entry, len(window))
	copy(out, window)
	return out
}

// Clear drops the project's window.
func (s *ShortTermMemory) Clear(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, projectID)
}
