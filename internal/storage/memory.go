package storage

import "sync"

// MemoryMedium is a Medium that lives only in process memory
type MemoryMedium struct {
	mu     sync.Mutex
	values map[string]string

	// Set these to make reads or writes fail
	GetErr error
	SetErr error
}

// NewMemoryMedium returns an empty MemoryMedium
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{values: make(map[string]string)}
}

func (m *MemoryMedium) GetSetting(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.values[key], nil
}

func (m *MemoryMedium) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}
