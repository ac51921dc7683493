package mocks

import "github.com/user/retime/pkg/ports"

// StatsLog is a mock implementation of ports.StatsLog backed by memory.
type StatsLog struct {
	AppendFunc  func(fragment []byte) error
	ReadAllFunc func() ([]byte, error)
	CloseFunc   func() error

	// Recorded state for verification
	Fragments [][]byte
	Closed    bool
}

func (m *StatsLog) Append(fragment []byte) error {
	m.Fragments = append(m.Fragments, append([]byte(nil), fragment...))
	if m.AppendFunc != nil {
		return m.AppendFunc(fragment)
	}
	return nil
}

func (m *StatsLog) ReadAll() ([]byte, error) {
	if m.ReadAllFunc != nil {
		return m.ReadAllFunc()
	}
	var all []byte
	for _, f := range m.Fragments {
		all = append(all, f...)
	}
	return all, nil
}

func (m *StatsLog) Close() error {
	m.Closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.StatsLog = (*StatsLog)(nil)
