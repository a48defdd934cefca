package storage

import (
	"context"
	"errors"
)

// State is a read-only blob: a catalog document loaded from disk, S3 or memory.
type State interface {
	Load(ctx context.Context) ([]byte, error)
}

// MemoryState is an in-memory State for tests and embedded defaults.
type MemoryState struct {
	data []byte
	err  error
}

func NewMemoryState(data []byte) *MemoryState {
	return &MemoryState{data: data}
}

func NewMemoryStateWithError() *MemoryState {
	return &MemoryState{err: errors.New("not found")}
}

func (m *MemoryState) Load(ctx context.Context) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}
