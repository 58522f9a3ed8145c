package id

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()
	assert.NotEqual(t, gen.Generate(), gen.Generate())
}

func TestTypedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"session", NewSessionID().String(), SessionPrefix},
		{"frame", NewFrameID().String(), FramePrefix},
		{"request", NewRequestID().String(), RequestPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Valid(tt.id, tt.prefix), tt.id)
			assert.False(t, Valid(tt.id, "other"))
		})
	}
}

func TestValidRejectsGarbage(t *testing.T) {
	assert.False(t, Valid("sess_not-a-ulid", SessionPrefix))
	assert.False(t, Valid("", SessionPrefix))
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewFrameID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("frame_zzz")
	assert.Error(t, err)
}

func TestDeterministicEntropy(t *testing.T) {
	a := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)))
	id := a.Generate()
	assert.Equal(t, make([]byte, 10), id.Entropy())
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	const n = 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.GenerateWithPrefix(FramePrefix)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}
