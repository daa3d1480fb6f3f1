package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProtocolMetricsBeforeInitIsNoop(t *testing.T) {
	// The global registry is process-wide; this test must run before any
	// that calls InitRegistry. Within this package only this file touches
	// it, so ordering is by name and this assertion holds as long as the
	// registry starts uninitialized.
	if IsEnabled() {
		t.Skip("registry already initialized by another test")
	}

	m := NewProtocolMetrics()
	_, ok := m.(NoopProtocolMetrics)
	assert.True(t, ok, "metrics before InitRegistry should be no-op")

	// No-op methods must not panic.
	m.RecordOperation("create_document", time.Millisecond, nil)
	m.RecordRefresh("completed")
}

func TestProtocolMetricsRecords(t *testing.T) {
	InitRegistry()
	require.True(t, IsEnabled())

	m := NewProtocolMetrics()
	m.RecordOperation("create_document", 2*time.Millisecond, nil)
	m.RecordOperation("create_document", time.Millisecond, errors.New("boom"))
	m.RecordOperation("share_document", time.Millisecond, nil)
	m.RecordRefresh("completed")
	m.RecordRefresh("skipped")

	families, err := GetRegistry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	assert.True(t, found["docvault_protocol_operations_total"])
	assert.True(t, found["docvault_protocol_operation_duration_seconds"])
	assert.True(t, found["docvault_sync_refreshes_total"])
}
