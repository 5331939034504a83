package unmatched

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportThreshold(t *testing.T) {
	c := NewCounter()
	c.Add("user_id", 6)
	c.Add("payload", 4)
	for i := 0; i < 90; i++ {
		c.Add(fmt.Sprintf("rare_%02d", i), 1)
	}
	require.Equal(t, 100, c.Total())

	entries := c.Report(DefaultTop, DefaultThreshold)
	require.Len(t, entries, 1)
	assert.Equal(t, "user_id", entries[0].Name)
	assert.Equal(t, 6, entries[0].Count)
	assert.InDelta(t, 0.06, entries[0].Share, 1e-9)
}

func TestReportThresholdIsStrict(t *testing.T) {
	c := NewCounter()
	c.Add("exact", 5)
	c.Add("rest", 95)

	entries := c.Report(DefaultTop, DefaultThreshold)
	require.Len(t, entries, 1)
	assert.Equal(t, "rest", entries[0].Name)
}

func TestReportZeroTotal(t *testing.T) {
	c := NewCounter()
	assert.Empty(t, c.Report(DefaultTop, DefaultThreshold))
	c.Add("ignored", 0)
	assert.Empty(t, c.Report(DefaultTop, 0))
}

func TestReportHonoursTop(t *testing.T) {
	c := NewCounter()
	c.Merge(map[string]int{"a": 10, "b": 10, "c": 30, "d": 50})

	entries := c.Report(2, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "d", entries[0].Name)
	assert.Equal(t, "c", entries[1].Name)
}

func TestMostCommonTiesOrderedByName(t *testing.T) {
	c := NewCounter()
	c.Merge(map[string]int{"zeta": 2, "alpha": 2, "mid": 3})

	entries := c.MostCommon(0)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"mid", "alpha", "zeta"}, names)
}

func TestConcurrentMerge(t *testing.T) {
	c := NewCounter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Merge(map[string]int{"user_id": 2, "payload": 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 150, c.Total())
	assert.Equal(t, 100, c.Count("user_id"))
	assert.Equal(t, 50, c.Count("payload"))
}

func TestReset(t *testing.T) {
	c := NewCounter()
	c.Add("user_id", 3)
	c.Reset()
	assert.Zero(t, c.Total())
	assert.Zero(t, c.Count("user_id"))
}
