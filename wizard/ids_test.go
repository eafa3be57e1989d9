package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDSequence(t *testing.T) {
	var s IDSequence
	now := time.UnixMilli(1709289000000)

	assert.Equal(t, "1709289000000", s.Next(now))
	assert.Equal(t, "1709289000001", s.Next(now))
	assert.Equal(t, "1709289000002", s.Next(now.Add(-time.Second)), "never goes back")
	assert.Equal(t, "1709289005000", s.Next(now.Add(5*time.Second)))
}

func TestSubmitSameMillisecond(t *testing.T) {
	now := time.UnixMilli(1709289000000)
	ids := &IDSequence{}
	c := &collection{}

	const drafts = 200
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	seen := make(map[string]bool, drafts)
	for i := 0; i < drafts; i++ {
		f := newTestForm(t)
		f.now = func() time.Time { return now }
		f.ids = ids
		fill(f)
		f.SetCurrentStep(7)

		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := f.Submit(context.Background(), c)
			if !assert.NoError(t, err) || !assert.NotNil(t, req) {
				return
			}
			mu.Lock()
			seen[req.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, drafts)
}
