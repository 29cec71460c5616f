package concurrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsEveryJobAndCollectsAllResults(t *testing.T) {
	pool := NewWorkerPool[int, int](4, 10)
	pool.Start(func(n int) int { return n * n })
	for i := 1; i <= 10; i++ {
		pool.AddJob(i)
	}
	pool.Close()
	pool.Wait()

	var sum int
	for r := range pool.CollectResults() {
		sum += r
	}
	assert.Equal(t, 385, sum) // sum of squares 1..10
	assert.Empty(t, pool.Errs())
}

func TestPoolRecoversJobPanicInsteadOfCrashing(t *testing.T) {
	pool := NewWorkerPool[int, int](2, 4)
	pool.Start(func(n int) int {
		if n == 2 {
			panic("deliberate failure")
		}
		return n
	})
	for i := 0; i < 4; i++ {
		pool.AddJob(i)
	}
	pool.Close()
	pool.Wait()

	for range pool.CollectResults() {
		// drain; the panicking job simply contributes nothing here
	}
	errs := pool.Errs()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "deliberate failure")
}
