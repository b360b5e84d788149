package multiindex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWithAtomicLiveCount_ConcurrentEmplaceAndSize exercises the one
// concurrent-safe subset spec.md §5 actually permits: concurrent
// emplace on disjoint keys racing against concurrent size() reads. Run
// with -race, this is exactly the scenario that catches a plain ++/--/read
// on the live counter; WithAtomicLiveCount(true) is what makes it safe.
func TestWithAtomicLiveCount_ConcurrentEmplaceAndSize(t *testing.T) {
	mi := New[int, item](
		NoInvPolicy[int, item]{},
		[]IndexSpec[int, item]{
			PrimarySpec[int, item](true),
			categorySpec(),
		},
		WithTombstones[int, item](true),
		WithAtomicLiveCount[int, item](true),
	)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(key int) {
			defer wg.Done()
			mi.Emplace(key, item{Name: "rec", Category: "C", Seq: key})
		}(i)
	}

	stop := make(chan struct{})
	var readerWG sync.WaitGroup
	readerWG.Add(1)
	go func() {
		defer readerWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = mi.Size()
			}
		}
	}()

	wg.Wait()
	close(stop)
	readerWG.Wait()

	assert.Equal(t, n, mi.Size())
	assert.Equal(t, n, mi.PhysicalSize())
}
