// Package resource bounds the memory and concurrency spent on loading
// snapshots.
//
// A Controller hands out two kinds of permits:
//
//   - Memory: bytes reserved for decoded particle arrays, limited by a
//     weighted semaphore. AcquireMemory blocks; TryAcquireMemory fails fast.
//   - Loads: slots for snapshot loads running at the same time.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 4 << 30,
//	    MaxConcurrentLoads: 2,
//	})
//
//	if err := rc.AcquireLoad(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseLoad()
//
// All methods are safe for concurrent use and treat a nil Controller as
// unlimited.
package resource
