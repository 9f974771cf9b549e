package gopool

import (
	"time"

	"github.com/panjf2000/ants/v2"
)

// defaultPool backs every section validation task submitted by the verifier.
var defaultPool, _ = ants.NewPool(ants.DefaultAntsPoolSize, ants.WithExpiryDuration(10*time.Second))

// Submit submits a task to pool.
func Submit(task func()) error {
	return defaultPool.Submit(task)
}

// Cap returns the capacity of this default pool.
func Cap() int {
	return defaultPool.Cap()
}

// Tune changes the capacity of the default pool. Non-positive sizes restore
// the ants default.
func Tune(size int) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	defaultPool.Tune(size)
}
