package vm

import "github.com/rcrowley/go-metrics"

var (
	validateAcceptedCounter = metrics.NewRegisteredCounter("eof/validate/accepted", nil)
	validateRejectedCounter = metrics.NewRegisteredCounter("eof/validate/rejected", nil)
	validateTimer           = metrics.NewRegisteredTimer("eof/validate/time", nil)

	cacheHitCounter  = metrics.NewRegisteredCounter("eof/cache/hit", nil)
	cacheMissCounter = metrics.NewRegisteredCounter("eof/cache/miss", nil)
)
