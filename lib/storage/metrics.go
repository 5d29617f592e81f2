package storage

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"time"
)

// observe records one finished operation
func observe(op string, start time.Time, err error) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`kvfacade_operations_total{op=%q}`, op)).Inc()
	metrics.GetOrCreateSummary(fmt.Sprintf(`kvfacade_operation_duration_seconds{op=%q}`, op)).Update(time.Since(start).Seconds())

	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`kvfacade_errors_total{op=%q,code=%q}`, op, codeOf(err))).Inc()
	}
}
