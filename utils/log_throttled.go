package utils

import (
	"sync"
	"time"
)

const MAX_THROTTLED_LOG_KEYS = 10000

var THROTTLED_LOGS_MUTEX sync.Mutex
var THROTTLED_LOGS_LAST = make(map[string]time.Time)

// LogWithTimeThrottled logs at most once per `every` duration for a given `key`.
// Used on hot paths (degraded TPS queries, indexer fetch retries) to avoid spamming stdout.
// It reports whether the line was printed.
func LogWithTimeThrottled(key string, every time.Duration, msg, msgColor string) bool {
	if every <= 0 {
		LogWithTime(msg, msgColor)
		return true
	}

	now := time.Now()

	THROTTLED_LOGS_MUTEX.Lock()
	if len(THROTTLED_LOGS_LAST) > MAX_THROTTLED_LOG_KEYS {
		THROTTLED_LOGS_LAST = make(map[string]time.Time)
	}
	last, ok := THROTTLED_LOGS_LAST[key]
	if ok && now.Sub(last) < every {
		THROTTLED_LOGS_MUTEX.Unlock()
		return false
	}
	THROTTLED_LOGS_LAST[key] = now
	THROTTLED_LOGS_MUTEX.Unlock()

	LogWithTime(msg, msgColor)
	return true
}
