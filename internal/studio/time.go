package studio

import "time"

// timeNow is replaceable in tests for deterministic timestamps.
var timeNow = time.Now
