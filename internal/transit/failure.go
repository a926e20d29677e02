package transit

// FailureBudget counts transition failures and gates further multi-zone
// attempts. Once the count reaches the configured maximum, attempts stay
// blocked until the last failure ages past the cooldown window.
type FailureBudget struct {
	Count       int    `json:"count"`
	LastAttempt uint64 `json:"last_attempt"`
}

// Record charges one failure at the given tick.
func (f *FailureBudget) Record(now uint64) {
	f.Count++
	f.LastAttempt = now
}

// Allowed reports whether another attempt may start. Under the failure cap
// it always may; over the cap, only after the cooldown has elapsed since the
// last failure.
func (f *FailureBudget) Allowed(now uint64, maxFailures int, cooldown uint64) bool {
	if f.Count < maxFailures {
		return true
	}
	return now-f.LastAttempt >= cooldown
}

// Exhausted reports whether the cap has been reached, regardless of
// cooldown.
func (f *FailureBudget) Exhausted(maxFailures int) bool {
	return f.Count >= maxFailures
}

// Reset clears the count, typically after a cooldown retry is granted.
func (f *FailureBudget) Reset() {
	f.Count = 0
}
