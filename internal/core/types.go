package core

import (
	"encoding/json"
	"time"
)

// QuotaPolicy pairs a maximum request count with a tracking window.
// Policies are named and immutable once configured.
type QuotaPolicy struct {
	MaxRequests int           `json:"max_requests"`
	Window      time.Duration `json:"window"`
}

// QuotaStatus reports whether a subject may act and how much budget remains.
type QuotaStatus struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// QuotaRecord is a stored counter entry as seen by admin tooling.
type QuotaRecord struct {
	Key       string     `json:"key"`
	Count     int64      `json:"count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ThrottleConfig bounds outbound traffic to one destination domain.
type ThrottleConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	RetryDelay        time.Duration `json:"retry_delay"`
	MaxRetries        int           `json:"max_retries"`
}

// FetchResult is the in-band outcome of a rate-limited fetch. Ordinary HTTP
// and network failures never surface as errors; callers branch on OK.
type FetchResult struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Err    string          `json:"error,omitempty"`
}

// Decode unmarshals the fetched payload into out.
func (r *FetchResult) Decode(out any) error {
	if r == nil || len(r.Data) == 0 {
		return json.Unmarshal([]byte("null"), out)
	}
	return json.Unmarshal(r.Data, out)
}
