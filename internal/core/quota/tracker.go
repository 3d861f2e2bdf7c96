// Package quota tracks persistent per-subject action budgets against named
// policies.
package quota

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/quotafence/quotafence/internal/core"
	"github.com/quotafence/quotafence/internal/core/kv"
)

// Tracker gates actions identified by a (policy, subject) pair. Check is a
// pure read; Consume increments the stored counter. The window is anchored
// to the first consumption for a key: the store applies the policy TTL only
// when it creates the counter.
type Tracker struct {
	Store     kv.Store
	Policies  map[string]core.QuotaPolicy
	Namespace string
}

// Check reports whether subject may act under the named policy, without
// mutating stored state. Store failures propagate so callers can choose a
// fail-open or fail-closed posture.
func (t *Tracker) Check(ctx context.Context, policy, subject string) (core.QuotaStatus, error) {
	if t == nil || t.Store == nil {
		return core.QuotaStatus{}, errors.New("quota tracker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := t.policy(policy)
	if err != nil {
		return core.QuotaStatus{}, err
	}

	count, err := t.count(ctx, kv.Key(t.Namespace, policy, subject))
	if err != nil {
		return core.QuotaStatus{}, err
	}

	remaining := p.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return core.QuotaStatus{
		Allowed:   count < int64(p.MaxRequests),
		Remaining: remaining,
	}, nil
}

// Consume records one action for subject under the named policy. The check
// is advisory: consuming without checking can push the counter past the
// policy maximum, which Check then reports as not allowed.
func (t *Tracker) Consume(ctx context.Context, policy, subject string) error {
	if t == nil || t.Store == nil {
		return errors.New("quota tracker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := t.policy(policy)
	if err != nil {
		return err
	}

	if _, err := t.Store.Increment(ctx, kv.Key(t.Namespace, policy, subject), p.Window); err != nil {
		return fmt.Errorf("consume quota: %w", err)
	}
	return nil
}

func (t *Tracker) policy(name string) (core.QuotaPolicy, error) {
	p, ok := t.Policies[name]
	if !ok {
		return core.QuotaPolicy{}, fmt.Errorf("unknown quota policy: %s", name)
	}
	if p.MaxRequests <= 0 || p.Window <= 0 {
		return core.QuotaPolicy{}, fmt.Errorf("invalid quota policy: %s", name)
	}
	return p, nil
}

// count reads the current counter for key, treating an absent key as zero
// and a malformed stored value as a store fault.
func (t *Tracker) count(ctx context.Context, key string) (int64, error) {
	value, found, err := t.Store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read quota: %w", err)
	}
	if !found {
		return 0, nil
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed quota counter %q: %w", key, err)
	}
	return count, nil
}
