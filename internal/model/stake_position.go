package model

import "github.com/ethereum/go-ethereum/common"

// TierLock is the lock state of one tier.
type TierLock struct {
	LockedAmount  uint64 `json:"locked_amount"`
	LockStartedAt int64  `json:"lock_started_at"`
	Active        bool   `json:"active"`
}

// StakePosition holds a participant's locks across all tiers.
type StakePosition struct {
	Owner common.Address    `json:"owner"`
	Tiers map[Tier]TierLock `json:"tiers"`
}

// NewStakePosition returns an idle position for owner.
func NewStakePosition(owner common.Address) StakePosition {
	return StakePosition{Owner: owner, Tiers: make(map[Tier]TierLock, len(Tiers))}
}

// Lock returns the lock for tier; a missing entry is idle.
func (p StakePosition) Lock(tier Tier) TierLock {
	return p.Tiers[tier]
}

// WithLock returns a copy of p with tier set to lock.
func (p StakePosition) WithLock(tier Tier, lock TierLock) StakePosition {
	tiers := make(map[Tier]TierLock, len(p.Tiers)+1)
	for k, v := range p.Tiers {
		tiers[k] = v
	}
	tiers[tier] = lock
	return StakePosition{Owner: p.Owner, Tiers: tiers}
}
