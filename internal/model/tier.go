package model

import (
	"fmt"
	"time"
)

// Tier is a staking period expressed in months.
type Tier uint8

const (
	Tier3Months  Tier = 3
	Tier6Months  Tier = 6
	Tier9Months  Tier = 9
	Tier12Months Tier = 12
)

const secondsPerMonth = int64(30 * 24 * time.Hour / time.Second)

// Tiers lists the supported staking tiers in ascending order.
var Tiers = []Tier{Tier3Months, Tier6Months, Tier9Months, Tier12Months}

var tierMultipliers = map[Tier]uint64{
	Tier3Months:  105,
	Tier6Months:  110,
	Tier9Months:  115,
	Tier12Months: 120,
}

// Valid reports whether t is one of the supported tiers.
func (t Tier) Valid() bool {
	_, ok := tierMultipliers[t]
	return ok
}

// Duration returns the lock duration in seconds.
func (t Tier) Duration() int64 {
	return int64(t) * secondsPerMonth
}

// Multiplier returns the payout percentage applied to the locked principal.
func (t Tier) Multiplier() uint64 {
	return tierMultipliers[t]
}

func (t Tier) String() string {
	return fmt.Sprintf("%dm", uint8(t))
}
