// Package fees implements the network fee schedule. Fees are quoted in USD,
// clamped to a fixed band, and converted to the smallest QOR unit at the
// oracle price.
package fees

import (
	"fmt"
)

// Fee band and denomination constants.
const (
	MinFeeUSD     = 0.0001
	MaxFeeUSD     = 0.01
	DefaultFeeUSD = 0.0001

	// UnitsPerQOR is the number of smallest units in one QOR.
	UnitsPerQOR = 1_000_000_000
)

// =============================================================================

// Priority determines how aggressively a transaction bids for inclusion.
type Priority uint8

// Set of known priorities.
const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
}

// Priorities returns the known priorities in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// ParsePriority converts a name into a priority.
func ParsePriority(name string) (Priority, error) {
	for p, n := range priorityNames {
		if n == name {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown priority %q", name)
}

// String implements the fmt.Stringer interface.
func (p Priority) String() string {
	if name, exists := priorityNames[p]; exists {
		return name
	}

	return "low"
}

// MarshalText implements the encoding.TextMarshaler interface.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *Priority) UnmarshalText(data []byte) error {
	priority, err := ParsePriority(string(data))
	if err != nil {
		return err
	}

	*p = priority
	return nil
}

// Multiplier returns the fee multiplier for the priority.
func (p Priority) Multiplier() float64 {
	switch p {
	case PriorityMedium:
		return 1.5
	case PriorityHigh:
		return 2.0
	case PriorityUrgent:
		return 5.0
	default:
		return 1.0
	}
}

// =============================================================================

// Class identifies the kind of work a transaction asks the network to do.
// Each class carries its own base fee.
type Class int

// Set of known transaction classes.
const (
	ClassTransfer Class = iota
	ClassProvideLiquidity
	ClassRegisterApp
	ClassReportMetrics
	ClassClaimRewards
	ClassContractSimple
	ClassContractMedium
	ClassContractComplex
)

// BaseUSD returns the base fee in USD for the class before any priority
// multiplier is applied.
func (c Class) BaseUSD() float64 {
	switch c {
	case ClassProvideLiquidity:
		return DefaultFeeUSD * 2.0
	case ClassRegisterApp:
		return DefaultFeeUSD * 5.0
	case ClassReportMetrics:
		return DefaultFeeUSD * 0.5
	case ClassClaimRewards:
		return DefaultFeeUSD * 1.5
	case ClassContractSimple:
		return DefaultFeeUSD * 3.0
	case ClassContractMedium:
		return DefaultFeeUSD * 10.0
	case ClassContractComplex:
		return DefaultFeeUSD * 50.0
	default:
		return DefaultFeeUSD
	}
}

// =============================================================================

// USDToQOR converts a USD amount to the smallest QOR unit at the specified
// price. A non-positive price yields zero.
func USDToQOR(usd float64, price float64) uint64 {
	if price <= 0 {
		return 0
	}

	return uint64(usd / price * UnitsPerQOR)
}

// QORToUSD converts an amount in the smallest QOR unit to USD at the
// specified price. A non-positive price yields zero.
func QORToUSD(units uint64, price float64) float64 {
	if price <= 0 {
		return 0
	}

	return float64(units) / UnitsPerQOR * price
}
