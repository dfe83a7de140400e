package fees

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// updateEvery guards how often the oracle will requery its sources.
const updateEvery = 60 * time.Second

// defaultPrice is used until the first successful source update.
const defaultPrice = 1.0

// Source represents a price feed the oracle can query.
type Source interface {
	Name() string
	Weight() float64
	Price(ctx context.Context) (float64, error)
}

// Estimate is the fee for one priority level.
type Estimate struct {
	Priority Priority `json:"priority"`
	FeeUSD   float64  `json:"fee_usd"`
	FeeQOR   uint64   `json:"fee_qor"`
}

// Oracle maintains the QOR/USD price from a weighted set of sources and
// prices transactions against the fee schedule.
type Oracle struct {
	mu         sync.RWMutex
	price      float64
	lastUpdate time.Time
	sources    []Source
}

// NewOracle constructs an oracle over the specified sources. With no sources
// the default weighted set is used.
func NewOracle(sources ...Source) *Oracle {
	if len(sources) == 0 {
		sources = defaultSources()
	}

	return &Oracle{
		price:   defaultPrice,
		sources: sources,
	}
}

// Price returns the current QOR/USD price.
func (o *Oracle) Price() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.price
}

// LastUpdate returns when the price was last refreshed from the sources.
func (o *Oracle) LastUpdate() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.lastUpdate
}

// UpdatePrice requeries the sources and stores the weighted average of the
// ones that succeed. Calls within a minute of the last refresh are a no-op.
// A source failure reduces the weight but never fails the update. When every
// source fails the price and refresh time are left alone so the next call
// retries immediately.
func (o *Oracle) UpdatePrice(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if time.Since(o.lastUpdate) < updateEvery {
		return nil
	}

	var weightedSum float64
	var totalWeight float64

	for _, source := range o.sources {
		price, err := source.Price(ctx)
		if err != nil {
			continue
		}

		weightedSum += price * source.Weight()
		totalWeight += source.Weight()
	}

	if totalWeight > 0 {
		o.price = weightedSum / totalWeight
		o.lastUpdate = time.Now()
	}

	return nil
}

// CalculateFee prices a transaction of the specified class and priority.
// The USD fee is the class base times the priority multiplier, clamped to
// the fee band, and converted to QOR units at the current price.
func (o *Oracle) CalculateFee(class Class, priority Priority) (feeQOR uint64, feeUSD float64) {
	feeUSD = class.BaseUSD() * priority.Multiplier()

	if feeUSD < MinFeeUSD {
		feeUSD = MinFeeUSD
	}
	if feeUSD > MaxFeeUSD {
		feeUSD = MaxFeeUSD
	}

	return USDToQOR(feeUSD, o.Price()), feeUSD
}

// ValidateFee checks the paid QOR fee against the schedule for the class.
// The paid units are converted to USD at the current price so the check
// can't be satisfied by a declared figure the payment doesn't back.
func (o *Oracle) ValidateFee(class Class, feeQOR uint64) error {
	feeUSD := QORToUSD(feeQOR, o.Price())

	if required := class.BaseUSD(); feeUSD < required {
		return fmt.Errorf("Fee too low: $%.6f provided, $%.6f required", feeUSD, required)
	}

	if feeUSD > MaxFeeUSD {
		return fmt.Errorf("Fee too high: $%.6f provided, maximum is $%.6f", feeUSD, MaxFeeUSD)
	}

	return nil
}

// Estimates returns the fee for the class at every priority level.
func (o *Oracle) Estimates(class Class) []Estimate {
	priorities := Priorities()

	estimates := make([]Estimate, 0, len(priorities))
	for _, priority := range priorities {
		feeQOR, feeUSD := o.CalculateFee(class, priority)
		estimates = append(estimates, Estimate{
			Priority: priority,
			FeeUSD:   feeUSD,
			FeeQOR:   feeQOR,
		})
	}

	return estimates
}
