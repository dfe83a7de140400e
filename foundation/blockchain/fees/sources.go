package fees

import (
	"context"
)

// The production deployment points these sources at real market data. Until
// those feeds are provisioned they report the reference price so the node
// can run self contained.

// StaticSource is a fixed price source. It backs the built in feeds and is
// handy in tests.
type StaticSource struct {
	SourceName   string
	SourceWeight float64
	SourcePrice  float64
	Err          error
}

// Name returns the name of the source.
func (s StaticSource) Name() string { return s.SourceName }

// Weight returns the weight of the source in the weighted average.
func (s StaticSource) Weight() float64 { return s.SourceWeight }

// Price returns the configured price or the configured error.
func (s StaticSource) Price(ctx context.Context) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.SourcePrice, nil
}

// defaultSources returns the built in weighted feed set.
func defaultSources() []Source {
	return []Source{
		StaticSource{SourceName: "coingecko", SourceWeight: 0.4, SourcePrice: defaultPrice},
		StaticSource{SourceName: "coinmarketcap", SourceWeight: 0.4, SourcePrice: defaultPrice},
		StaticSource{SourceName: "internal-dex", SourceWeight: 0.2, SourcePrice: defaultPrice},
	}
}
