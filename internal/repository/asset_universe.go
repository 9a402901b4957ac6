package repository

import "EdgeFinder/internal/domain/repository"

var fixedSymbols = []string{
	"NVDA", "MSFT", "AAPL", "AMZN", "GOOGL", "GOOG", "META", "TSLA", "AVGO", "COST",
	"AMD", "NFLX", "GOLD", "USTECH100", "SP500", "USOIL", "QQQ", "USDJPY", "EURUSD", "BTCUSD",
}

// FixedUniverse is the hard-coded list of instruments shown on the dashboard.
type FixedUniverse struct {
	symbols []string
	index   map[string]struct{}
}

func NewFixedUniverse() repository.AssetUniverse {
	index := make(map[string]struct{}, len(fixedSymbols))
	for _, s := range fixedSymbols {
		index[s] = struct{}{}
	}
	return &FixedUniverse{symbols: fixedSymbols, index: index}
}

// Symbols returns a copy in display order.
func (u *FixedUniverse) Symbols() []string {
	out := make([]string, len(u.symbols))
	copy(out, u.symbols)
	return out
}

func (u *FixedUniverse) Contains(symbol string) bool {
	_, ok := u.index[symbol]
	return ok
}
