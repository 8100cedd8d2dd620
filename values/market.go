package values

import (
	"fmt"
	"strings"
)

// Market describes one trading pair: the exchange's code for it plus
// the base and quote currency codes.
type Market struct {
	Code  string
	Base  string
	Quote string
}

// MarketSet maps normalized pair keys ("BTC_USD") to markets.
type MarketSet map[string]Market

// NewMarketSet builds a set keyed by each market's normalized code.
func NewMarketSet(markets ...Market) MarketSet {
	set := make(MarketSet, len(markets))
	for _, m := range markets {
		key, err := normalizePair(m.Code)
		if err != nil {
			key = strings.ToUpper(m.Code)
		}
		set[key] = m
	}
	return set
}

// Lookup finds a market by pair name. Names are normalized the way
// exchanges write them: "btcusd", "BTC-USD" and "BTC_USD" all resolve
// to the same market. Unknown pairs fail loudly.
func (s MarketSet) Lookup(name string) (Market, error) {
	key, err := normalizePair(name)
	if err != nil {
		return Market{}, err
	}
	m, ok := s[key]
	if !ok {
		return Market{}, fmt.Errorf("unknown market %q", name)
	}
	return m, nil
}

// ParseMarket splits a six-character pair code into 3-letter base and
// quote codes ("btcusd" -> BTC/USD). Separators '-' and '_' are
// stripped first.
func ParseMarket(code string) (Market, error) {
	s := stripSeparators(code)
	if len(s) != 6 {
		return Market{}, fmt.Errorf("market code %q is not a six-character pair", code)
	}
	s = strings.ToUpper(s)
	return Market{
		Code:  s[:3] + "_" + s[3:],
		Base:  s[:3],
		Quote: s[3:],
	}, nil
}

// normalizePair produces the canonical "BAS_QTE" key for a pair name.
func normalizePair(name string) (string, error) {
	m, err := ParseMarket(name)
	if err != nil {
		return "", err
	}
	return m.Code, nil
}

func stripSeparators(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
