// Package values holds the lookup-table value types exchange clients
// consume: currencies and markets keyed by normalized codes. The
// concrete tables belong to each exchange client; this package only
// supplies the types and the lookup rules.
package values

import (
	"fmt"
	"strings"
)

// Currency describes one asset as an exchange reports it.
type Currency struct {
	Code        string
	DisplayCode string
	Decimals    int
}

// CurrencySet maps normalized codes to currencies.
type CurrencySet map[string]Currency

// NewCurrencySet builds a set keyed by each currency's normalized
// code. A currency without a DisplayCode gets its Code; Decimals
// defaults to 2.
func NewCurrencySet(currencies ...Currency) CurrencySet {
	set := make(CurrencySet, len(currencies))
	for _, c := range currencies {
		if c.DisplayCode == "" {
			c.DisplayCode = c.Code
		}
		if c.Decimals == 0 {
			c.Decimals = 2
		}
		set[normalizeCode(c.Code)] = c
	}
	return set
}

// Lookup finds a currency by name, case-insensitively. Unknown names
// fail loudly; there is no silent default.
func (s CurrencySet) Lookup(name string) (Currency, error) {
	c, ok := s[normalizeCode(name)]
	if !ok {
		return Currency{}, fmt.Errorf("unknown currency %q", name)
	}
	return c, nil
}

func normalizeCode(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
