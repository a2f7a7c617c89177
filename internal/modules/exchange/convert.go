// README: Currency conversion and locale-aware formatting.
package exchange

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Convert turns a whole-USD total into code, rounded to the currency's minor units.
func Convert(totalUSD int64, code string, rates Rates) (decimal.Decimal, error) {
	unit, err := parseCode(code)
	if err != nil {
		return decimal.Zero, err
	}
	amount := decimal.NewFromInt(totalUSD)
	if unit.String() == Base {
		return amount, nil
	}
	rate, ok := rates.Values[unit.String()]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoRate, unit)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return amount.Mul(rate).Round(int32(scale)), nil
}

// Format renders amount with the currency symbol and the number grouping of lang.
func Format(amount decimal.Decimal, code, lang string) (string, error) {
	unit, err := parseCode(code)
	if err != nil {
		return "", err
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	return p.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64()))), nil
}

func parseCode(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return unit, nil
}
