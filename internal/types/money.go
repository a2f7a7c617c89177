// README: Common money and identifier value objects used across modules.
package types

// USD is the currency every computed quote is priced in.
const USD = "USD"

type ID string

type Money struct {
    Amount   int64  `json:"amount"`
    Currency string `json:"currency"`
}

func NewUSD(amount int64) Money {
    return Money{Amount: amount, Currency: USD}
}
