package domain

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// CurrencyCNY est la devise de tous les montants du grand livre
const CurrencyCNY = "CNY"

// Money représente une valeur monétaire avec garanties d'invariants
type Money struct {
	amount   decimal.Decimal
	currency string
}

// Yuan crée un montant en CNY; les montants négatifs sont ramenés à zéro
func Yuan(amount float64) Money {
	if amount < 0 {
		amount = 0
	}
	return Money{amount: decimal.NewFromFloat(amount), currency: CurrencyCNY}
}

// Amount retourne le montant
func (m Money) Amount() float64 {
	return m.amount.InexactFloat64()
}

// Per répartit le montant sur n parts; zéro si n ≤ 0
func (m Money) Per(n int) Money {
	if n <= 0 {
		return Money{amount: decimal.Zero, currency: m.currency}
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(n))), currency: m.currency}
}

// DivideBy retourne le ratio m / other, 0 si other est nul
func (m Money) DivideBy(other Money) float64 {
	if other.amount.IsZero() {
		return 0
	}
	return m.amount.Div(other.amount).InexactFloat64()
}

// Rounded retourne le montant arrondi au centime
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(2), currency: m.currency}
}

// String formate le montant comme le tableau de bord: deux décimales suivies de 元
func (m Money) String() string {
	return m.amount.StringFixed(2) + "元"
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MarshalJSON sérialise le montant avec sa devise
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.Round(2), Currency: m.currency})
}

// UnmarshalJSON relit un montant sérialisé par MarshalJSON
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Amount.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	m.amount = raw.Amount
	m.currency = raw.Currency
	return nil
}

// FormatCurrency formate un montant brut en "1234.50元"
func FormatCurrency(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2) + "元"
}

// Round2 arrondit une valeur à deux décimales (arrondi commercial)
func Round2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
