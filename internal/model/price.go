package model

import (
	"github.com/shopspring/decimal"
)

// Price — цена товара, которая может отсутствовать
// в JSON пишется числом без кавычек (9.9), отсутствующая цена пишется как null
type Price struct {
	decimal.NullDecimal
}

// NewPrice создаёт заданную цену
func NewPrice(d decimal.Decimal) Price {
	return Price{NullDecimal: decimal.NewNullDecimal(d)}
}

// MarshalJSON пишет кратчайшее точное десятичное представление без кавычек
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON принимает число, строку с числом или null
func (p *Price) UnmarshalJSON(data []byte) error {
	return p.NullDecimal.UnmarshalJSON(data)
}
