package lists

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hy4ri/shopfloor/internal/model"
)

// Money is an amount in cents.
type Money int64

// String formats m with two decimals, e.g. "-12.05".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Float returns m in whole currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// ParseMoney parses a decimal string such as "1,250.50" or "$19.99".
// Unparseable or empty input is 0. Fractions of a cent are rounded half
// away from zero.
func ParseMoney(s string) Money {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.ContainsAny(s, "/xXeE") {
		return 0
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0
	}
	n := new(big.Int).Mul(r.Num(), big.NewInt(100))
	den := r.Denom()
	q, rem := new(big.Int).QuoRem(n, den, new(big.Int))
	if new(big.Int).Abs(rem).Cmp(new(big.Int).Rsh(new(big.Int).Add(den, big.NewInt(1)), 1)) >= 0 {
		if n.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return 0
	}
	return Money(q.Int64())
}

// ParseQuantity parses a quantity. Empty, non-integer, zero or negative
// input counts as 1.
func ParseQuantity(q model.Quantity) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(q)), 10, 64)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// LineTotal is price × quantity for one row.
func LineTotal(li model.LineItem) Money {
	return ParseMoney(li.Price) * Money(ParseQuantity(li.Quantity))
}

// Total sums price × quantity over all rows. Rows are never dropped: a bad
// price contributes 0 and a bad quantity counts as 1.
func Total(items []model.LineItem) Money {
	var sum Money
	for _, li := range items {
		sum += LineTotal(li)
	}
	return sum
}

// BudgetTotal sums budget × quantity over all rows.
func BudgetTotal(items []model.LineItem) Money {
	var sum Money
	for _, li := range items {
		sum += ParseMoney(li.Budget) * Money(ParseQuantity(li.Quantity))
	}
	return sum
}

// Variance is the budget total minus the spend total; negative means over budget.
func Variance(items []model.LineItem) Money {
	return BudgetTotal(items) - Total(items)
}
