package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LineItem field names accepted by WithField.
const (
	FieldItem     = "item"
	FieldPrice    = "price"
	FieldBudget   = "budget"
	FieldQuantity = "quantity"
)

// Quantity holds a line item quantity as entered. Stored documents may carry
// either a JSON number or a string, and invalid text is kept so totals can
// apply their fallback rule instead of failing the whole decode.
type Quantity string

// UnmarshalJSON accepts a number, a string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	*q = Quantity(n.String())
	return nil
}

// MarshalJSON writes a valid integer as a number and anything else as a string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(q))
	if n, err := strconv.Atoi(s); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(q))
}

// LineItem is one row of a project's purchase/cost list.
type LineItem struct {
	Item     string   `json:"item"`
	Price    string   `json:"price"`
	Budget   string   `json:"budget"`
	Quantity Quantity `json:"quantity"`
}

// Label returns the item name.
func (li LineItem) Label() string {
	return li.Item
}

// IsEmpty reports whether the row carries no user data. A quantity of 1 is
// the default for new rows and does not count as data.
func (li LineItem) IsEmpty() bool {
	q := strings.TrimSpace(string(li.Quantity))
	return strings.TrimSpace(li.Item) == "" &&
		strings.TrimSpace(li.Price) == "" &&
		strings.TrimSpace(li.Budget) == "" &&
		(q == "" || q == "1")
}

// Clone returns a copy of li. LineItem has no reference fields.
func (li LineItem) Clone() LineItem {
	return li
}

// Equal compares two rows field by field.
func (li LineItem) Equal(o LineItem) bool {
	return li == o
}

// WithField returns a copy of li with the named field set.
func (li LineItem) WithField(name, value string) (LineItem, bool) {
	out := li
	switch name {
	case FieldItem:
		out.Item = value
	case FieldPrice:
		out.Price = value
	case FieldBudget:
		out.Budget = value
	case FieldQuantity:
		out.Quantity = Quantity(value)
	default:
		return li, false
	}
	return out, true
}

// Field returns the text of the named field.
func (li LineItem) Field(name string) string {
	switch name {
	case FieldItem:
		return li.Item
	case FieldPrice:
		return li.Price
	case FieldBudget:
		return li.Budget
	case FieldQuantity:
		return string(li.Quantity)
	}
	return ""
}

// NewLineItem returns the blank row appended by the item editor.
func NewLineItem() LineItem {
	return LineItem{Quantity: "1"}
}
