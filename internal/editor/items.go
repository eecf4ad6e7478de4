package editor

import (
	"fmt"
	"strings"

	"github.com/hy4ri/shopfloor/internal/autosave"
	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/store"
)

// Items edits a project's line items.
type Items struct {
	base[model.LineItem]
}

// NewItems returns a line item editor that saves through st.
func NewItems(st store.Store, opts autosave.Options) *Items {
	p := autosave.PersistFunc[model.LineItem](st.SaveItems)
	return &Items{base[model.LineItem]{
		Session: autosave.New[model.LineItem](p, opts),
		load:    st.Items,
		kind:    "items",
	}}
}

// Add appends an empty line item and returns its index.
func (e *Items) Add() (int, bool) {
	return e.Append(model.NewLineItem())
}

// Set changes one field of the line item at index.
func (e *Items) Set(index int, field, value string) bool {
	return e.UpdateField(index, field, value)
}

// Total is the sum of price times quantity over the current rows.
func (e *Items) Total() lists.Money {
	return lists.Total(e.Items())
}

// BudgetTotal is the sum of budget times quantity over the current rows.
func (e *Items) BudgetTotal() lists.Money {
	return lists.BudgetTotal(e.Items())
}

// Variance is the budget total minus the total.
func (e *Items) Variance() lists.Money {
	return lists.Variance(e.Items())
}

// Text renders the rows and totals as tab-separated text.
func (e *Items) Text() string {
	return ItemsText(e.Items())
}

// ItemsText renders line items as tab-separated rows followed by the totals.
func ItemsText(items []model.LineItem) string {
	var b strings.Builder
	b.WriteString("Item\tPrice\tBudget\tQty\tLine total\n")
	for _, li := range lists.TrimEmpty(items) {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%d\t%s\n",
			li.Item, li.Price, li.Budget, lists.ParseQuantity(li.Quantity), lists.LineTotal(li))
	}
	fmt.Fprintf(&b, "Total\t\t\t\t%s\n", lists.Total(items))
	fmt.Fprintf(&b, "Budget\t\t\t\t%s\n", lists.BudgetTotal(items))
	return b.String()
}
