package domain

import (
	"strconv"
	"strings"
)

// Item is one line of the specific-items list.
type Item struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Items is an ordered list with unique labels and positive quantities.
// Mutations return a new list and leave the receiver untouched.
type Items []Item

// CatalogItems are the items offered on the items step.
var CatalogItems = []string{
	"سرير", "دولاب", "كنبة", "طاولة طعام", "كراسي", "ثلاجة",
	"فريزر", "غسالة", "نشافة", "تلفزيون", "مكتب", "كراتين",
}

// Quantity returns the quantity for label, or 0.
func (l Items) Quantity(label string) int {
	for _, it := range l {
		if it.Item == label {
			return it.Quantity
		}
	}
	return 0
}

// Increment adds one unit of label, appending a new entry when absent.
func (l Items) Increment(label string) Items {
	label = strings.TrimSpace(label)
	if label == "" {
		return l
	}
	out := append(Items(nil), l...)
	for i := range out {
		if out[i].Item == label {
			out[i].Quantity++
			return out
		}
	}
	return append(out, Item{Item: label, Quantity: 1})
}

// Decrement removes one unit of label and drops the entry at zero.
func (l Items) Decrement(label string) Items {
	out := make(Items, 0, len(l))
	for _, it := range l {
		if it.Item == label {
			it.Quantity--
			if it.Quantity <= 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// TotalUnits sums the quantities.
func (l Items) TotalUnits() int {
	total := 0
	for _, it := range l {
		total += it.Quantity
	}
	return total
}

// String renders "label: qty" pairs joined by ", ".
func (l Items) String() string {
	parts := make([]string, 0, len(l))
	for _, it := range l {
		parts = append(parts, it.Item+": "+strconv.Itoa(it.Quantity))
	}
	return strings.Join(parts, ", ")
}
