// Package lists implements the structural edits and derived values of the
// project editors. Every operation is copy-on-write: the input slice and its
// records are never modified.
package lists

import "strings"

// Record is the shape shared by every list the editors manage.
type Record[R any] interface {
	// Label is the primary text field; a blank label marks an unfinished row.
	Label() string
	// IsEmpty reports whether the record carries no user data at all.
	IsEmpty() bool
	Clone() R
	Equal(R) bool
	WithField(name, value string) (R, bool)
}

// Clone deep-copies a list.
func Clone[R Record[R]](list []R) []R {
	if list == nil {
		return nil
	}
	out := make([]R, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

// IsBlank reports whether a label is empty or whitespace.
func IsBlank(label string) bool {
	return strings.TrimSpace(label) == ""
}

// Append adds def to the end of list and returns the new list and the index
// of the appended record. It refuses (ok == false) when the current last
// record still has a blank label, so the editor never grows a run of empty
// rows.
func Append[R Record[R]](list []R, def R) (out []R, index int, ok bool) {
	if n := len(list); n > 0 && IsBlank(list[n-1].Label()) {
		return list, -1, false
	}
	out = make([]R, len(list), len(list)+1)
	copy(out, list)
	out = append(out, def.Clone())
	return out, len(out) - 1, true
}

// Update replaces the record at index with fn(record). The record passed to
// fn is a private clone.
func Update[R Record[R]](list []R, index int, fn func(R) R) ([]R, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	out := make([]R, len(list))
	copy(out, list)
	out[index] = fn(list[index].Clone())
	return out, true
}

// UpdateField sets one named field on the record at index.
func UpdateField[R Record[R]](list []R, index int, name, value string) ([]R, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	rec, ok := list[index].WithField(name, value)
	if !ok {
		return list, false
	}
	out := make([]R, len(list))
	copy(out, list)
	out[index] = rec
	return out, true
}

// Remove deletes the record at index.
func Remove[R Record[R]](list []R, index int) ([]R, bool) {
	if index < 0 || index >= len(list) {
		return list, false
	}
	out := make([]R, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return out, true
}

// TrimEmpty drops trailing records that carry no user data.
func TrimEmpty[R Record[R]](list []R) []R {
	n := len(list)
	for n > 0 && list[n-1].IsEmpty() {
		n--
	}
	return list[:n]
}

// Equal compares two lists record by record.
func Equal[R Record[R]](a, b []R) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// SameContent reports whether two lists hold the same user data, ignoring
// trailing empty rows on either side.
func SameContent[R Record[R]](a, b []R) bool {
	return Equal(TrimEmpty(a), TrimEmpty(b))
}
