package model

import "golang.org/x/text/unicode/norm"

// Find returns the first entity whose ID equals id.
// A nil or empty collection, or no match, returns the zero value and false.
//
// IDs are unique by convention only; with duplicates the earliest wins.
func Find[E Identified](items []E, id string) (E, bool) {
	for _, item := range items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// FindParameter is Find for parameters, returning nil when absent.
func FindParameter(items []*Parameter, id string) *Parameter {
	p, _ := Find(items, id)
	return p
}

// FindPart is Find for parts, returning nil when absent.
func FindPart(items []*Part, id string) *Part {
	p, _ := Find(items, id)
	return p
}

// FindDrawable is Find for drawables, returning nil when absent.
func FindDrawable(items []*Drawable, id string) *Drawable {
	d, _ := Find(items, id)
	return d
}

// NormalizeID returns the NFC form of an identifier.
// Loaders normalize IDs read from files so lookups compare equal code points.
func NormalizeID(id string) string {
	return norm.NFC.String(id)
}
