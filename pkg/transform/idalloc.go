package transform

import "strconv"

// IDAlloc hands out element ids of the form kind-N. The zero value starts at
// 1. It is a value: Next returns the advanced allocator, and layout steps take
// one in and hand the advanced one back.
//
//	id, alloc = alloc.Next("uml-component")
type IDAlloc struct {
	issued int
}

// Next returns a fresh id and the advanced allocator.
func (a IDAlloc) Next(kind string) (string, IDAlloc) {
	a.issued++
	return kind + "-" + strconv.Itoa(a.issued), a
}

// Issued returns how many ids have been handed out.
func (a IDAlloc) Issued() int { return a.issued }
