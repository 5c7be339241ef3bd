package form

import "sort"

// validCodes are the Eccairs-mapped field identifiers whose dropdown rows
// get their Eccairs value columns filled down.
var validCodes = [...]int{
	10, 11, 12, 14, 15, 17, 18, 19, 28, 29, 30, 94, 103, 104, 107, 108, 109, 117,
	119, 120, 122, 128, 130, 131, 142, 160, 168, 170, 206, 208, 209, 212, 214, 216,
	217, 220, 221, 222, 223, 224, 225, 226, 227, 228, 284, 292, 293, 311, 314, 315,
	316, 320, 325, 326, 371, 431, 980, 995, 1391, 1401, 1404, 1672, 1673, 1759, 2329,
	2440, 2472, 2473, 2485, 2486, 2500, 2502, 3282, 3708, 3709, 3875, 4240, 4243,
	4244, 4245, 5894, 5901, 5940, 7349, 8829, 8830, 9114, 9115, 9116, 9117, 9118, 9119,
	9120, 9121, 9122, 9126, 9127, 9128, 9129, 9130, 9135, 9136, 9137, 9138, 9139, 9140,
	9141, 9142, 9143, 9144, 9145, 9150, 9151, 9152, 9153, 9154, 9155, 9156, 9157, 9158,
	9179, 9180, 9181, 9189, 9191, 9192, 9201, 9202, 9203, 9204, 9205, 9206, 9207, 9208,
	9276, 9277, 9278, 9279, 9280, 9281, 9282, 9298, 9299, 9333, 9529, 9540, 9543, 9544,
	9552, 9557, 9565, 10614, 10618, 12739, 12960, 15463, 23157, 23159,
}

// CodeSet is a read-only set of integer identifier codes.
type CodeSet struct {
	members map[int]struct{}
}

// ValidCodes returns a fresh copy of the fixed valid code set.
func ValidCodes() CodeSet {
	members := make(map[int]struct{}, len(validCodes))
	for _, code := range validCodes {
		members[code] = struct{}{}
	}
	return CodeSet{members: members}
}

// EmptyCodes returns a set with no members.
func EmptyCodes() CodeSet {
	return CodeSet{}
}

// Contains reports membership; the zero value contains nothing.
func (s CodeSet) Contains(code int) bool {
	_, ok := s.members[code]
	return ok
}

// Len returns the number of codes in the set.
func (s CodeSet) Len() int {
	return len(s.members)
}

// Sorted returns the members in ascending order.
func (s CodeSet) Sorted() []int {
	out := make([]int, 0, len(s.members))
	for code := range s.members {
		out = append(out, code)
	}
	sort.Ints(out)
	return out
}
