package pbb

// TLVBlockEntry is a consumer's declared interest in one TLV type within
// a block: an optional type-extension match, a length constraint, and
// whether the entry must be satisfied for the block to be considered
// well-formed. Matched and Duplicates are populated fresh each time
// matchBlock runs the entry against a TLV-block.
type TLVBlockEntry struct {
	Type          uint8
	MatchTypeExt  bool
	TypeExt       uint8
	MinLength     int
	MaxLength     int
	MatchLength   bool // when true, only MinLength is honored as an exact match
	Mandatory     bool

	Matched    *TLV
	Duplicates int
}

func (e *TLVBlockEntry) reset() {
	e.Matched = nil
	e.Duplicates = 0
}

func (e *TLVBlockEntry) matches(t *TLV) bool {
	if e.Type != t.Type {
		return false
	}
	if e.MatchTypeExt && (!t.HasExt || t.TypeExt != e.TypeExt) {
		return false
	}
	if e.MatchLength && len(t.Value) != e.MinLength {
		return false
	}
	if !e.MatchLength {
		if e.MinLength > 0 && len(t.Value) < e.MinLength {
			return false
		}
		if e.MaxLength > 0 && len(t.Value) > e.MaxLength {
			return false
		}
	}
	return true
}

// matchBlock runs entries against tlvs, populating each entry's Matched/
// Duplicates, and reports whether every Mandatory entry was satisfied.
func matchBlock(entries []*TLVBlockEntry, tlvs []TLV) bool {
	for _, e := range entries {
		e.reset()
	}
	for i := range tlvs {
		t := &tlvs[i]
		for _, e := range entries {
			if !e.matches(t) {
				continue
			}
			if e.Matched == nil {
				e.Matched = t
			} else {
				e.Duplicates++
			}
		}
	}
	ok := true
	for _, e := range entries {
		if e.Mandatory && e.Matched == nil {
			ok = false
		}
	}
	return ok
}
