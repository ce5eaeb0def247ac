package pbb

// TLV is one parsed Type/Length/Value record from a TLV-block, with
// optional extended type, multivalue indexing, and value bytes.
type TLV struct {
	Type    uint8
	HasExt  bool
	TypeExt uint8

	HasIndex  bool
	IndexFrom uint8
	IndexTo   uint8

	Multivalue bool
	Value      []byte
}

// SingleIndexed reports whether the TLV specifies a single address index
// rather than a range (IndexFrom == IndexTo).
func (t *TLV) SingleIndexed() bool {
	return t.HasIndex && t.IndexFrom == t.IndexTo
}

// ValueAt returns the part of Value belonging to address index addrIndex.
// A TLV without index fields yields its whole Value, with ok true only for
// addrIndex 0. For an indexed TLV, ok is false when addrIndex lies outside
// [IndexFrom, IndexTo]; inside it, a single-value TLV yields its whole
// Value and a multivalue TLV yields the addrIndex'th equal-length slice
// (ok is false if Value's length is not a multiple of the index span).
// ok is also false if the TLV has no value.
func (t *TLV) ValueAt(addrIndex uint8) (value []byte, ok bool) {
	if len(t.Value) == 0 {
		return nil, false
	}
	if !t.HasIndex {
		return t.Value, addrIndex == 0
	}
	if addrIndex < t.IndexFrom || addrIndex > t.IndexTo {
		return nil, false
	}
	span := int(t.IndexTo-t.IndexFrom) + 1
	if !t.Multivalue {
		return t.Value, true
	}
	if len(t.Value)%span != 0 {
		return nil, false
	}
	elemLen := len(t.Value) / span
	off := int(addrIndex-t.IndexFrom) * elemLen
	return t.Value[off : off+elemLen], true
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) remaining() int { return len(r.data) - r.pos }

func (r *byteReader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, newErr(ErrEndOfBuffer, "expected 1 byte, %d remaining", r.remaining())
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readUint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, newErr(ErrEndOfBuffer, "expected 2 bytes, %d remaining", r.remaining())
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *byteReader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, newErr(ErrEndOfBuffer, "expected %d bytes, %d remaining", n, r.remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// parseTLVBlock reads a <size:u16> prefixed run of TLVs.
func parseTLVBlock(r *byteReader) ([]TLV, error) {
	size, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(size) {
		return nil, newErr(ErrEndOfBuffer, "tlv-block declares %d bytes, %d remaining", size, r.remaining())
	}
	block := &byteReader{data: r.data[r.pos : r.pos+int(size)]}
	r.pos += int(size)

	var tlvs []TLV
	for block.remaining() > 0 {
		tlv, err := parseTLV(block)
		if err != nil {
			return nil, err
		}
		tlvs = append(tlvs, tlv)
	}
	return tlvs, nil
}

func parseTLV(r *byteReader) (TLV, error) {
	var t TLV
	typ, err := r.readByte()
	if err != nil {
		return t, err
	}
	flags, err := r.readByte()
	if err != nil {
		return t, err
	}
	t.Type = typ

	if flags&tlvFlagHasTypeExt != 0 {
		ext, err := r.readByte()
		if err != nil {
			return t, err
		}
		t.HasExt = true
		t.TypeExt = ext
	}

	hasSingle := flags&tlvFlagHasSingleIndex != 0
	hasMulti := flags&tlvFlagHasMultiIndex != 0
	if hasSingle && hasMulti {
		return t, newErr(ErrBadFlags, "tlv type %d sets both single and multi index flags", typ)
	}
	if hasSingle {
		idx, err := r.readByte()
		if err != nil {
			return t, err
		}
		t.HasIndex = true
		t.IndexFrom, t.IndexTo = idx, idx
	} else if hasMulti {
		from, err := r.readByte()
		if err != nil {
			return t, err
		}
		to, err := r.readByte()
		if err != nil {
			return t, err
		}
		if to < from {
			return t, newErr(ErrBadFlags, "tlv type %d has index_stop %d < index_start %d", typ, to, from)
		}
		t.HasIndex = true
		t.IndexFrom, t.IndexTo = from, to
	}

	t.Multivalue = flags&tlvFlagMultivalue != 0
	if t.Multivalue && !t.HasIndex {
		return t, newErr(ErrBadFlags, "tlv type %d is multivalue without an index", typ)
	}

	if flags&tlvFlagHasValue != 0 {
		var length int
		if flags&tlvFlagExtendedLength != 0 {
			l, err := r.readUint16()
			if err != nil {
				return t, err
			}
			length = int(l)
		} else {
			l, err := r.readByte()
			if err != nil {
				return t, err
			}
			length = int(l)
		}
		if t.HasIndex {
			span := int(t.IndexTo-t.IndexFrom) + 1
			if t.Multivalue && length%span != 0 {
				return t, newErr(ErrBadLength, "tlv type %d value length %d not a multiple of index span %d", typ, length, span)
			}
		}
		value, err := r.readBytes(length)
		if err != nil {
			return t, err
		}
		t.Value = value
	} else if flags&tlvFlagExtendedLength != 0 {
		return t, newErr(ErrBadFlags, "tlv type %d sets extended_length without has_value", typ)
	}

	return t, nil
}

// writeTLVBlock serializes tlvs with a leading <size:u16>.
func writeTLVBlock(buf *byteWriter, tlvs []TLV) error {
	inner := &byteWriter{}
	for _, t := range tlvs {
		if err := writeTLV(inner, t); err != nil {
			return err
		}
	}
	if inner.Len() > 0xFFFF {
		return newErr(ErrMtu, "tlv-block of %d bytes exceeds u16 size field", inner.Len())
	}
	buf.writeUint16(uint16(inner.Len()))
	buf.writeBytes(inner.Bytes())
	return nil
}

func writeTLV(buf *byteWriter, t TLV) error {
	var flags byte
	if t.HasExt {
		flags |= tlvFlagHasTypeExt
	}
	if t.HasIndex {
		if t.IndexFrom == t.IndexTo {
			flags |= tlvFlagHasSingleIndex
		} else {
			flags |= tlvFlagHasMultiIndex
		}
	}
	if t.Multivalue {
		flags |= tlvFlagMultivalue
	}
	extended := len(t.Value) > 0xFF
	if len(t.Value) > 0 {
		flags |= tlvFlagHasValue
		if extended {
			flags |= tlvFlagExtendedLength
		}
	}

	buf.writeByte(t.Type)
	buf.writeByte(flags)
	if t.HasExt {
		buf.writeByte(t.TypeExt)
	}
	if t.HasIndex {
		if t.IndexFrom == t.IndexTo {
			buf.writeByte(t.IndexFrom)
		} else {
			buf.writeByte(t.IndexFrom)
			buf.writeByte(t.IndexTo)
		}
	}
	if len(t.Value) > 0 {
		if extended {
			if len(t.Value) > 0xFFFF {
				return newErr(ErrBadLength, "tlv type %d value of %d bytes exceeds u16 length field", t.Type, len(t.Value))
			}
			buf.writeUint16(uint16(len(t.Value)))
		} else {
			buf.writeByte(byte(len(t.Value)))
		}
		buf.writeBytes(t.Value)
	}
	return nil
}
