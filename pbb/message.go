package pbb

import "github.com/oonf-go/oonf/netaddr"

// Message is one parsed RFC 5444 message: header fields, the message
// TLV-block, and the address blocks (with their own TLV-blocks) that
// follow it.
type Message struct {
	Type         uint8
	AddrLen      int // bytes per address, decoded from addr_len_minus_one
	HasOriginator bool
	Originator   netaddr.Addr
	HasHopLimit  bool
	HopLimit     uint8
	HasHopCount  bool
	HopCount     uint8
	HasSeqNo     bool
	SeqNo        uint16

	TLVs []TLV

	AddressBlocks []*AddressBlock
	// AddressTLVs[i] holds the TLV-block following AddressBlocks[i].
	AddressTLVs [][]TLV

	// raw holds the exact bytes this message was parsed from, needed by
	// the forwarding hook to retransmit an unmodified tail after
	// hop-limit/hop-count fixups.
	raw []byte
}

func parseMessage(r *byteReader) (*Message, []byte, error) {
	startPos := r.pos
	typ, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	flagsAndAddrLen, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	size, err := r.readUint16()
	if err != nil {
		return nil, nil, err
	}
	if r.remaining() < int(size)-4 {
		return nil, nil, newErr(ErrEndOfBuffer, "message declares %d bytes, %d remaining", size, r.remaining()+4)
	}

	msgEnd := startPos + int(size)
	body := &byteReader{data: r.data[:msgEnd], pos: r.pos}
	r.pos = msgEnd

	flags := flagsAndAddrLen >> 4
	addrLen := int(flagsAndAddrLen&0x0F) + 1

	m := &Message{Type: typ, AddrLen: addrLen}

	if flags&msgFlagOriginator != 0 {
		b, err := body.readBytes(addrLen)
		if err != nil {
			return nil, nil, err
		}
		addr, err := netaddr.FromBytes(familyForLen(addrLen), b, uint8(addrLen*8))
		if err != nil {
			return nil, nil, newErr(ErrUnsupported, "message originator: %v", err)
		}
		m.HasOriginator = true
		m.Originator = addr
	}
	if flags&msgFlagHopLimit != 0 {
		v, err := body.readByte()
		if err != nil {
			return nil, nil, err
		}
		m.HasHopLimit = true
		m.HopLimit = v
	}
	if flags&msgFlagHopCount != 0 {
		v, err := body.readByte()
		if err != nil {
			return nil, nil, err
		}
		m.HasHopCount = true
		m.HopCount = v
	}
	if flags&msgFlagSeqNo != 0 {
		v, err := body.readUint16()
		if err != nil {
			return nil, nil, err
		}
		m.HasSeqNo = true
		m.SeqNo = v
	}

	tlvs, err := parseTLVBlock(body)
	if err != nil {
		return nil, nil, err
	}
	m.TLVs = tlvs

	for body.remaining() > 0 {
		ab, abTLVs, err := parseAddressBlock(body, addrLen)
		if err != nil {
			return nil, nil, err
		}
		m.AddressBlocks = append(m.AddressBlocks, ab)
		m.AddressTLVs = append(m.AddressTLVs, abTLVs)
	}

	m.raw = append([]byte(nil), r.data[startPos:msgEnd]...)
	return m, m.raw, nil
}

// MessageBuilder accumulates a message's header fields and content, for
// handoff to the writer's assembly pipeline.
type MessageBuilder struct {
	Type          uint8
	AddrLen       int
	HasOriginator bool
	Originator    netaddr.Addr
	HasHopLimit   bool
	HopLimit      uint8
	HasHopCount   bool
	HopCount      uint8
	HasSeqNo      bool
	SeqNo         uint16
	TLVs          []TLV

	addrs     []netaddr.Addr
	prefixes  []uint8
	addrTLVs  [][]TLV
}

// AddAddress registers one address (with its per-address TLVs) to be
// emitted in this message's address block. Every address added to a
// builder goes into one address block, whose shared head/tail bytes
// writeAddressBlock compresses; the writer never splits a message's
// addresses across packets.
func (mb *MessageBuilder) AddAddress(addr netaddr.Addr, tlvs []TLV) {
	mb.addrs = append(mb.addrs, addr)
	mb.prefixes = append(mb.prefixes, addr.PrefixLen)
	mb.addrTLVs = append(mb.addrTLVs, tlvs)
}

func (mb *MessageBuilder) build() ([]byte, error) {
	body := &byteWriter{}

	var flags byte
	if mb.HasOriginator {
		flags |= msgFlagOriginator
	}
	if mb.HasHopLimit {
		flags |= msgFlagHopLimit
	}
	if mb.HasHopCount {
		flags |= msgFlagHopCount
	}
	if mb.HasSeqNo {
		flags |= msgFlagSeqNo
	}

	if mb.HasOriginator {
		body.writeBytes(mb.Originator.Bytes())
	}
	if mb.HasHopLimit {
		body.writeByte(mb.HopLimit)
	}
	if mb.HasHopCount {
		body.writeByte(mb.HopCount)
	}
	if mb.HasSeqNo {
		body.writeUint16(mb.SeqNo)
	}

	if err := writeTLVBlock(body, mb.TLVs); err != nil {
		return nil, err
	}

	if len(mb.addrs) > 0 {
		if err := writeAddressBlock(body, mb.AddrLen, mb.addrs, mb.prefixes, flattenAddrTLVs(mb.addrTLVs)); err != nil {
			return nil, err
		}
	}

	total := 4 + body.Len()
	if total > 0xFFFF {
		return nil, newErr(ErrMtu, "message of %d bytes exceeds u16 size field", total)
	}

	header := &byteWriter{}
	header.writeByte(mb.Type)
	header.writeByte((flags << 4) | byte(mb.AddrLen-1))
	header.writeUint16(uint16(total))
	header.writeBytes(body.Bytes())
	return header.Bytes(), nil
}

// flattenAddrTLVs concatenates one address's worth of TLVs at a time into
// the address block's TLV list. A TLV given without index fields is bound
// to its own address by a single index, so the reader attributes it to
// that address. TLVs of the same type are not merged into multivalue
// TLVs, which is wire-valid though less compact than the original's
// address-tlv compression pass.
func flattenAddrTLVs(perAddr [][]TLV) []TLV {
	var out []TLV
	for i, tlvs := range perAddr {
		for _, t := range tlvs {
			if !t.HasIndex {
				t.HasIndex = true
				t.IndexFrom, t.IndexTo = uint8(i), uint8(i)
			}
			out = append(out, t)
		}
	}
	return out
}
