package pbb

import (
	"github.com/oonf-go/oonf/netaddr"
)

// AddressBlock is one parsed run of addresses sharing a common head/tail.
// Addresses[i] carries its own PrefixLens[i].
type AddressBlock struct {
	Addresses  []netaddr.Addr
	PrefixLens []uint8
}

func familyForLen(addrLen int) netaddr.Family {
	switch addrLen {
	case 4:
		return netaddr.IPv4
	case 16:
		return netaddr.IPv6
	case 6:
		return netaddr.MAC48
	case 8:
		return netaddr.EUI64
	default:
		return netaddr.Unspec
	}
}

func parseAddressBlock(r *byteReader, addrLen int) (*AddressBlock, []TLV, error) {
	numAddr, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	flags, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}

	var head, tail []byte
	hasFullTail := flags&addrFlagHasFullTail != 0
	hasZeroTail := flags&addrFlagHasZeroTail != 0
	if hasFullTail && hasZeroTail {
		return nil, nil, newErr(ErrBadFlags, "address block sets both full-tail and zero-tail flags")
	}

	if flags&addrFlagHasHead != 0 {
		headLen, err := r.readByte()
		if err != nil {
			return nil, nil, err
		}
		if int(headLen) > addrLen {
			return nil, nil, newErr(ErrBadLength, "address block head length %d exceeds address length %d", headLen, addrLen)
		}
		head, err = r.readBytes(int(headLen))
		if err != nil {
			return nil, nil, err
		}
	}

	if hasFullTail || hasZeroTail {
		tailLen, err := r.readByte()
		if err != nil {
			return nil, nil, err
		}
		if int(tailLen) > addrLen-len(head) {
			return nil, nil, newErr(ErrBadLength, "address block tail length %d leaves no room for mid bytes", tailLen)
		}
		if hasFullTail {
			tail, err = r.readBytes(int(tailLen))
			if err != nil {
				return nil, nil, err
			}
		} else {
			tail = make([]byte, tailLen)
		}
	}

	midLen := addrLen - len(head) - len(tail)
	if midLen < 0 {
		return nil, nil, newErr(ErrBadLength, "address block head+tail exceeds address length")
	}

	ab := &AddressBlock{}
	for i := 0; i < int(numAddr); i++ {
		mid, err := r.readBytes(midLen)
		if err != nil {
			return nil, nil, err
		}
		full := make([]byte, 0, addrLen)
		full = append(full, head...)
		full = append(full, mid...)
		full = append(full, tail...)
		addr, err := netaddr.FromBytes(familyForLen(addrLen), full, uint8(addrLen*8))
		if err != nil {
			return nil, nil, newErr(ErrUnsupported, "address block: %v", err)
		}
		ab.Addresses = append(ab.Addresses, addr)
	}

	if flags&addrFlagHasPrefix != 0 {
		for i := 0; i < int(numAddr); i++ {
			p, err := r.readByte()
			if err != nil {
				return nil, nil, err
			}
			if int(p) > addrLen*8 {
				return nil, nil, newErr(ErrBadPrefix, "prefix length %d exceeds address bit length %d", p, addrLen*8)
			}
			ab.PrefixLens = append(ab.PrefixLens, p)
		}
	} else {
		for i := 0; i < int(numAddr); i++ {
			ab.PrefixLens = append(ab.PrefixLens, uint8(addrLen*8))
		}
	}
	for i := range ab.Addresses {
		ab.Addresses[i].PrefixLen = ab.PrefixLens[i]
	}

	tlvs, err := parseTLVBlock(r)
	if err != nil {
		return nil, nil, err
	}
	return ab, tlvs, nil
}

// writeAddressBlock emits addrs (which must all share addrLen's family)
// as one block, computing the common head/tail automatically and falling
// back to per-address mid bytes covering the whole address when no
// sharing exists.
func writeAddressBlock(buf *byteWriter, addrLen int, addrs []netaddr.Addr, prefixes []uint8, tlvs []TLV) error {
	if len(addrs) == 0 {
		return newErr(ErrEmpty, "address block has no addresses")
	}
	if len(addrs) > 0xFF {
		return newErr(ErrUnsupported, "address block holds %d addresses, limit is 255", len(addrs))
	}

	headLen := commonHeadLen(addrs, addrLen)
	tailLen := commonTailLen(addrs, addrLen, headLen)
	midLen := addrLen - headLen - tailLen

	var flags byte
	if headLen > 0 {
		flags |= addrFlagHasHead
	}
	if tailLen > 0 {
		flags |= addrFlagHasFullTail
	}
	allDefaultPrefix := true
	for i, p := range prefixes {
		if int(p) != addrLen*8 {
			allDefaultPrefix = false
		}
		_ = i
	}
	if !allDefaultPrefix {
		flags |= addrFlagHasPrefix
	}

	buf.writeByte(byte(len(addrs)))
	buf.writeByte(flags)

	first := addrs[0].Bytes()
	if headLen > 0 {
		buf.writeByte(byte(headLen))
		buf.writeBytes(first[:headLen])
	}
	if tailLen > 0 {
		buf.writeByte(byte(tailLen))
		buf.writeBytes(first[addrLen-tailLen:])
	}
	for _, a := range addrs {
		b := a.Bytes()
		buf.writeBytes(b[headLen : headLen+midLen])
	}
	if !allDefaultPrefix {
		for _, p := range prefixes {
			buf.writeByte(p)
		}
	}

	return writeTLVBlock(buf, tlvs)
}

func commonHeadLen(addrs []netaddr.Addr, addrLen int) int {
	if len(addrs) < 2 {
		return 0
	}
	first := addrs[0].Bytes()
	n := 0
	for ; n < addrLen; n++ {
		for _, a := range addrs[1:] {
			if a.Bytes()[n] != first[n] {
				return n
			}
		}
	}
	return n
}

func commonTailLen(addrs []netaddr.Addr, addrLen, headLen int) int {
	if len(addrs) < 2 {
		return 0
	}
	first := addrs[0].Bytes()
	n := 0
	for ; n < addrLen-headLen; n++ {
		idx := addrLen - 1 - n
		for _, a := range addrs[1:] {
			if a.Bytes()[idx] != first[idx] {
				return n
			}
		}
	}
	return n
}
