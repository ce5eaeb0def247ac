package pbb

// Packet is one parsed RFC 5444 packet: header fields plus the messages
// it carries.
type Packet struct {
	Version  uint8
	HasSeqNo bool
	SeqNo    uint16
	TLVs     []TLV
	Messages []*Message
}

func parsePacket(data []byte) (*Packet, error) {
	r := &byteReader{data: data}
	versionAndFlags, err := r.readByte()
	if err != nil {
		return nil, err
	}
	version := versionAndFlags >> 4
	flags := versionAndFlags & 0x0F

	p := &Packet{Version: version}

	if flags&packetFlagHasSeqNo != 0 {
		seq, err := r.readUint16()
		if err != nil {
			return nil, err
		}
		p.HasSeqNo = true
		p.SeqNo = seq
	}
	if flags&packetFlagHasTLV != 0 {
		tlvs, err := parseTLVBlock(r)
		if err != nil {
			return nil, err
		}
		p.TLVs = tlvs
	}

	for r.remaining() > 0 {
		msg, _, err := parseMessage(r)
		if err != nil {
			return nil, err
		}
		p.Messages = append(p.Messages, msg)
	}
	return p, nil
}

// packetHeader renders the packet header (version/flags, optional seqno,
// optional TLV-block) ahead of a run of message bytes.
func packetHeader(version uint8, seqNo uint16, hasSeqNo bool, tlvs []TLV) ([]byte, error) {
	w := &byteWriter{}
	var flags byte
	if hasSeqNo {
		flags |= packetFlagHasSeqNo
	}
	if len(tlvs) > 0 {
		flags |= packetFlagHasTLV
	}
	w.writeByte(version<<4 | flags)
	if hasSeqNo {
		w.writeUint16(seqNo)
	}
	if len(tlvs) > 0 {
		if err := writeTLVBlock(w, tlvs); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
