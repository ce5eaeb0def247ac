package pbb

import (
	"github.com/oonf-go/oonf/metrics"
	"github.com/oonf-go/oonf/netaddr"
)

// PacketConsumer observes an entire parsed packet.
type PacketConsumer struct {
	Start                          func(p *Packet) Disposition
	TLVCallback                    func(p *Packet, t TLV) Disposition
	End                            func(p *Packet, disposition Disposition) Disposition
	Entries                        []*TLVBlockEntry
	BlockCallback                  func(p *Packet) Disposition
	BlockCallbackFailedConstraints func(p *Packet) Disposition
}

// MessageConsumer observes messages, optionally restricted to MsgType.
type MessageConsumer struct {
	MsgType                        *uint8
	Start                          func(m *Message) Disposition
	TLVCallback                    func(m *Message, t TLV) Disposition
	End                            func(m *Message, disposition Disposition) Disposition
	Entries                        []*TLVBlockEntry
	BlockCallback                  func(m *Message) Disposition
	BlockCallbackFailedConstraints func(m *Message) Disposition
}

// AddressConsumer observes individual addresses within a message's
// address blocks, optionally restricted to MsgType, ordered by Priority
// ascending among consumers registered for the same message type.
type AddressConsumer struct {
	MsgType                        *uint8
	Priority                       int
	TLVCallback                    func(m *Message, addr netaddr.Addr, t TLV) Disposition
	Entries                        []*TLVBlockEntry
	BlockCallback                  func(m *Message, addr netaddr.Addr) Disposition
	BlockCallbackFailedConstraints func(m *Message, addr netaddr.Addr) Disposition
}

// Reader parses RFC 5444 packets and dispatches to registered consumers
// in order: packet, then each message, then each message's addresses,
// visiting the address consumers whose MsgType matches in Priority order.
type Reader struct {
	PacketConsumers  []*PacketConsumer
	MessageConsumers []*MessageConsumer
	AddressConsumers []*AddressConsumer

	// ForwardMessage is invoked when a message's End callback returns
	// DropMsgButForward, with the original bytes (the hop-limit/hop-count
	// fixup is the caller's responsibility via ForwardMessage, since only
	// the host knows whether those fields are present at all).
	ForwardMessage func(raw []byte, m *Message)
}

// AddMessageConsumer appends c to MessageConsumers; message consumers run
// in registration order.
func (r *Reader) AddMessageConsumer(c *MessageConsumer) {
	r.MessageConsumers = append(r.MessageConsumers, c)
}

// AddAddressConsumer registers c, re-sorting AddressConsumers by Priority
// (stable, so registration order breaks ties). MsgType is not a sort key;
// it only selects which messages a consumer sees.
func (r *Reader) AddAddressConsumer(c *AddressConsumer) {
	r.AddressConsumers = append(r.AddressConsumers, c)
	sortAddressConsumers(r.AddressConsumers)
}

func sortAddressConsumers(cs []*AddressConsumer) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Priority < cs[j-1].Priority; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// Parse parses data as one RFC 5444 packet and drives every registered
// consumer. It returns a parse error (a *CodecError with a negative
// ErrorCode) if the bytes are malformed; consumer-driven packet drops are
// not reported as errors, since DropPacket is a valid disposition, not a
// parse failure.
func (r *Reader) Parse(data []byte) error {
	p, err := parsePacket(data)
	if err != nil {
		metrics.PacketsParsedTotal.WithLabelValues("parse_error").Inc()
		return err
	}
	metrics.PacketsParsedTotal.WithLabelValues("ok").Inc()

	disp := Okay
	for _, c := range r.PacketConsumers {
		if c.Start != nil {
			disp = maxDisposition(disp, c.Start(p))
		}
	}
	for _, t := range p.TLVs {
		for _, c := range r.PacketConsumers {
			if c.TLVCallback != nil {
				disp = maxDisposition(disp, c.TLVCallback(p, t))
			}
		}
	}
	for _, c := range r.PacketConsumers {
		if len(c.Entries) > 0 {
			if matchBlock(c.Entries, p.TLVs) {
				if c.BlockCallback != nil {
					disp = maxDisposition(disp, c.BlockCallback(p))
				}
			} else {
				metrics.BlockConstraintFailuresTotal.WithLabelValues("packet").Inc()
				if c.BlockCallbackFailedConstraints != nil {
					disp = maxDisposition(disp, c.BlockCallbackFailedConstraints(p))
				}
			}
		}
	}
	for _, c := range r.PacketConsumers {
		if c.End != nil {
			disp = maxDisposition(disp, c.End(p, disp))
		}
	}
	metrics.PacketDispositionTotal.WithLabelValues(disp.String()).Inc()
	if disp == DropPacket {
		return nil
	}

	for _, m := range p.Messages {
		r.dispatchMessage(m)
	}
	return nil
}

func (r *Reader) dispatchMessage(m *Message) {
	matching := func(msgType *uint8) bool {
		return msgType == nil || *msgType == m.Type
	}

	disp := Okay
	for _, c := range r.MessageConsumers {
		if !matching(c.MsgType) {
			continue
		}
		if c.Start != nil {
			disp = maxDisposition(disp, c.Start(m))
		}
	}
	for _, t := range m.TLVs {
		for _, c := range r.MessageConsumers {
			if !matching(c.MsgType) {
				continue
			}
			if c.TLVCallback != nil {
				disp = maxDisposition(disp, c.TLVCallback(m, t))
			}
		}
	}
	for _, c := range r.MessageConsumers {
		if !matching(c.MsgType) || len(c.Entries) == 0 {
			continue
		}
		if matchBlock(c.Entries, m.TLVs) {
			if c.BlockCallback != nil {
				disp = maxDisposition(disp, c.BlockCallback(m))
			}
		} else {
			metrics.BlockConstraintFailuresTotal.WithLabelValues("message").Inc()
			if c.BlockCallbackFailedConstraints != nil {
				disp = maxDisposition(disp, c.BlockCallbackFailedConstraints(m))
			}
		}
	}

	if disp != DropMessage && disp != DropPacket {
		r.dispatchAddressBlocks(m)
	}

	for _, c := range r.MessageConsumers {
		if !matching(c.MsgType) {
			continue
		}
		if c.End != nil {
			disp = maxDisposition(disp, c.End(m, disp))
		}
	}

	if disp == DropMsgButForward && r.ForwardMessage != nil {
		r.ForwardMessage(m.raw, m)
	}
}

// dispatchAddressBlocks runs address-scoped TLV consumers for every
// address in every address block of m, in Priority order, skipping
// consumers whose MsgType does not match m.
// Per-address TLVs are looked up by matching the address's position
// against each TLV's index range via TLV.ValueAt.
func (r *Reader) dispatchAddressBlocks(m *Message) {
	for bi, ab := range m.AddressBlocks {
		blockTLVs := m.AddressTLVs[bi]
		for addrIndex, addr := range ab.Addresses {
			for _, c := range r.AddressConsumers {
				if c.MsgType != nil && *c.MsgType != m.Type {
					continue
				}
				var perAddr []TLV
				for _, t := range blockTLVs {
					if v, ok := t.ValueAt(uint8(addrIndex)); ok {
						cp := t
						cp.Value = v
						perAddr = append(perAddr, cp)
					}
				}
				for _, t := range perAddr {
					if c.TLVCallback != nil {
						c.TLVCallback(m, addr, t)
					}
				}
				if len(c.Entries) > 0 {
					if matchBlock(c.Entries, perAddr) {
						if c.BlockCallback != nil {
							c.BlockCallback(m, addr)
						}
					} else {
						metrics.BlockConstraintFailuresTotal.WithLabelValues("address").Inc()
						if c.BlockCallbackFailedConstraints != nil {
							c.BlockCallbackFailedConstraints(m, addr)
						}
					}
				}
			}
		}
	}
}

