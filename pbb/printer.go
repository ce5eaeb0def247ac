package pbb

import (
	"fmt"
	"io"
)

// Printer attaches to a Reader and renders every packet it parses as an
// indented tree: packet header, then each message, then each message's
// TLVs and address blocks with their own TLVs.
type Printer struct {
	Out io.Writer
}

// Attach registers p on r as a packet-scoped and a message-scoped
// consumer; each message's address blocks and their TLVs are printed by
// the message consumer. It never changes a parse's disposition: every
// callback returns Okay.
func (p *Printer) Attach(r *Reader) {
	r.PacketConsumers = append(r.PacketConsumers, &PacketConsumer{
		Start: func(pkt *Packet) Disposition {
			fmt.Fprintf(p.Out, "packet version=%d", pkt.Version)
			if pkt.HasSeqNo {
				fmt.Fprintf(p.Out, " seqno=%d", pkt.SeqNo)
			}
			fmt.Fprintln(p.Out)
			for _, t := range pkt.TLVs {
				printTLV(p.Out, "  ", t)
			}
			return Okay
		},
	})

	r.AddMessageConsumer(&MessageConsumer{
		Start: func(m *Message) Disposition {
			fmt.Fprintf(p.Out, "  message type=%d addr_len=%d", m.Type, m.AddrLen)
			if m.HasOriginator {
				fmt.Fprintf(p.Out, " orig=%s", m.Originator)
			}
			if m.HasHopLimit {
				fmt.Fprintf(p.Out, " hop_limit=%d", m.HopLimit)
			}
			if m.HasHopCount {
				fmt.Fprintf(p.Out, " hop_count=%d", m.HopCount)
			}
			if m.HasSeqNo {
				fmt.Fprintf(p.Out, " seqno=%d", m.SeqNo)
			}
			fmt.Fprintln(p.Out)
			for _, t := range m.TLVs {
				printTLV(p.Out, "    ", t)
			}
			for bi, ab := range m.AddressBlocks {
				for ai, addr := range ab.Addresses {
					fmt.Fprintf(p.Out, "    address %s\n", addr)
					for _, t := range m.AddressTLVs[bi] {
						if v, ok := t.ValueAt(uint8(ai)); ok {
							cp := t
							cp.Value = v
							printTLV(p.Out, "      ", cp)
						}
					}
				}
			}
			return Okay
		},
	})
}

func printTLV(out io.Writer, indent string, t TLV) {
	fmt.Fprintf(out, "%stlv type=%d", indent, t.Type)
	if t.HasExt {
		fmt.Fprintf(out, " ext=%d", t.TypeExt)
	}
	if t.HasIndex {
		fmt.Fprintf(out, " index=%d-%d", t.IndexFrom, t.IndexTo)
	}
	if len(t.Value) > 0 {
		fmt.Fprintf(out, " value=% x", t.Value)
	}
	fmt.Fprintln(out)
}
