package pbb

import (
	"sort"

	"github.com/oonf-go/oonf/autobuf"
	"github.com/oonf-go/oonf/metrics"
	"github.com/oonf-go/oonf/netaddr"
)

// ContentProvider supplies one writer message type's TLVs and addresses.
// The writer calls AddMessageTLVs then AddAddresses, in registration
// order, for every content provider bound to a message type.
type ContentProvider interface {
	AddMessageTLVs(mb *MessageBuilder)
	AddAddresses(mb *MessageBuilder)
}

// ContentProviderFuncs adapts two functions to the ContentProvider
// interface, for callers that don't need a dedicated type.
type ContentProviderFuncs struct {
	TLVs      func(mb *MessageBuilder)
	Addresses func(mb *MessageBuilder)
}

func (f ContentProviderFuncs) AddMessageTLVs(mb *MessageBuilder) {
	if f.TLVs != nil {
		f.TLVs(mb)
	}
}

func (f ContentProviderFuncs) AddAddresses(mb *MessageBuilder) {
	if f.Addresses != nil {
		f.Addresses(mb)
	}
}

// messageType is the writer's registration record for one message type:
// its address width, the if_specific flag given at registration, and the
// ordered content providers that populate it. The writer stores
// ifSpecific but does not consult it.
type messageType struct {
	addrLen    int
	ifSpecific bool
	providers  []ContentProvider
}

// Interface is one per-interface packet-assembly target: an MTU-sized
// autobuf.Buffer that accumulates message bytes until the next message
// would overflow it, at which point the buffer is flushed through
// SendPacket and a fresh packet is opened.
type Interface struct {
	Name   string
	MaxMTU int

	buf      *autobuf.Buffer
	seqno    uint16
	hasSeqno bool
}

// NewInterface returns an Interface with the given MTU as its packet size
// ceiling. hasSeqno controls whether every flushed packet carries the
// per-interface fragment sequence number.
func NewInterface(name string, mtu int, hasSeqno bool) *Interface {
	return &Interface{Name: name, MaxMTU: mtu, buf: autobuf.New(mtu), hasSeqno: hasSeqno}
}

// Writer assembles RFC 5444 packets from registered message types and
// content providers, fragmenting across each interface's MTU. A Writer
// is not safe for concurrent use; the host serializes all calls into
// one writer instance.
type Writer struct {
	Version uint8

	// SendPacket is invoked once per flushed packet, with the interface
	// name and the packet's wire bytes. It must not retain data beyond
	// the call.
	SendPacket func(iface string, data []byte)

	messages   map[uint8]*messageType
	interfaces map[string]*Interface
	order      []string // interface registration order, for CreateMessageAllIf
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{messages: make(map[uint8]*messageType), interfaces: make(map[string]*Interface)}
}

// AddInterface registers iface, keyed by its Name.
func (w *Writer) AddInterface(iface *Interface) {
	if _, exists := w.interfaces[iface.Name]; !exists {
		w.order = append(w.order, iface.Name)
	}
	w.interfaces[iface.Name] = iface
}

// RegisterMessage declares a message type's address width, its
// if_specific flag, and the content providers that populate it, called in
// the given order. The flag is stored only: whatever its value, a message
// is built once per CreateMessage* call, and CreateMessageAllIf enqueues
// the same bytes on every interface.
func (w *Writer) RegisterMessage(msgType uint8, addrLen int, ifSpecific bool, providers ...ContentProvider) {
	w.messages[msgType] = &messageType{addrLen: addrLen, ifSpecific: ifSpecific, providers: providers}
}

// CreateMessageAllIf builds msgType once and enqueues the identical bytes
// on every registered interface, whatever the message type's if_specific
// flag; each interface tracks its own
// fragment seqno independently even though the content is shared.
func (w *Writer) CreateMessageAllIf(msgType uint8) error {
	mt, ok := w.messages[msgType]
	if !ok {
		return newErr(ErrUnsupported, "message type %d is not registered", msgType)
	}
	data, err := w.buildMessage(msgType, mt)
	if err != nil {
		return err
	}
	for _, name := range w.order {
		if err := w.enqueue(w.interfaces[name], data); err != nil {
			return err
		}
	}
	return nil
}

// CreateMessageSingleIf builds msgType and enqueues it on exactly one
// interface.
func (w *Writer) CreateMessageSingleIf(msgType uint8, ifaceName string) error {
	mt, ok := w.messages[msgType]
	if !ok {
		return newErr(ErrUnsupported, "message type %d is not registered", msgType)
	}
	iface, ok := w.interfaces[ifaceName]
	if !ok {
		return newErr(ErrUnsupported, "interface %q is not registered", ifaceName)
	}
	data, err := w.buildMessage(msgType, mt)
	if err != nil {
		return err
	}
	return w.enqueue(iface, data)
}

func (w *Writer) buildMessage(msgType uint8, mt *messageType) ([]byte, error) {
	mb := &MessageBuilder{Type: msgType, AddrLen: mt.addrLen}
	for _, p := range mt.providers {
		p.AddMessageTLVs(mb)
	}
	for _, p := range mt.providers {
		p.AddAddresses(mb)
	}
	data, err := mb.build()
	if err == nil {
		metrics.MessageSizeHistogram.Observe(float64(len(data)))
	}
	return data, err
}

// enqueue copies data into iface's packet buffer, flushing first if it
// would not fit. A single message larger than the
// interface's MTU (after accounting for the packet header) is rejected
// with ErrMtu rather than ever handed to SendPacket oversized.
func (w *Writer) enqueue(iface *Interface, data []byte) error {
	header, err := packetHeader(w.Version, iface.seqno, iface.hasSeqno, nil)
	if err != nil {
		return err
	}
	used := iface.buf.Len()
	if used == 0 {
		used = len(header)
	}
	if used+len(data) > iface.MaxMTU {
		if iface.buf.Len() == 0 {
			return newErr(ErrMtu, "message of %d bytes (+%d header) exceeds interface %q MTU %d", len(data), len(header), iface.Name, iface.MaxMTU)
		}
		metrics.FragmentationEventsTotal.WithLabelValues(iface.Name).Inc()
		if err := w.Flush(iface.Name); err != nil {
			return err
		}
		header, err = packetHeader(w.Version, iface.seqno, iface.hasSeqno, nil)
		if err != nil {
			return err
		}
		if len(header)+len(data) > iface.MaxMTU {
			return newErr(ErrMtu, "message of %d bytes (+%d header) exceeds interface %q MTU %d", len(data), len(header), iface.Name, iface.MaxMTU)
		}
	}
	if iface.buf.Len() == 0 {
		iface.buf.AppendBytes(header...)
	}
	iface.buf.AppendBytes(data...)
	return nil
}

// Flush sends the interface's accumulated packet bytes to SendPacket (if
// any content has been queued) and opens a fresh packet, incrementing the
// interface's own fragment sequence number. The emitted length is always
// <= iface.MaxMTU.
func (w *Writer) Flush(ifaceName string) error {
	iface, ok := w.interfaces[ifaceName]
	if !ok {
		return newErr(ErrUnsupported, "interface %q is not registered", ifaceName)
	}
	if iface.buf.Len() == 0 {
		return nil
	}
	if w.SendPacket != nil {
		w.SendPacket(iface.Name, append([]byte(nil), iface.buf.Bytes()...))
	}
	metrics.PacketsFlushedTotal.WithLabelValues(iface.Name).Inc()
	iface.buf.Reset()
	iface.seqno++
	return nil
}

// FlushAll flushes every interface with pending content, in registration
// order.
func (w *Writer) FlushAll() error {
	for _, name := range w.order {
		if err := w.Flush(name); err != nil {
			return err
		}
	}
	return nil
}

// AddAddressGroup is a convenience for content providers that already have
// a batch of addresses sharing a common prefix (e.g. one interface's
// neighbor set): it sorts them so the writer's head/tail compression in
// writeAddressBlock has the best chance of finding shared bytes, then adds
// each with its per-address TLVs.
func AddAddressGroup(mb *MessageBuilder, addrs []netaddr.Addr, tlvsFor func(netaddr.Addr) []TLV) {
	sorted := append([]netaddr.Addr(nil), addrs...)
	sort.Slice(sorted, func(i, j int) bool {
		bi, bj := sorted[i].Bytes(), sorted[j].Bytes()
		for k := range bi {
			if bi[k] != bj[k] {
				return bi[k] < bj[k]
			}
		}
		return false
	})
	for _, a := range sorted {
		var tlvs []TLV
		if tlvsFor != nil {
			tlvs = tlvsFor(a)
		}
		mb.AddAddress(a, tlvs)
	}
}
