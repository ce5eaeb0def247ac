package pbb_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/oonf-go/oonf/netaddr"
	"github.com/oonf-go/oonf/pbb"
)

// TestMandatoryTLVMissingFailsConstraints covers a consumer mandating TLV
// type 2 when the packet only carries type 1: BlockCallbackFailedConstraints
// must fire instead of BlockCallback, and the mandated entry's Matched
// pointer stays nil.
func TestMandatoryTLVMissingFailsConstraints(t *testing.T) {
	data := []byte{0x04, 0x00, 0x02, 0x01, 0x00}

	entry := &pbb.TLVBlockEntry{Type: 2, Mandatory: true}
	var failedCalled, okCalled bool

	r := &pbb.Reader{}
	r.PacketConsumers = append(r.PacketConsumers, &pbb.PacketConsumer{
		Entries:                        []*pbb.TLVBlockEntry{entry},
		BlockCallback:                  func(*pbb.Packet) pbb.Disposition { okCalled = true; return pbb.Okay },
		BlockCallbackFailedConstraints: func(*pbb.Packet) pbb.Disposition { failedCalled = true; return pbb.Okay },
	})

	if err := r.Parse(data); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !failedCalled {
		t.Error("expected BlockCallbackFailedConstraints to run")
	}
	if okCalled {
		t.Error("BlockCallback should not have run")
	}
	if entry.Matched != nil {
		t.Errorf("entry.Matched = %+v, want nil", entry.Matched)
	}
}

func TestMandatoryTLVPresentRunsBlockCallback(t *testing.T) {
	// packet flags 0x04 (has TLV block), block size 2, one TLV type=2 len=0.
	data := []byte{0x04, 0x00, 0x02, 0x02, 0x00}

	entry := &pbb.TLVBlockEntry{Type: 2, Mandatory: true}
	var okCalled bool

	r := &pbb.Reader{}
	r.PacketConsumers = append(r.PacketConsumers, &pbb.PacketConsumer{
		Entries:       []*pbb.TLVBlockEntry{entry},
		BlockCallback: func(*pbb.Packet) pbb.Disposition { okCalled = true; return pbb.Okay },
	})

	if err := r.Parse(data); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !okCalled {
		t.Error("expected BlockCallback to run")
	}
	if entry.Matched == nil || entry.Matched.Type != 2 {
		t.Errorf("entry.Matched = %+v, want type 2", entry.Matched)
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	a1, _ := netaddr.Parse("10.0.0.1")
	a2, _ := netaddr.Parse("10.0.0.2")

	w := pbb.NewWriter()
	w.AddInterface(pbb.NewInterface("eth0", 1500, false))
	w.RegisterMessage(1, 4, true, pbb.ContentProviderFuncs{
		TLVs: func(mb *pbb.MessageBuilder) {
			mb.TLVs = append(mb.TLVs, pbb.TLV{Type: 5, Value: []byte("hello")})
		},
		Addresses: func(mb *pbb.MessageBuilder) {
			mb.AddAddress(a1, nil)
			mb.AddAddress(a2, nil)
		},
	})

	var sent [][]byte
	w.SendPacket = func(iface string, data []byte) {
		sent = append(sent, data)
	}

	if err := w.CreateMessageSingleIf(1, "eth0"); err != nil {
		t.Fatalf("CreateMessageSingleIf: %v", err)
	}
	if err := w.Flush("eth0"); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("SendPacket called %d times, want 1", len(sent))
	}

	var gotAddrs []netaddr.Addr
	var gotTLV pbb.TLV
	r := &pbb.Reader{}
	r.AddMessageConsumer(&pbb.MessageConsumer{
		TLVCallback: func(m *pbb.Message, t pbb.TLV) pbb.Disposition { gotTLV = t; return pbb.Okay },
	})
	r.AddAddressConsumer(&pbb.AddressConsumer{
		BlockCallback: func(m *pbb.Message, a netaddr.Addr) pbb.Disposition {
			gotAddrs = append(gotAddrs, a)
			return pbb.Okay
		},
		Entries: []*pbb.TLVBlockEntry{{Type: 0}},
	})

	if err := r.Parse(sent[0]); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if gotTLV.Type != 5 || string(gotTLV.Value) != "hello" {
		t.Errorf("message TLV = %+v, want type 5 value hello", gotTLV)
	}
	if len(gotAddrs) != 2 {
		t.Fatalf("got %d addresses, want 2", len(gotAddrs))
	}
	if diff := deep.Equal(gotAddrs[0].String(), a1.String()); diff != nil {
		t.Errorf("address[0] diff: %v", diff)
	}
	if diff := deep.Equal(gotAddrs[1].String(), a2.String()); diff != nil {
		t.Errorf("address[1] diff: %v", diff)
	}
}

func TestWriterRejectsOversizedMessage(t *testing.T) {
	w := pbb.NewWriter()
	w.AddInterface(pbb.NewInterface("eth0", 16, false))
	w.RegisterMessage(1, 4, true, pbb.ContentProviderFuncs{
		TLVs: func(mb *pbb.MessageBuilder) {
			mb.TLVs = append(mb.TLVs, pbb.TLV{Type: 1, Value: make([]byte, 64)})
		},
	})

	err := w.CreateMessageSingleIf(1, "eth0")
	if err == nil {
		t.Fatal("expected an MTU error, got nil")
	}
}

func TestPrinterRendersPacket(t *testing.T) {
	data := []byte{0x04, 0x00, 0x02, 0x02, 0x00}
	r := &pbb.Reader{}
	var out []byte
	p := &pbb.Printer{Out: writerFunc(func(b []byte) (int, error) { out = append(out, b...); return len(b), nil })}
	p.Attach(r)
	if err := r.Parse(data); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected printer to write some output")
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
