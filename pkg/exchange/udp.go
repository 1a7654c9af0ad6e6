package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
	"github.com/edgewire-io/adinconf/pkg/util"
)

// Endpoint is one segment's pair of UDP addresses. QEMU's socket netdev
// exposes each simulated PHY as a UDP port: frames sent to Inject enter the
// device on that segment, and frames the device emits on the segment arrive
// at Listen.
type Endpoint struct {
	Inject string `yaml:"inject"` // host:port frames are sent to
	Listen string `yaml:"listen"` // host:port captures arrive on
}

// UDPExchange injects raw Ethernet frames into QEMU socket netdevs and
// captures the device's output to observe forwarding behavior.
type UDPExchange struct {
	segments map[string]Endpoint
}

// NewUDPExchange creates an exchanger over the given segment endpoints.
func NewUDPExchange(segments map[string]Endpoint) *UDPExchange {
	return &UDPExchange{segments: segments}
}

// Exchange implements Exchanger. The egress listener is opened before the
// frame is injected so a fast device cannot win the race, then reads
// datagrams until the token matches or the timeout lapses.
func (x *UDPExchange) Exchange(ctx context.Context, ingress, egress string, frame conformance.Frame, timeout time.Duration) (bool, error) {
	in, ok := x.segments[ingress]
	if !ok {
		return false, util.NewInputError("exchange", ingress, "segment has no endpoint configured")
	}
	out, ok := x.segments[egress]
	if !ok {
		return false, util.NewInputError("exchange", egress, "segment has no endpoint configured")
	}

	raw, err := BuildFrame(frame.Src, frame.Dst, frame.Token)
	if err != nil {
		return false, util.NewInputError("exchange", ingress, err.Error())
	}

	listenAddr, err := net.ResolveUDPAddr("udp", out.Listen)
	if err != nil {
		return false, fmt.Errorf("resolve capture addr %s: %w", out.Listen, err)
	}
	conn, err := net.ListenUDP("udp", listenAddr)
	if err != nil {
		return false, fmt.Errorf("listen on %s for segment %s: %w", out.Listen, egress, err)
	}
	defer conn.Close()

	if err := x.inject(in, raw); err != nil {
		return false, fmt.Errorf("inject on segment %s: %w", ingress, err)
	}
	util.WithSegment(ingress).Debugf("injected %d bytes, watching %s for %q", len(raw), egress, frame.Token)

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	buf := make([]byte, 2048)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return false, err
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// Nothing matched in time: that is the observation.
				return false, nil
			}
			return false, fmt.Errorf("capture on segment %s: %w", egress, err)
		}
		if MatchFrame(buf[:n], frame.Token) {
			return true, nil
		}
		// Unrelated traffic; keep reading until the deadline.
	}
}

func (x *UDPExchange) inject(ep Endpoint, raw []byte) error {
	addr, err := net.ResolveUDPAddr("udp", ep.Inject)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write(raw)
	return err
}
