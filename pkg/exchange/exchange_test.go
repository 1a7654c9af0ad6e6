package exchange

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/edgewire-io/adinconf/pkg/conformance"
)

// ============================================================================
// Frame Tests
// ============================================================================

func TestBuildFrame(t *testing.T) {
	frame, err := BuildFrame("02:00:00:00:00:01", "ff:ff:ff:ff:ff:ff", "TOKEN-1")
	if err != nil {
		t.Fatalf("BuildFrame error: %v", err)
	}
	if len(frame) != 60 {
		t.Errorf("len(frame) = %d, want 60 (padded minimum)", len(frame))
	}

	wantDst := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(frame[0:6], wantDst) {
		t.Errorf("dst bytes = % x", frame[0:6])
	}
	wantSrc := []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(frame[6:12], wantSrc) {
		t.Errorf("src bytes = % x", frame[6:12])
	}
	if frame[12] != 0x08 || frame[13] != 0x00 {
		t.Errorf("ethertype = %02x%02x, want 0800", frame[12], frame[13])
	}
	if !bytes.HasPrefix(frame[14:], []byte("TOKEN-1")) {
		t.Errorf("payload = %q", frame[14:])
	}
}

func TestBuildFrame_LongPayloadNotPadded(t *testing.T) {
	token := string(bytes.Repeat([]byte("x"), 100))
	frame, err := BuildFrame("02:00:00:00:00:01", "02:00:00:00:00:02", token)
	if err != nil {
		t.Fatal(err)
	}
	if len(frame) != headerLen+100 {
		t.Errorf("len(frame) = %d, want %d", len(frame), headerLen+100)
	}
}

func TestBuildFrame_Invalid(t *testing.T) {
	tests := []struct {
		name            string
		src, dst, token string
	}{
		{"bad src", "nope", "ff:ff:ff:ff:ff:ff", "T"},
		{"bad dst", "02:00:00:00:00:01", "nope", "T"},
		{"empty token", "02:00:00:00:00:01", "ff:ff:ff:ff:ff:ff", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildFrame(tt.src, tt.dst, tt.token); err == nil {
				t.Error("BuildFrame should fail")
			}
		})
	}
}

func TestMatchFrame(t *testing.T) {
	frame, err := BuildFrame("02:00:00:00:00:01", "ff:ff:ff:ff:ff:ff", "UNIQ-42")
	if err != nil {
		t.Fatal(err)
	}

	if !MatchFrame(frame, "UNIQ-42") {
		t.Error("frame should match its own token")
	}
	if MatchFrame(frame, "OTHER") {
		t.Error("frame should not match a different token")
	}
	if MatchFrame(nil, "UNIQ-42") {
		t.Error("empty capture should not match")
	}
	if MatchFrame(frame[:10], "UNIQ-42") {
		t.Error("truncated header should not match")
	}
}

func TestMatchFrame_TokenInHeaderIgnored(t *testing.T) {
	// Token bytes appearing inside the MAC header must not count as a
	// payload match.
	frame := append([]byte("ABCDEFABCDEFXY"), make([]byte, 46)...)
	if MatchFrame(frame, "ABCDEF") {
		t.Error("token match must only consider the payload")
	}
}

// ============================================================================
// SimSwitch Tests
// ============================================================================

func simFrame(src, dst string) conformance.Frame {
	return conformance.Frame{Src: src, Dst: dst, Token: "T"}
}

func TestSimSwitch_BroadcastFloods(t *testing.T) {
	sw := NewSimSwitch()
	seen, err := sw.Exchange(context.Background(), "p0", "p1",
		simFrame("02:00:00:00:00:01", conformance.BroadcastMAC), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("broadcast should flood to the other segment")
	}
}

func TestSimSwitch_LearnedUnicast(t *testing.T) {
	sw := NewSimSwitch()
	ctx := context.Background()

	// Learn 02:..:01 on p0.
	if _, err := sw.Exchange(ctx, "p0", "p1",
		simFrame("02:00:00:00:00:01", conformance.BroadcastMAC), time.Second); err != nil {
		t.Fatal(err)
	}

	// Unicast from p1 to the learned MAC arrives on p0 only.
	seen, err := sw.Exchange(ctx, "p1", "p0",
		simFrame("02:00:00:00:00:02", "02:00:00:00:00:01"), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("learned unicast should forward to the learned segment")
	}
}

func TestSimSwitch_UnknownUnicastFloods(t *testing.T) {
	sw := NewSimSwitch()
	seen, err := sw.Exchange(context.Background(), "p0", "p1",
		simFrame("02:00:00:00:00:03", "02:00:00:00:99:99"), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("unknown unicast should flood")
	}
}

func TestSimSwitch_NoHairpin(t *testing.T) {
	sw := NewSimSwitch()
	seen, err := sw.Exchange(context.Background(), "p0", "p0",
		simFrame("02:00:00:00:00:01", conformance.BroadcastMAC), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("frames must never egress their ingress segment")
	}
}

func TestSimSwitch_Broken(t *testing.T) {
	sw := NewSimSwitch()
	sw.SetBroken(true)
	seen, err := sw.Exchange(context.Background(), "p0", "p1",
		simFrame("02:00:00:00:00:01", conformance.BroadcastMAC), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("broken device should drop everything")
	}
}

func TestSimSwitch_CaseInsensitiveLearning(t *testing.T) {
	sw := NewSimSwitch()
	ctx := context.Background()

	if _, err := sw.Exchange(ctx, "p0", "p1",
		simFrame("02:AA:BB:CC:DD:EE", conformance.BroadcastMAC), time.Second); err != nil {
		t.Fatal(err)
	}
	seen, err := sw.Exchange(ctx, "p1", "p0",
		simFrame("02:00:00:00:00:02", "02:aa:bb:cc:dd:ee"), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("MAC learning should be case-insensitive")
	}
}

// ============================================================================
// UDPExchange Tests
// ============================================================================

// loopbackEcho simulates a device segment: frames injected to its port are
// immediately re-emitted to the capture port.
func loopbackEcho(t *testing.T, injectAddr, captureAddr string, stop chan struct{}) {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", injectAddr)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		defer conn.Close()
		buf := make([]byte, 2048)
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				continue
			}
			out, err := net.Dial("udp", captureAddr)
			if err != nil {
				continue
			}
			_, _ = out.Write(buf[:n])
			out.Close()
		}
	}()
}

func TestUDPExchange_ObservesForwardedFrame(t *testing.T) {
	const (
		injectAddr  = "127.0.0.1:19001"
		captureAddr = "127.0.0.1:19002"
	)
	stop := make(chan struct{})
	defer close(stop)
	loopbackEcho(t, injectAddr, captureAddr, stop)

	x := NewUDPExchange(map[string]Endpoint{
		"p0": {Inject: injectAddr, Listen: "127.0.0.1:19003"},
		"p1": {Inject: "127.0.0.1:19004", Listen: captureAddr},
	})

	seen, err := x.Exchange(context.Background(), "p0", "p1",
		conformance.Frame{Src: "02:00:00:00:00:01", Dst: conformance.BroadcastMAC, Token: "UDP-LOOP-1"},
		2*time.Second)
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if !seen {
		t.Error("echoed frame should be observed")
	}
}

func TestUDPExchange_TimeoutIsObservationFalse(t *testing.T) {
	// No device behind the inject port: nothing ever arrives.
	x := NewUDPExchange(map[string]Endpoint{
		"p0": {Inject: "127.0.0.1:19011", Listen: "127.0.0.1:19012"},
		"p1": {Inject: "127.0.0.1:19013", Listen: "127.0.0.1:19014"},
	})

	start := time.Now()
	seen, err := x.Exchange(context.Background(), "p0", "p1",
		conformance.Frame{Src: "02:00:00:00:00:01", Dst: conformance.BroadcastMAC, Token: "NEVER"},
		200*time.Millisecond)
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if seen {
		t.Error("nothing was sent back; observation should be false")
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("returned after %v, should have waited out the timeout", elapsed)
	}
}

func TestUDPExchange_UnknownSegment(t *testing.T) {
	x := NewUDPExchange(map[string]Endpoint{})
	_, err := x.Exchange(context.Background(), "p0", "p1",
		conformance.Frame{Src: "02:00:00:00:00:01", Dst: conformance.BroadcastMAC, Token: "T"},
		time.Second)
	if err == nil {
		t.Error("unconfigured segment should be a usage error")
	}
}
