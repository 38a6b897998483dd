package flw

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/flwd/keeperd/internal/keeper"
)

func startTestServer(t *testing.T, whiteList []string) (string, *keeper.Dispatcher) {
	t.Helper()

	d := newTestDispatcher(t)
	reg := newTestRegistry(t, d, whiteList)
	srv := NewServer(reg, d, zap.NewNop().Sugar())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	return ln.Addr().String(), d
}

func rawCommand(addr, name string) (string, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Close() }()

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(MustCode(name)))
	if _, err := conn.Write(buf[:]); err != nil {
		return "", err
	}
	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

func sendCommand(t *testing.T, addr, name string) string {
	t.Helper()
	resp, err := rawCommand(addr, name)
	if err != nil {
		t.Fatalf("command %q failed: %v", name, err)
	}
	return resp
}

func TestServerServesRuok(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	if got := sendCommand(t, addr, "ruok"); got != "imok" {
		t.Errorf("ruok over the wire = %q, want %q", got, "imok")
	}
}

func TestServerRunsNopcForDisabledCommand(t *testing.T) {
	addr, _ := startTestServer(t, []string{"ruok", "stat"})

	if got := sendCommand(t, addr, "ruok"); got != "imok" {
		t.Errorf("whitelisted ruok = %q, want %q", got, "imok")
	}

	// conf is registered but not whitelisted: the advisory must come back
	// verbatim, never configuration data.
	if got := sendCommand(t, addr, "conf"); got != notWhiteListedText {
		t.Errorf("disabled conf = %q, want %q", got, notWhiteListedText)
	}
}

func TestServerAnswersUnknownCode(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	got := sendCommand(t, addr, "zzzz")
	if got != "\"zzzz\" is an unknown command\n" {
		t.Errorf("unknown code response = %q", got)
	}
}

func TestServerClosesConnectionAfterResponse(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(MustCode("ruok")))
	if _, err := conn.Write(buf[:]); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(resp) != "imok" {
		t.Fatalf("response = %q", resp)
	}

	// The server closed its side after one command; a follow-up read
	// reports EOF immediately instead of blocking for a second response.
	if _, err := conn.Read(buf[:]); err != io.EOF {
		t.Errorf("read after response = %v, want io.EOF", err)
	}
}

func TestServerCountsServedCommands(t *testing.T) {
	addr, d := startTestServer(t, nil)

	sendCommand(t, addr, "ruok")
	sendCommand(t, addr, "isro")

	stats := d.Stats()
	if got := stats.PacketsReceived(); got != 2 {
		t.Errorf("packets received = %d, want 2", got)
	}
	if got := stats.PacketsSent(); got != 2 {
		t.Errorf("packets sent = %d, want 2", got)
	}
}

func TestServerConcurrentConnections(t *testing.T) {
	addr, d := startTestServer(t, nil)
	d.SetReadOnly(true)

	const iterations = 25

	var wg sync.WaitGroup
	errs := make(chan string, 2*iterations)
	for i := 0; i < iterations; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got, err := rawCommand(addr, "ruok"); err != nil || got != "imok" {
				errs <- "ruok = " + got
			}
		}()
		go func() {
			defer wg.Done()
			if got, err := rawCommand(addr, "isro"); err != nil || got != "ro" {
				errs <- "isro = " + got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Errorf("concurrent command returned wrong output: %s", msg)
	}
}
