package torctl

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/torproject/torctl/internal/duplextest"
)

func TestControllerFreshStateRejectsOtherVerbs(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	_, err := ctrl.GetInfo(context.Background(), "version")
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError before authentication, got %v (%T)", err, err)
	}
}

func TestControllerFreshAllowsProtocolInfo(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	go func() {
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil || strings.TrimSpace(line) != "PROTOCOLINFO" {
			return
		}
		_, _ = server.Write([]byte("250-PROTOCOLINFO 1\r\n250 OK\r\n"))
	}()

	if _, err := ctrl.ProtocolInfo(context.Background()); err != nil {
		t.Fatalf("ProtocolInfo: %v", err)
	}
	if ctrl.State() != StateFresh {
		t.Errorf("PROTOCOLINFO must not advance state, got %v", ctrl.State())
	}
}

func TestControllerAuthenticateAdvancesState(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("250 OK\r\n"))
	}()

	if _, err := ctrl.Authenticate(context.Background(), nil); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if ctrl.State() != StateAuthenticated {
		t.Errorf("state = %v, want Authenticated", ctrl.State())
	}
}

func TestControllerFailureReplyDoesNotAdvanceState(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("515 Authentication failed\r\n"))
	}()

	_, err := ctrl.Authenticate(context.Background(), nil)
	if _, ok := err.(*ServerError); !ok {
		t.Fatalf("expected *ServerError, got %v (%T)", err, err)
	}
	if ctrl.State() != StateFresh {
		t.Errorf("failed AUTHENTICATE must not advance state, got %v", ctrl.State())
	}
}

func TestControllerSecondSuccessfulVerbReachesActive(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	go func() {
		r := bufio.NewReader(server)
		for i := 0; i < 2; i++ {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			if _, err := server.Write([]byte("250 OK\r\n")); err != nil {
				return
			}
		}
	}()

	if _, err := ctrl.Authenticate(context.Background(), nil); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := ctrl.DropGuards(context.Background()); err != nil {
		t.Fatalf("DropGuards: %v", err)
	}
	if ctrl.State() != StateActive {
		t.Errorf("state = %v, want Active", ctrl.State())
	}
}

func TestControllerTransportClosedForcesClosedState(t *testing.T) {
	client, server := duplextest.New()
	ctrl := NewController(client)
	ctrl.Start()
	_ = server.Close()

	deadline := time.Now().Add(time.Second)
	for ctrl.Engine().latchedError() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, err := ctrl.GetInfo(context.Background(), "version")
	if _, ok := err.(*TransportClosedError); !ok {
		t.Fatalf("expected *TransportClosedError, got %v (%T)", err, err)
	}
	if ctrl.State() != StateClosed {
		t.Errorf("state = %v, want Closed", ctrl.State())
	}
}

func TestControllerSetEventsRejectsUnknownNameBeforeSending(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	wrote := make(chan struct{}, 1)
	go func() {
		r := bufio.NewReader(server)
		if _, err := r.ReadString('\n'); err == nil {
			wrote <- struct{}{}
		}
	}()

	_, err := ctrl.SetEvents(context.Background(), "CIRC", "NOT_A_REAL_EVENT")
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError, got %v (%T)", err, err)
	}
	select {
	case <-wrote:
		t.Fatalf("SETEVENTS must not write anything when validation fails")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestControllerSetEventsSendsUppercasedNames(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)
	ctrl.state.onSuccess("AUTHENTICATE") // SETEVENTS is rejected in Fresh

	var gotLine string
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		gotLine = strings.TrimRight(line, "\r\n")
		_, _ = server.Write([]byte("250 OK\r\n"))
	}()

	if _, err := ctrl.SetEvents(context.Background(), "circ", "stream"); err != nil {
		t.Fatalf("SetEvents: %v", err)
	}
	<-done
	if gotLine != "SETEVENTS CIRC STREAM" {
		t.Errorf("got line %q", gotLine)
	}
}

func TestControllerAddOnionValidatesKeySpec(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	_, _, err := ctrl.AddOnion(context.Background(), "NOTVALID", []OnionPort{{Virtual: 80}}, nil)
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError for missing ':', got %v (%T)", err, err)
	}
}

func TestControllerAddOnionValidatesPorts(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	_, _, err := ctrl.AddOnion(context.Background(), "NEW:BEST", nil, nil)
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError for empty ports, got %v (%T)", err, err)
	}
}

func TestControllerAddOnionRoundTrip(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)

	var gotLine string
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		gotLine = strings.TrimRight(line, "\r\n")
		_, _ = server.Write([]byte(
			"250-ServiceID=abcdefghijklmnop\r\n250 OK\r\n"))
	}()

	serviceID, privateKey, err := ctrl.AddOnion(context.Background(), "NEW:BEST",
		[]OnionPort{{Virtual: 80, Target: "127.0.0.1:8080"}}, []string{"Detach"})
	if err != nil {
		t.Fatalf("AddOnion: %v", err)
	}
	<-done
	if serviceID != "abcdefghijklmnop" {
		t.Errorf("serviceID = %q", serviceID)
	}
	if privateKey != "" {
		t.Errorf("privateKey = %q, want empty", privateKey)
	}
	want := "ADD_ONION NEW:BEST Flags=Detach Port=80,127.0.0.1:8080"
	if gotLine != want {
		t.Errorf("got line %q, want %q", gotLine, want)
	}
}

func TestControllerGetConfParsesKeyValuePairs(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)
	ctrl.state.onSuccess("AUTHENTICATE") // GETCONF is rejected in Fresh

	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("250-Nickname=MyRelay\r\n250 ORPort=9001\r\n"))
	}()

	vals, err := ctrl.GetConf(context.Background(), "Nickname", "ORPort")
	if err != nil {
		t.Fatalf("GetConf: %v", err)
	}
	if v, ok := vals.Get("Nickname"); !ok || v != "MyRelay" {
		t.Errorf("Nickname = %q, %v", v, ok)
	}
	if v, ok := vals.Get("ORPort"); !ok || v != "9001" {
		t.Errorf("ORPort = %q, %v", v, ok)
	}
}

func TestControllerGetInfoVariadicRoundTrip(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)
	ctrl.state.onSuccess("AUTHENTICATE") // GETINFO is rejected in Fresh

	var gotLine string
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		gotLine = strings.TrimRight(line, "\r\n")
		_, _ = server.Write([]byte("250-version=0.4.7.13\r\n250 OK\r\n"))
	}()

	vals, err := ctrl.GetInfo(context.Background(), "version")
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	<-done
	if gotLine != "GETINFO version" {
		t.Errorf("got line %q", gotLine)
	}
	if v, ok := vals.Get("version"); !ok || v != "0.4.7.13" {
		t.Errorf("version = %q, %v", v, ok)
	}
}

func TestControllerMapAddressRoundTrip(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()
	ctrl := NewController(client)
	ctrl.state.onSuccess("AUTHENTICATE") // MAPADDRESS is rejected in Fresh

	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("250 127.0.0.1=torproject.org\r\n"))
	}()

	vals, err := ctrl.MapAddress(context.Background(), map[string]string{"127.0.0.1": "torproject.org"})
	if err != nil {
		t.Fatalf("MapAddress: %v", err)
	}
	if v, ok := vals.Get("127.0.0.1"); !ok || v != "torproject.org" {
		t.Errorf("got %q, %v", v, ok)
	}
}

func TestControllerWithDebugTapOption(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()

	var out []string
	ctrl := NewController(client, WithDebugTap(tapFunc{
		out: func(l string) { out = append(out, l) },
		in:  func(string) {},
	}))

	go func() {
		r := bufio.NewReader(server)
		_, _ = r.ReadString('\n')
		_, _ = server.Write([]byte("250 OK\r\n"))
	}()

	if _, err := ctrl.ProtocolInfo(context.Background()); err != nil {
		t.Fatalf("ProtocolInfo: %v", err)
	}
	if len(out) != 1 || out[0] != "PROTOCOLINFO" {
		t.Errorf("out = %v", out)
	}
}

func TestControllerWithTypedHandlerOption(t *testing.T) {
	client, server := duplextest.New()
	defer server.Close()

	h := &testHandler{}
	ctrl := NewController(client, WithTypedHandler(h))
	ctrl.state.onSuccess("AUTHENTICATE") // GETINFO is rejected in Fresh

	go func() {
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil || strings.TrimSpace(line) != "GETINFO version" {
			return
		}
		_, _ = server.Write([]byte("650 BW 10 20\r\n250 version=0.4.7.13\r\n"))
	}()

	if _, err := ctrl.GetInfo(context.Background(), "version"); err != nil {
		t.Fatalf("GetInfo: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bwCalls != 1 || h.bwRead != 10 || h.bwWritten != 20 {
		t.Errorf("handler state = %+v", h)
	}
}
