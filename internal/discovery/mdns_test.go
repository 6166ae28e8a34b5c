// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager setup and query answer conversion
package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Sequencer",
		Port:        8928,
		Path:        "/stepseq",
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	if mgr.Servers() == nil {
		t.Fatal("expected servers channel")
	}
	mgr.Stop()
}

func TestEntryToServer(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Studio._stepseq._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8928,
		InfoFields: []string{"path=/stepseq"},
	}

	server := entryToServer(entry)
	if server == nil {
		t.Fatal("expected server")
	}
	if server.Name != "Studio" {
		t.Errorf("expected name Studio, got %q", server.Name)
	}
	if server.Addr() != "192.168.1.20:8928" {
		t.Errorf("expected addr 192.168.1.20:8928, got %s", server.Addr())
	}
	if server.Path != "/stepseq" {
		t.Errorf("expected path /stepseq, got %q", server.Path)
	}
}

func TestEntryToServerWithoutIPv4(t *testing.T) {
	if entryToServer(&mdns.ServiceEntry{Name: "x", Port: 1}) != nil {
		t.Error("expected nil for entry without IPv4 address")
	}
	if entryToServer(nil) != nil {
		t.Error("expected nil for nil entry")
	}
}
