package main

import (
	"testing"
)

func TestBindAddr_IPLiteral(t *testing.T) {
	addr, err := bindAddr("127.0.0.1", 4444)
	if err != nil {
		t.Fatalf("bindAddr failed for IP literal: %v", err)
	}
	if addr.Port != 4444 || !addr.IP.IsLoopback() {
		t.Errorf("Unexpected address: %v", addr)
	}
}

func TestBindAddr_Hostname(t *testing.T) {
	addr, err := bindAddr("localhost", 4444)
	if err != nil {
		t.Fatalf("bindAddr rejected a resolvable hostname: %v", err)
	}
	if addr.Port != 4444 {
		t.Errorf("Unexpected port: %d", addr.Port)
	}
}

func TestBindAddr_UnresolvableHost(t *testing.T) {
	if _, err := bindAddr("no.such.host.invalid", 4444); err == nil {
		t.Errorf("Expected an error for an unresolvable host")
	}
}
