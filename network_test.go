package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConnectivityFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	m := NewConnectivityMonitor(server.URL, time.Minute, time.Second)
	m.checkOnce()
	if m.Offline() {
		t.Error("reachable probe host must read as online")
	}

	server.Close()
	m.checkOnce()
	if !m.Offline() {
		t.Error("unreachable probe host must read as offline")
	}
}

func TestConnectivityEmptyProbePinsOnline(t *testing.T) {
	m := NewConnectivityMonitor("", time.Minute, time.Second)
	m.checkOnce()
	if m.Offline() {
		t.Error("no probe url means the flag stays online")
	}
}

func TestConnectivityStartStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	m := NewConnectivityMonitor(server.URL, 10*time.Millisecond, time.Second)
	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()
	if m.Offline() {
		t.Error("monitor against a live server must be online")
	}
}
