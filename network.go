package main

import (
	"net/http"
	"sync/atomic"
	"time"
)

// ConnectivityMonitor polls the provider host on a fixed interval and keeps
// an offline flag for policy decisions. It never cancels an in-flight
// download, the flag only gates whether new automatic refreshes start.
type ConnectivityMonitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client

	offline atomic.Bool
	quit    chan struct{}
	done    chan struct{}
}

// NewConnectivityMonitor creates a monitor probing probeURL. An empty probe
// URL pins the flag to online.
func NewConnectivityMonitor(probeURL string, interval, timeout time.Duration) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Offline 当前是否离线
func (m *ConnectivityMonitor) Offline() bool {
	return m.offline.Load()
}

// Start runs the poll loop. The first check happens immediately so callers
// see a settled flag right after startup.
func (m *ConnectivityMonitor) Start() {
	m.checkOnce()
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.checkOnce()
			case <-m.quit:
				return
			}
		}
	}()
}

// Stop ends the poll loop and waits for it to exit.
func (m *ConnectivityMonitor) Stop() {
	select {
	case <-m.quit:
	default:
		close(m.quit)
	}
	<-m.done
	log.Debugf("connectivity monitor stopped")
}

func (m *ConnectivityMonitor) checkOnce() {
	if m.probeURL == "" {
		m.offline.Store(false)
		return
	}
	req, err := http.NewRequest(http.MethodHead, m.probeURL, nil)
	if err != nil {
		m.offline.Store(false)
		return
	}
	resp, err := m.client.Do(req)
	if err != nil {
		if !m.offline.Swap(true) {
			log.Warnf("connectivity probe %s failed, going offline ~ %s", m.probeURL, err)
		}
		return
	}
	resp.Body.Close()
	if m.offline.Swap(false) {
		log.Infof("connectivity restored")
	}
}
