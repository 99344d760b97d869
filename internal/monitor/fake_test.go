package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/shini4i/bandwidth-monitor/internal/netstat"
)

// fakeProvider serves counters and addresses from maps the test mutates.
type fakeProvider struct {
	mu       sync.Mutex
	counters map[string]netstat.Snapshot
	addrs    map[string]netstat.AddressInfo
	failRead bool
	lookups  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		counters: map[string]netstat.Snapshot{},
		addrs:    map[string]netstat.AddressInfo{},
	}
}

func (p *fakeProvider) set(name string, sent, recv uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters[name] = netstat.Snapshot{BytesSent: sent, BytesRecv: recv}
}

func (p *fakeProvider) remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.counters, name)
}

func (p *fakeProvider) setFailRead(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failRead = fail
}

func (p *fakeProvider) addressLookups() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lookups...)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Interfaces(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.counters))
	for n := range p.counters {
		names = append(names, n)
	}
	return names, nil
}

func (p *fakeProvider) Counters(_ context.Context, name string) (netstat.Snapshot, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failRead {
		return netstat.Snapshot{}, false, errors.New("read failed")
	}
	snap, ok := p.counters[name]
	return snap, ok, nil
}

func (p *fakeProvider) AddressInfo(_ context.Context, name string) (netstat.AddressInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups = append(p.lookups, name)
	if info, ok := p.addrs[name]; ok {
		return info, nil
	}
	return netstat.UnknownAddress(name), nil
}

// recordingSink stores everything it is shown.
type recordingSink struct {
	mu         sync.Mutex
	frames     []Frame
	interfaces []netstat.AddressInfo
}

func (r *recordingSink) ShowFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recordingSink) ShowInterface(info netstat.AddressInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interfaces = append(r.interfaces, info)
}

func (r *recordingSink) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingSink) lastFrame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func (r *recordingSink) shownInterfaces() []netstat.AddressInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]netstat.AddressInfo(nil), r.interfaces...)
}
