package testsupport

import (
	"context"
	"strings"
	"sync"
)

// FakeProber serves canned reports by path and counts invocations.
type FakeProber struct {
	mu      sync.Mutex
	reports map[string]string
	errs    map[string]error
	calls   map[string]int

	// Gate, when non-nil, blocks every probe until it is closed or the
	// probe context ends.
	Gate chan struct{}
	// Started receives the path of each probe as it begins, if non-nil.
	Started chan string
}

// NewFakeProber returns an empty fake.
func NewFakeProber() *FakeProber {
	return &FakeProber{
		reports: make(map[string]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// SetReport makes path print report.
func (p *FakeProber) SetReport(path, report string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports[path] = report
}

// SetError makes probes of path fail with err.
func (p *FakeProber) SetError(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[path] = err
}

// Calls returns how many times path was probed.
func (p *FakeProber) Calls(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[path]
}

// TotalCalls returns the number of probes across all paths.
func (p *FakeProber) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

// Probe implements ffmpeg.Prober.
func (p *FakeProber) Probe(ctx context.Context, path string) ([]string, error) {
	p.mu.Lock()
	p.calls[path]++
	report, err := p.reports[path], p.errs[path]
	p.mu.Unlock()

	if p.Started != nil {
		p.Started <- path
	}
	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if report == "" {
		return nil, nil
	}
	return strings.Split(strings.TrimRight(report, "\n"), "\n"), nil
}
