package probe

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
)

func listen(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, func() { _ = ln.Close() }
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServiceName(t *testing.T) {
	assert.Equal(t, "SSH", ServiceName(22))
	assert.Equal(t, "Plex", ServiceName(32400))
	assert.Equal(t, "31337", ServiceName(31337))
}

func TestDefaultPorts(t *testing.T) {
	ports := DefaultPorts()
	assert.Len(t, ports, 25)
	assert.Equal(t, 21, ports[0])
	assert.NoError(t, ValidatePorts(ports))
	assert.Error(t, ValidatePorts([]int{0}))
	assert.Error(t, ValidatePorts([]int{65536}))
}

func TestConnectProberFindsOpenPorts(t *testing.T) {
	open, stop := listen(t)
	defer stop()
	closed := closedPort(t)

	p := NewConnectProber(time.Second, NewLimiter(4), logging.Discard())
	res, err := p.Probe(context.Background(), "127.0.0.1", []int{closed, open, open})
	require.NoError(t, err)

	assert.Equal(t, []models.Port{{Port: open, Service: ServiceName(open)}}, res.Ports)
	assert.Equal(t, 2, res.Checked, "duplicates are probed once")
	assert.Zero(t, res.Timeouts)
}

func TestConnectProberNoOpenPortsIsNotAnError(t *testing.T) {
	p := NewConnectProber(200*time.Millisecond, nil, logging.Discard())
	res, err := p.Probe(context.Background(), "127.0.0.1", []int{closedPort(t)})
	require.NoError(t, err)
	assert.Empty(t, res.Ports)
	assert.NotNil(t, res.Ports)
}

func TestConnectProberRejectsBadInput(t *testing.T) {
	p := NewConnectProber(0, nil, logging.Discard())

	_, err := p.Probe(context.Background(), "not-an-ip", []int{22})
	assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))

	_, err = p.Probe(context.Background(), "10.0.0.1", []int{70000})
	assert.True(t, errors.IsCode(err, errors.CodeValidation))
}

func TestConnectProberPerPortTimeout(t *testing.T) {
	p := NewConnectProber(50*time.Millisecond, nil, logging.Discard())
	p.dial = func(ctx context.Context, _, _ string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	res, err := p.Probe(context.Background(), "10.0.0.1", []int{22, 80, 443})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "ports run concurrently under their own timeout")
	assert.Empty(t, res.Ports)
	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, 3, res.Timeouts)
}

func TestConnectProberKeepsPartialResultsOnCancel(t *testing.T) {
	p := NewConnectProber(5*time.Second, nil, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	opened := make(chan struct{})
	var once sync.Once
	p.dial = func(dctx context.Context, _, addr string) (net.Conn, error) {
		if addr == "10.0.0.1:22" {
			c1, c2 := net.Pipe()
			_ = c2.Close()
			close(opened)
			return c1, nil
		}
		<-opened
		once.Do(cancel)
		<-dctx.Done()
		return nil, dctx.Err()
	}

	res, err := p.Probe(ctx, "10.0.0.1", []int{22, 80, 443})
	require.NoError(t, err)
	assert.Equal(t, []models.Port{{Port: 22, Service: "SSH"}}, res.Ports)
	assert.Zero(t, res.Timeouts, "cancellation is not counted as a timeout")
}

func TestConnectProberRespectsGlobalCeiling(t *testing.T) {
	limiter := NewLimiter(2)
	p := NewConnectProber(time.Second, limiter, logging.Discard())

	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	p.dial = func(ctx context.Context, _, _ string) (net.Conn, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		current--
		mu.Unlock()
		return nil, &net.OpError{Op: "dial", Err: errRefused{}}
	}

	var wg sync.WaitGroup
	for _, host := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Probe(context.Background(), host, []int{21, 22, 23, 80})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, 2)
	assert.LessOrEqual(t, limiter.Peak(), 2)
	assert.Zero(t, limiter.Active())
}

type errRefused struct{}

func (errRefused) Error() string   { return "connection refused" }
func (errRefused) Timeout() bool   { return false }
func (errRefused) Temporary() bool { return false }

func TestLimiter(t *testing.T) {
	l := NewLimiter(0)
	assert.Equal(t, 1, l.Capacity())

	require.NoError(t, l.Acquire(context.Background()))
	assert.Equal(t, 1, l.Active())
	assert.Equal(t, 0, l.Available())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.DeadlineExceeded)

	l.Release()
	l.Release()
	assert.Equal(t, 0, l.Active())

	l.Close()
	assert.Error(t, l.Acquire(context.Background()))
}

func TestNew(t *testing.T) {
	p, err := New(Config{Method: MethodConnect}, NewLimiter(1), logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, MethodConnect, p.Method())

	p, err = New(Config{Method: MethodNmap}, nil, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, MethodNmap, p.Method())

	_, err = New(Config{Method: "udp"}, nil, logging.Discard())
	assert.Error(t, err)
}

func TestOpenPortsFromNmap(t *testing.T) {
	hosts := []nmap.Host{{
		Ports: []nmap.Port{
			{ID: 3389, State: nmap.State{State: "open"}},
			{ID: 22, State: nmap.State{State: "open"}},
			{ID: 80, State: nmap.State{State: "filtered"}},
			{ID: 8123, State: nmap.State{State: "open"}},
		},
	}}

	assert.Equal(t, []models.Port{
		{Port: 22, Service: "SSH"},
		{Port: 3389, Service: "RDP"},
		{Port: 8123, Service: "8123"},
	}, openPorts(hosts))
}

func TestNmapProberRejectsBadInput(t *testing.T) {
	p := NewNmapProber(0, logging.Discard())
	_, err := p.Probe(context.Background(), "bogus", []int{22})
	assert.True(t, errors.IsCode(err, errors.CodeTargetInvalid))

	res, err := p.Probe(context.Background(), "10.0.0.1", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Ports)
}
