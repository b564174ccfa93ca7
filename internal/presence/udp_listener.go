package presence

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/svitlo4u/power-server/pkg/config"
)

// UDPListener receives heartbeat datagrams from the presence sensor and
// stamps the clock on every packet. Payload content is irrelevant; the fact
// of arrival is the signal.
type UDPListener struct {
	config *config.UDPConfig
	clock  *Clock

	// OnPacket, if set, is invoked for every received datagram.
	OnPacket func(data []byte, addr net.Addr)

	conn     *net.UDPConn
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewUDPListener creates a listener that feeds the given clock.
func NewUDPListener(cfg *config.UDPConfig, clock *Clock) *UDPListener {
	return &UDPListener{
		config: cfg,
		clock:  clock,
		stopCh: make(chan struct{}),
	}
}

// Start binds the UDP socket and starts the receive loop.
func (l *UDPListener) Start() error {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: l.config.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP listener: %w", err)
	}

	l.conn = conn
	fmt.Printf("UDP listener on :%d\n", l.config.Port)

	l.wg.Add(1)
	go l.readLoop()

	return nil
}

// Stop closes the socket exactly once and waits for the receive loop.
func (l *UDPListener) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		if l.conn != nil {
			l.conn.Close()
		}
		l.wg.Wait()
		fmt.Println("UDP listener stopped")
	})
}

func (l *UDPListener) readLoop() {
	defer l.wg.Done()

	buf := make([]byte, l.config.BufferSize)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-l.stopCh:
				return
			default:
				fmt.Printf("UDP read error: %v\n", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}
		}

		l.clock.Mark()

		if l.OnPacket != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			l.OnPacket(data, addr)
		}
	}
}
