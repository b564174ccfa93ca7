package presence

import (
	"math"
	"net"
	"testing"
	"time"

	"github.com/svitlo4u/power-server/pkg/config"
)

func TestClockNeverMarked(t *testing.T) {
	c := NewClock()
	if !math.IsInf(c.SecondsSinceLastHeartbeat(), 1) {
		t.Fatalf("age = %v, want +Inf before first heartbeat", c.SecondsSinceLastHeartbeat())
	}
}

func TestClockMark(t *testing.T) {
	c := NewClock()
	c.Mark()

	age := c.SecondsSinceLastHeartbeat()
	if math.IsInf(age, 1) || age < 0 || age > 5 {
		t.Fatalf("age = %v, want a small finite value", age)
	}
}

func TestClockMonotonicBetweenMarks(t *testing.T) {
	c := NewClock()
	c.Mark()

	first := c.SecondsSinceLastHeartbeat()
	time.Sleep(10 * time.Millisecond)
	second := c.SecondsSinceLastHeartbeat()
	if second <= first {
		t.Fatalf("age did not grow: %v then %v", first, second)
	}

	c.Mark()
	if c.SecondsSinceLastHeartbeat() >= second {
		t.Fatal("mark did not reset the age")
	}
}

func TestUDPListenerStampsClock(t *testing.T) {
	clock := NewClock()
	received := make(chan []byte, 1)

	l := NewUDPListener(&config.UDPConfig{Port: 0, BufferSize: 1024}, clock)
	l.OnPacket = func(data []byte, _ net.Addr) {
		select {
		case received <- data:
		default:
		}
	}
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	conn, err := net.Dial("udp", l.conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}

	select {
	case data := <-received:
		if string(data) != "ping" {
			t.Errorf("payload = %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("datagram not received")
	}

	if math.IsInf(clock.SecondsSinceLastHeartbeat(), 1) {
		t.Error("clock not stamped")
	}
}

func TestUDPListenerStopIsIdempotent(t *testing.T) {
	l := NewUDPListener(&config.UDPConfig{Port: 0, BufferSize: 64}, NewClock())
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	l.Stop()
	l.Stop()
}
