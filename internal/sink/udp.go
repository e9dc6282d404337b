// SPDX-License-Identifier: MIT
package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	applog "lightwave/internal/log"
)

/*
UDP frame layout (BigEndian):

|<-- 4 Bytes -->|<---- 8 Bytes ---->|<-- 2 Bytes -->|<-- N * 4 Bytes -->|
+---------------+-------------------+---------------+-------------------+
|   Sequence    |     Timestamp     |  Color Count  |      Colors       |
|   (uint32)    |  (int64, ns)      |   (uint16)    |  (N * uint32,     |
|               |                   |               |   0xRRGGBB)       |
+---------------+-------------------+---------------+-------------------+
*/

// UDP sends color frames as binary datagrams to one target address.
// Frames arrive only when the engine detected a change, so there is no
// internal ticker; Emit packs and sends synchronously.
type UDP struct {
	conn   *net.UDPConn
	mu     sync.Mutex // protects conn against concurrent Close
	closed bool

	seq uint32
	buf bytes.Buffer // reusable packet buffer
}

// NewUDP creates a sink targeting addr ("host:port").
func NewUDP(addr string) (*UDP, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", addr, err)
	}

	applog.Infof("sink: UDP connected to %s", conn.RemoteAddr())
	return &UDP{conn: conn}, nil
}

// Emit packs the frame and sends it as one datagram.
func (u *UDP) Emit(colors []uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return fmt.Errorf("UDP sink is closed")
	}

	u.seq++
	if err := encodeFrame(&u.buf, u.seq, time.Now().UnixNano(), colors); err != nil {
		return fmt.Errorf("failed to pack frame %d: %w", u.seq, err)
	}

	if _, err := u.conn.Write(u.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send frame %d: %w", u.seq, err)
	}
	applog.Debugf("sink: UDP sent frame %d (%d colors)", u.seq, len(colors))
	return nil
}

// Close closes the connection. Safe to call more than once.
func (u *UDP) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true
	if u.conn != nil {
		err := u.conn.Close()
		u.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close UDP sink: %w", err)
		}
	}
	return nil
}

// encodeFrame writes one frame into buf, resetting it first.
func encodeFrame(buf *bytes.Buffer, seq uint32, timestamp int64, colors []uint32) error {
	buf.Reset()

	if err := binary.Write(buf, binary.BigEndian, seq); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, timestamp); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(colors))); err != nil {
		return err
	}
	return binary.Write(buf, binary.BigEndian, colors)
}

var _ Sink = (*UDP)(nil)
