// Package rcon speaks the Source-RCON admin wire protocol. The client side
// rides on github.com/gorcon/rcon; the packet codec and server here exist so
// the mock world daemon and tests can sit on the other end of the socket.
package rcon

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Source-RCON packet types. Auth responses reuse the exec-command type.
const (
	typeResponseValue int32 = 0
	typeExecCommand   int32 = 2
	typeAuthResponse  int32 = 2
	typeAuth          int32 = 3
)

// Wire layout: int32 size (bytes after the size field), int32 id, int32
// type, body, two NUL terminators. All little-endian.
const (
	packetHeaderSize = 10 // id + type + 2 NULs
	maxPacketSize    = 8192
)

type packet struct {
	ID   int32
	Type int32
	Body string
}

func writePacket(w io.Writer, p packet) error {
	size := packetHeaderSize + len(p.Body)
	if size > maxPacketSize {
		return fmt.Errorf("packet too large: %d bytes", size)
	}
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// Trailing NULs are already zeroed by make.
	_, err := w.Write(buf)
	return err
}

func readPacket(r io.Reader) (packet, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return packet{}, err
	}
	size := int32(binary.LittleEndian.Uint32(head[:]))
	if size < packetHeaderSize || size > maxPacketSize {
		return packet{}, fmt.Errorf("bad packet size: %d", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return packet{}, err
	}
	p := packet{
		ID:   int32(binary.LittleEndian.Uint32(buf[0:4])),
		Type: int32(binary.LittleEndian.Uint32(buf[4:8])),
		Body: string(buf[8 : size-2]),
	}
	return p, nil
}
