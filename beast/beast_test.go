package beast

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeAVRFramesSevenBytes(t *testing.T) {
	raw := []byte{0x28, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	line := encodeAVR(raw)
	require.Equal(t, "*28000102030405;\n", string(line))
}

func TestEncodeAVRFramesFourteenBytes(t *testing.T) {
	raw := make([]byte, 14)
	raw[0] = 0x8D
	line := encodeAVR(raw)
	require.Equal(t, byte('*'), line[0])
	require.Equal(t, byte(';'), line[len(line)-2])
	require.Equal(t, byte('\n'), line[len(line)-1])
	require.Len(t, line, 1+28+2)
}

func TestServerBroadcastsToConnectedClient(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer s.Close()

	dialDone := make(chan net.Conn, 1)
	go func() {
		conn, err := net.DialTimeout("tcp", s.Addr().String(), time.Second)
		if err != nil {
			dialDone <- nil
			return
		}
		dialDone <- conn
	}()

	// Give the dial a moment to reach the listener, then accept it.
	time.Sleep(20 * time.Millisecond)
	s.AcceptPending()

	conn := <-dialDone
	require.NotNil(t, conn, "client dial failed")
	defer conn.Close()

	require.Equal(t, 1, s.ClientCount())

	raw := []byte{0x5D, 1, 2, 3, 4, 5, 6}
	s.Broadcast(raw)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "*5d010203040506;\n", line)
}

func TestClientCountZeroBeforeAccept(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, 0, s.ClientCount())
}
