package replication

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/resp-store/internal/command"
	"github.com/edirooss/resp-store/internal/fanout"
	"github.com/edirooss/resp-store/internal/wire"
)

func TestNopSinkDiscards(t *testing.T) {
	require.NoError(t, NopSink{}.Publish(fanout.Record{}))
}

func TestConnSinkWritesFramedPayload(t *testing.T) {
	require := require.New(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sink := NewConnSink(client)
	rec := fanout.Record{ID: 1, Slot: 1, Cmd: command.WireCmd{Name: "SET", Args: [][]byte{[]byte("k"), []byte("v")}}}

	errCh := make(chan error, 1)
	go func() { errCh <- sink.Publish(rec) }()

	buf := make([]byte, 256)
	server.SetReadDeadline(time.Now().Add(time.Second))
	n, err := server.Read(buf)
	require.NoError(err)
	require.NoError(<-errCh)

	payload, used, err := wire.ReadFrame(buf[:n])
	require.NoError(err)
	require.Equal(n, used)

	decoded, err := command.DecodeWireCmd(payload)
	require.NoError(err)
	require.Equal("SET", decoded.Name)
	require.Equal([][]byte{[]byte("k"), []byte("v")}, decoded.Args)
}

func TestConnSinkCloseClosesConn(t *testing.T) {
	require := require.New(t)
	client, server := net.Pipe()
	defer server.Close()

	sink := NewConnSink(client)
	require.NoError(sink.Close())

	_, err := client.Write([]byte("x"))
	require.Error(err)
}
