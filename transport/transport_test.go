package transport_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/carn181/lever/transport"
)

func TestSocketRoundTrip(t *testing.T) {
	expected := []byte("Content-Length: 4\r\n\r\nHey!")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var server transport.Transport
		server.Init(transport.Server, transport.Socket)
		defer server.Close()

		msg, err := server.Read()
		if err != nil {
			t.Error(err)
			return
		}
		if !bytes.Equal(msg, expected) {
			t.Errorf("got %q, want %q", msg, expected)
		}
	}()

	go func() {
		defer wg.Done()
		// The client dials once with no retry, so give the server goroutine
		// time to start listening first.
		time.Sleep(200 * time.Millisecond)
		var client transport.Transport
		client.Init(transport.Client, transport.Socket)
		defer client.Close()

		if err := client.Write([]byte("Hey!")); err != nil {
			t.Error(err)
		}
	}()

	wg.Wait()
}

func TestGetMethod(t *testing.T) {
	msg := []byte("Content-Length: 39\r\n\r\n" + `{"jsonrpc":"2.0","method":"initialize"}`)
	method, err := transport.GetMethod(msg)
	if err != nil {
		t.Fatal(err)
	}
	if method != "initialize" {
		t.Errorf("got method %q, want %q", method, "initialize")
	}
}
