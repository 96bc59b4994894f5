package util_test

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

func TestLogFGated(t *testing.T) {
	buf := &bytes.Buffer{}
	util.SetTraceOutput(log.New(buf, "", 0))
	defer func() { util.LoggingEnabled = false }()

	util.LoggingEnabled = false
	util.LogF("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("Expected no output while disabled, got %q", buf.String())
	}

	util.LoggingEnabled = true
	util.LogF("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("Expected trace output, got %q", buf.String())
	}
}

func TestLogFPostsToEndpoint(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received <- string(b)
	}))
	defer server.Close()

	util.LoggingEnabled = true
	util.LogEndpoint = server.URL
	defer func() {
		util.LoggingEnabled = false
		util.LogEndpoint = ""
	}()

	util.LogF("posted %d", 3)

	select {
	case message := <-received:
		if message != "posted 3" {
			t.Errorf("Expected \"posted 3\", got %q", message)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the message to be posted")
	}
}
