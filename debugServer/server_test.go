package debugServer_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugServer"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/monitor"
)

func newServer(t *testing.T) *debugServer.Server {
	t.Helper()
	mem := emulator.NewMemoryImage()
	img, err := emulator.LoadImage(mem, "", "", emulator.DefaultMemoryBase)
	if err != nil {
		t.Fatal(err)
	}
	emu := emulator.NewEmulator(emulator.EmulatorConfig{Memory: mem, ResetVector: img.Entry})
	return debugServer.NewServer(monitor.New(emu))
}

type notificationHandler struct {
	hits chan debugServer.WatchpointHitParams
}

func (h notificationHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != "watchpoint/hit" || req.Params == nil {
		return
	}
	params := debugServer.WatchpointHitParams{}
	if err := json.Unmarshal(*req.Params, &params); err == nil {
		h.hits <- params
	}
}

func dialRPC(t *testing.T, s *debugServer.Server) (*jsonrpc2.Conn, chan debugServer.WatchpointHitParams) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	s.ServeConn(context.Background(), serverSide)

	hits := make(chan debugServer.WatchpointHitParams, 8)
	client := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), notificationHandler{hits})
	t.Cleanup(func() { client.Close() })
	return client, hits
}

func validateRPCError(t *testing.T, err error, code int64) {
	t.Helper()
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok {
		t.Fatalf("expected a jsonrpc2 error, got %v", err)
	}
	if rpcErr.Code != code {
		t.Errorf("expected error code %d, got %d (%s)", code, rpcErr.Code, rpcErr.Message)
	}
}

func TestRPCEvaluate(t *testing.T) {
	client, _ := dialRPC(t, newServer(t))
	ctx := context.Background()

	result := debugServer.EvaluateResult{}
	if err := client.Call(ctx, "evaluate", debugServer.ExpressionParams{Expression: "(1 + 2) * (*0x80000000)"}, &result); err != nil {
		t.Fatal(err)
	}
	if result.Value != 3*0x297 {
		t.Errorf("expected %d, got %d", 3*0x297, result.Value)
	}

	err := client.Call(ctx, "evaluate", debugServer.ExpressionParams{Expression: "1 +"}, &result)
	validateRPCError(t, err, debugServer.CodeExpressionError)

	err = client.Call(ctx, "evaluate", nil, &result)
	validateRPCError(t, err, jsonrpc2.CodeInvalidParams)

	err = client.Call(ctx, "frobnicate", nil, nil)
	validateRPCError(t, err, jsonrpc2.CodeMethodNotFound)
}

func TestRPCWatchAndContinue(t *testing.T) {
	client, hits := dialRPC(t, newServer(t))
	ctx := context.Background()

	watch := debugServer.WatchResult{}
	if err := client.Call(ctx, "watch", debugServer.ExpressionParams{Expression: "*0x80000010"}, &watch); err != nil {
		t.Fatal(err)
	}
	if watch.ID != 0 {
		t.Errorf("expected watchpoint 0, got %d", watch.ID)
	}

	run := debugServer.RunResult{}
	if err := client.Call(ctx, "continue", nil, &run); err != nil {
		t.Fatal(err)
	}
	if run.State != "stopped" || run.PC != 0x80000008 || !strings.HasPrefix(run.Output, "Watchpoint 0: *0x80000010\n") {
		t.Errorf("unexpected run result %+v", run)
	}

	select {
	case hit := <-hits:
		if hit.ID != 0 || hit.Old != 0xdeadbeef || hit.New != 0xdeadbe00 {
			t.Errorf("unexpected hit %+v", hit)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no watchpoint notification")
	}

	infos := []debugServer.WatchpointInfo{}
	if err := client.Call(ctx, "watchpoints", nil, &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Value != 0xdeadbe00 {
		t.Errorf("unexpected watchpoints %+v", infos)
	}

	if err := client.Call(ctx, "unwatch", debugServer.UnwatchParams{ID: 0}, nil); err != nil {
		t.Fatal(err)
	}
	err := client.Call(ctx, "unwatch", debugServer.UnwatchParams{ID: 0}, nil)
	validateRPCError(t, err, debugServer.CodeWatchpointError)

	if err := client.Call(ctx, "step", debugServer.StepParams{Count: 5}, &run); err != nil {
		t.Fatal(err)
	}
	if run.State != "end" || !strings.Contains(run.Output, "HIT GOOD TRAP") {
		t.Errorf("unexpected run result %+v", run)
	}

	err = client.Call(ctx, "step", nil, &run)
	validateRPCError(t, err, debugServer.CodeProgramEnded)
}

func TestRPCRegistersAndExec(t *testing.T) {
	client, _ := dialRPC(t, newServer(t))
	ctx := context.Background()

	run := debugServer.RunResult{}
	if err := client.Call(ctx, "exec", debugServer.ExecParams{Line: "si"}, &run); err != nil {
		t.Fatal(err)
	}

	regs := map[string]uint32{}
	if err := client.Call(ctx, "registers", nil, &regs); err != nil {
		t.Fatal(err)
	}
	if regs["t0"] != 0x80000000 || regs["pc"] != 0x80000004 || len(regs) != 33 {
		t.Errorf("unexpected registers %v", regs)
	}

	err := client.Call(ctx, "exec", debugServer.ExecParams{Line: "bogus"}, &run)
	validateRPCError(t, err, debugServer.CodeCommandError)
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	message := map[string]interface{}{}
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("read: %v", err)
	}
	return message
}

func sendLine(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebConsole(t *testing.T) {
	srv := httptest.NewServer(newServer(t).WebHandler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	sendLine(t, conn, "p 6 * 7")
	if m := readMessage(t, conn); m["type"] != "console" || m["text"] != "42\n" {
		t.Errorf("unexpected reply %v", m)
	}

	sendLine(t, conn, "p $bogus")
	if m := readMessage(t, conn); m["type"] != "error" {
		t.Errorf("expected an error reply, got %v", m)
	}

	sendLine(t, conn, "w *0x80000010")
	readMessage(t, conn)
	sendLine(t, conn, "c")
	if m := readMessage(t, conn); m["type"] != "watchpoint" || m["expr"] != "*0x80000010" {
		t.Errorf("expected a watchpoint message, got %v", m)
	}
	if m := readMessage(t, conn); m["type"] != "console" || !strings.Contains(m["text"].(string), "New value = 3735928320") {
		t.Errorf("unexpected reply %v", m)
	}

	sendLine(t, conn, "q")
	if m := readMessage(t, conn); m["type"] != "console" || m["text"] != "Monitor has quit.\n" {
		t.Errorf("unexpected reply %v", m)
	}
}

func TestWebPage(t *testing.T) {
	srv := httptest.NewServer(newServer(t).WebHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Type") != "text/html" {
		t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
}
