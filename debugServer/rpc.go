package debugServer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/sourcegraph/jsonrpc2"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/watchpoint"
)

// Application error codes, outside the range reserved by JSON-RPC.
const (
	CodeExpressionError int64 = 1
	CodeWatchpointError int64 = 2
	CodeProgramEnded    int64 = 3
	CodeCommandError    int64 = 4
)

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ListenAndServe serves a single client on stdin and stdout until it
// disconnects.
func (s *Server) ListenAndServe() {
	<-s.ServeConn(context.Background(), stdrwc{}).DisconnectNotify()
}

// ListenAndServeTCP accepts clients on addr until the listener fails.
func (s *Server) ListenAndServeTCP(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "could not bind to address %s", addr)
	}
	defer lis.Close()

	log.Println("RISC-V Monitor: listening for TCP connections on", addr)

	connectionCount := 0
	for {
		conn, err := lis.Accept()
		if err != nil {
			return errors.Wrap(err, "failed to accept incoming connection")
		}
		connectionCount++
		connectionID := connectionCount
		log.Printf("RISC-V Monitor: received incoming connection #%d\n", connectionID)

		rpcConn := s.ServeConn(context.Background(), conn)
		go func() {
			<-rpcConn.DisconnectNotify()
			log.Printf("RISC-V Monitor: connection #%d closed\n", connectionID)
		}()
	}
}

// ServeConn speaks JSON-RPC on rwc. The returned connection closes when the
// peer goes away.
func (s *Server) ServeConn(ctx context.Context, rwc io.ReadWriteCloser) *jsonrpc2.Conn {
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), handler{s})
	s.addRPC(conn)
	go func() {
		<-conn.DisconnectNotify()
		s.removeRPC(conn)
	}()
	return conn
}

type handler struct {
	server *Server
}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("RISC-V Monitor: received request: %s", req.Method)

	var result interface{}
	var err error
	switch req.Method {
	case "evaluate":
		result, err = h.evaluate(req)
	case "watch":
		result, err = h.watch(req)
	case "unwatch":
		result, err = h.unwatch(req)
	case "watchpoints":
		result, err = h.watchpoints()
	case "step":
		result, err = h.step(req)
	case "continue":
		result, err = h.run("c")
	case "registers":
		result = h.server.monitor.Registers()
	case "exec":
		result, err = h.exec(req)

	// quitting
	case "shutdown", "exit":
		if !req.Notif {
			conn.Reply(ctx, req.ID, nil)
		}
		conn.Close()
		return
	default:
		err = &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not supported: %s", req.Method)}
	}

	if req.Notif {
		return
	}
	if err != nil {
		conn.ReplyWithError(ctx, req.ID, toRPCError(err))
		return
	}
	conn.Reply(ctx, req.ID, result)
}

func hasParams(req *jsonrpc2.Request) bool {
	return req.Params != nil && string(*req.Params) != "null"
}

func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if !hasParams(req) {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing parameters"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid parameters: " + err.Error()}
	}
	return nil
}

func toRPCError(err error) *jsonrpc2.Error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	code := CodeCommandError
	switch {
	case expression.Errors.IsParseError(err), expression.Errors.IsUnknownRegister(err),
		expression.Errors.IsDivideByZero(err), expression.Errors.IsMemoryAccess(err):
		code = CodeExpressionError
	case watchpoint.Errors.IsNoFreeSlot(err), watchpoint.Errors.IsNotFound(err):
		code = CodeWatchpointError
	case errors.Is(err, emulator.ErrProgramEnded):
		code = CodeProgramEnded
	}
	return &jsonrpc2.Error{Code: code, Message: err.Error()}
}

func (h handler) evaluate(req *jsonrpc2.Request) (interface{}, error) {
	params := ExpressionParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	value, err := h.server.monitor.Evaluate(params.Expression)
	if err != nil {
		return nil, err
	}
	return EvaluateResult{Value: value}, nil
}

func (h handler) watch(req *jsonrpc2.Request) (interface{}, error) {
	params := ExpressionParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	id, err := h.server.monitor.Watch(params.Expression)
	if err != nil {
		return nil, err
	}
	return WatchResult{ID: id}, nil
}

func (h handler) unwatch(req *jsonrpc2.Request) (interface{}, error) {
	params := UnwatchParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return nil, h.server.monitor.Unwatch(params.ID)
}

func (h handler) watchpoints() (interface{}, error) {
	infos := h.server.monitor.Watchpoints().List()
	result := make([]WatchpointInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, WatchpointInfo{ID: info.ID, Expr: info.Expr, Value: info.Value})
	}
	return result, nil
}

func (h handler) step(req *jsonrpc2.Request) (interface{}, error) {
	params := StepParams{Count: 1}
	if hasParams(req) {
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
	}
	if params.Count == 0 {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "count must be positive"}
	}
	return h.run(fmt.Sprintf("si %d", params.Count))
}

func (h handler) run(line string) (interface{}, error) {
	out, err := h.server.monitor.Exec(line)
	if err != nil {
		return nil, err
	}

	state, pc := h.server.monitor.State()
	return RunResult{Output: out, State: state.String(), PC: pc}, nil
}

func (h handler) exec(req *jsonrpc2.Request) (interface{}, error) {
	params := ExecParams{}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	return h.run(params.Line)
}
