// Package debugServer exposes a monitor to remote clients: JSON-RPC 2.0 over
// stdio or TCP, and a WebSocket console for the browser.
package debugServer

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/monitor"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/watchpoint"
)

type webClient struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func (c *webClient) writeJSON(v interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.conn.WriteJSON(v)
}

// Server shares one monitor between every connected client.
type Server struct {
	monitor *monitor.Monitor

	mutex      sync.Mutex
	rpcConns   map[*jsonrpc2.Conn]struct{}
	webClients map[*webClient]struct{}
}

func NewServer(m *monitor.Monitor) *Server {
	s := &Server{
		monitor:    m,
		rpcConns:   map[*jsonrpc2.Conn]struct{}{},
		webClients: map[*webClient]struct{}{},
	}
	m.SetHitCallback(s.broadcastHit)
	return s
}

// broadcastHit runs with the monitor locked, so it must not call back into it.
func (s *Server) broadcastHit(hit watchpoint.Hit) {
	params := WatchpointHitParams{ID: hit.ID, Expr: hit.Expr, Old: hit.Old, New: hit.New}

	s.mutex.Lock()
	rpcConns := make([]*jsonrpc2.Conn, 0, len(s.rpcConns))
	for conn := range s.rpcConns {
		rpcConns = append(rpcConns, conn)
	}
	webClients := make([]*webClient, 0, len(s.webClients))
	for client := range s.webClients {
		webClients = append(webClients, client)
	}
	s.mutex.Unlock()

	for _, conn := range rpcConns {
		if err := conn.Notify(context.Background(), "watchpoint/hit", params); err != nil {
			util.LogF("could not notify rpc client: %v", err)
		}
	}
	for _, client := range webClients {
		if err := client.writeJSON(WatchpointMessage{Type: "watchpoint", WatchpointHitParams: params}); err != nil {
			util.LogF("could not notify web client: %v", err)
		}
	}
}

func (s *Server) addRPC(conn *jsonrpc2.Conn) {
	s.mutex.Lock()
	s.rpcConns[conn] = struct{}{}
	s.mutex.Unlock()
}

func (s *Server) removeRPC(conn *jsonrpc2.Conn) {
	s.mutex.Lock()
	delete(s.rpcConns, conn)
	s.mutex.Unlock()
}

func (s *Server) addWeb(client *webClient) {
	s.mutex.Lock()
	s.webClients[client] = struct{}{}
	s.mutex.Unlock()
}

func (s *Server) removeWeb(client *webClient) {
	s.mutex.Lock()
	delete(s.webClients, client)
	s.mutex.Unlock()
}
