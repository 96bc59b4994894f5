package debugServer

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebHandler serves the console page on / and the command socket on /ws.
func (s *Server) WebHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

// ListenAndServeWeb runs the browser console on addr.
func (s *Server) ListenAndServeWeb(addr string) error {
	log.Printf("Connect to the monitor at http://localhost%s", addr)
	return errors.Wrap(http.ListenAndServe(addr, s.WebHandler()), "web console")
}

// handleSocket treats every text frame as a command line. The reply is a
// console message holding the command's output, or an error message.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	client := &webClient{conn: conn}
	s.addWeb(client)
	defer s.removeWeb(client)

	for {
		// read in a message
		mType, messageBytes, err := conn.ReadMessage()
		if err != nil {
			util.LogF("web console read: %v", err)
			return
		}
		if mType != websocket.TextMessage {
			continue
		}

		out, err := s.monitor.Exec(string(messageBytes))
		if out != "" {
			if err := client.writeJSON(ConsoleMessage{Type: "console", Text: out}); err != nil {
				util.LogF("web console write: %v", err)
				return
			}
		}
		if err != nil {
			if err := client.writeJSON(ConsoleMessage{Type: "error", Text: err.Error() + "\n"}); err != nil {
				util.LogF("web console write: %v", err)
				return
			}
		}

		if s.monitor.Quitting() {
			client.writeJSON(ConsoleMessage{Type: "console", Text: "Monitor has quit.\n"})
			return
		}
	}
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

var htmlPage = `<html>
<head>
	<title>RISC-V Monitor</title>
</head>
<body style="background-color: #1E1E1E;">
	<h1 style="color: white;">RISC-V Monitor</h1>
	<div style="width: 980px; padding: 10px; color: white; font-size: 1.2em; font-family: monospace; background-color: black; height: 500px; overflow-y: auto; white-space: pre-wrap; border: 2px solid white;" id="console"></div>
	<input id="command" style="width: 1004px; font-family: monospace; font-size: 1.2em;" placeholder="help" autofocus/>

	<script>
		var consoleDiv = document.getElementById("console");
		var socket = new WebSocket("ws://" + location.host + "/ws");

		function print(text, color) {
			var span = document.createElement("span");
			span.style.color = color;
			span.textContent = text;
			consoleDiv.appendChild(span);
			consoleDiv.scrollTop = consoleDiv.scrollHeight;
		}

		socket.onmessage = function(event) {
			var data = JSON.parse(event.data);
			if (data.type == "console") {
				print(data.text, "white");
			} else if (data.type == "error") {
				print(data.text, "#F44747");
			} else if (data.type == "watchpoint") {
				print("Watchpoint " + data.id + ": " + data.expr + "\n", "#4EC9B0");
			}
		};

		socket.onclose = function() {
			print("connection closed\n", "#F44747");
		};

		document.getElementById("command").onkeydown = function(event) {
			if (event.key != "Enter") {
				return;
			}
			var line = event.target.value;
			print("(monitor) " + line + "\n", "#9CDCFE");
			socket.send(line);
			event.target.value = "";
		};
	</script>
</body>
</html>`
