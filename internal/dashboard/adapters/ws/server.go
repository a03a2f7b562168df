package ws

import (
	"net/http"
	"time"
)

const readHeaderTimeout = 5 * time.Second

// NewServer создает отдельный net/http сервер для websocket подключений.
func NewServer(addr string, hub *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(Path, hub)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
