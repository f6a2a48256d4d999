package handler

import (
	"context"
	"net/http"
	"time"

	"contracthub/internal/ens"
	"contracthub/internal/publish"

	"github.com/gorilla/websocket"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSOutbound struct {
	Type     string                            `json:"type"`
	Index    *int                              `json:"index,omitempty"`
	Contract *publish.PublishedContractDetails `json:"contract,omitempty"`
	Count    int                               `json:"count,omitempty"`
	Code     string                            `json:"code,omitempty"`
	Message  string                            `json:"message,omitempty"`
}

// WatchPublishedContracts streams a publisher's contracts over a websocket
// as each one's metadata resolves, then sends a "done" message and closes.
func (h *Handler) WatchPublishedContracts(w http.ResponseWriter, r *http.Request) {
	publisher := ens.Normalize(pathParam(r, "address"))

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		h.logger.Warn("watch ws set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	writeCh := make(chan watchWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(watchWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// The client sends nothing; reading keeps pongs flowing and notices a
	// closed connection.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	push := func(out watchWSOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	list, err := h.svc.WatchPublishedContracts(ctx, publisher, func(i int, d publish.PublishedContractDetails) {
		push(watchWSOutbound{Type: "contract", Index: &i, Contract: &d})
	})
	if err != nil {
		push(watchWSOutbound{Type: "error", Code: http.StatusText(statusFor(err)), Message: err.Error()})
	} else {
		push(watchWSOutbound{Type: "done", Count: len(list)})
	}
	close(writeCh)
	<-writerDone
}
