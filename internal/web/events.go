package web

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/notifications"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is the outgoing WebSocket message format.
type event struct {
	Type      string                `json:"type"` // "active_book" or "notice"
	NavTarget string                `json:"nav_target,omitempty"`
	Book      *models.Book          `json:"book,omitempty"`
	Notice    *notifications.Notice `json:"notice,omitempty"`
}

// handleEvents pushes active-book changes and new notices to the browser
// until the client goes away.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	books, cancelBooks := h.svc.ActiveBook().Subscribe()
	defer cancelBooks()
	notices, cancelNotices := h.notices.Subscribe()
	defer cancelNotices()

	// The client never sends anything; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket read: %v", err)
				}
				return
			}
		}
	}()

	for {
		var ev event
		select {
		case <-closed:
			return
		case book, ok := <-books:
			if !ok {
				return
			}
			ev = event{Type: "active_book", Book: book}
			if book != nil {
				ev.NavTarget = NavTarget(book.ID)
			} else {
				ev.NavTarget = NavTarget("")
			}
		case n, ok := <-notices:
			if !ok {
				return
			}
			ev = event{Type: "notice", Notice: &n}
		}

		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("web: websocket write: %v", err)
			return
		}
	}
}
