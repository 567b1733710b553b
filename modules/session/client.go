package session

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errSendBufferFull = errors.New("send buffer full")

// Client - WebSocket 연결 하나
type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newClient(conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
		closed:    make(chan struct{}),
	}
}

// Send - 블로킹하지 않는다. 버퍼가 차면 오류
func (c *Client) Send(msg OutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return errNoClient
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return errNoClient
	default:
		zap.S().Warnf("⚠️ [Session %s] Send buffer full, dropping %s", c.sessionID, msg.Type)
		return errSendBufferFull
	}
}

// Close - writePump에 종료 신호
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// readPump - 클라이언트로부터 메시지 읽기
func (c *Client) readPump(session *Session, onClose func()) {
	defer func() {
		onClose()
		c.Close()
		c.conn.Close()
	}()

	for {
		var message InboundMessage
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Warnf("WebSocket error: %v", err)
			}
			return
		}

		switch message.Type {
		case TypeCapabilityResult:
			// 응답은 로깅하지 않음 (Bridge가 로깅)
		default:
			zap.S().Debugf("📨 [Session %s] %s", c.sessionID, message.Type)
		}

		session.Handle(message)
	}
}

// writePump - 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				zap.S().Warnf("WebSocket write error: %v", err)
				c.Close()
				return
			}
		case <-c.closed:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
