package main

import (
	"encoding/json"
	"time"

	"adminpanel/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// channelEventsHandler serves the authenticated feed; the channel comes from
// the query string and defaults to the students channel.
func (a *app) channelEventsHandler(c *gin.Context) {
	channel := c.DefaultQuery("channel", notify.StudentsChannel)
	a.eventsHandler(channel)(c)
}

// eventsHandler upgrades to a websocket and streams envelopes published on
// channel until either side goes away.
func (a *app) eventsHandler(channel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := a.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response.
			return
		}
		defer conn.Close()

		sub := a.hub.Subscribe(channel)
		defer sub.Close()
		a.metrics.liveClients.Inc()
		defer a.metrics.liveClients.Dec()

		ctx := c.Request.Context()
		go readPump(conn, sub)

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-sub.Events():
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
				b, err := json.Marshal(env)
				if err != nil {
					a.log.Warn(ctx, "encode envelope", "err", err)
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}
}

// readPump drains client frames so control messages are processed and ends
// the subscription when the client disconnects.
func readPump(conn *websocket.Conn, sub *notify.Subscription) {
	defer sub.Close()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
