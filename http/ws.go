package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"houseprice/pricing"
)

const (
	wsIdleTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsMaxMessage   = 64 << 10
)

// streamReply mirrors the HTTP predict response and carries the status the
// HTTP endpoint would have returned.
type streamReply struct {
	Status int `json:"status"`
	*pricing.Estimate
	Error string `json:"error,omitempty"`
}

// handlePredictStream answers each text frame with one prediction. Frames are
// handled in order; a failed prediction does not close the connection.
func (a *API) handlePredictStream(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	requestID := GetRequestID(r.Context())
	ctx := r.Context()
	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		messageType, body, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.log.Info("websocket closed", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var reply streamReply
		if !a.estimator.Ready() {
			a.recordOutcome(pricing.ErrModelUnavailable)
			reply = streamReply{Status: http.StatusInternalServerError, Error: "Model not loaded"}
		} else if status, result, err := a.predict(ctx, body); err != nil {
			reply = streamReply{Status: status, Error: errorMessage(err)}
		} else {
			reply = streamReply{Status: status, Estimate: &result}
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			a.log.Warn("websocket write failed", zap.String("request_id", requestID), zap.Error(err))
			return
		}
	}
}
