package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/pipeline"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are handled by the CORS configuration of the
		// deployment; the socket itself accepts any origin.
		return true
	},
}

// WebSocketProcessRequest is a processing request sent over the socket.
// Image carries the raw file bytes, base64 encoded by json.
type WebSocketProcessRequest struct {
	Technique string                 `json:"technique"`
	Image     []byte                 `json:"image,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketProcessResponse is a processing response sent over the socket.
type WebSocketProcessResponse struct {
	Type      string         `json:"type"`
	Status    string         `json:"status"` // "processing", "completed", "error"
	Result    *ProcessResult `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// processWebSocketHandler handles WebSocket connections for interactive
// processing.
func (s *Server) processWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hanging connections; pongs extend it.
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage parses and dispatches one request message.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketProcessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err), "")
		return
	}

	requestID := uuid.NewString()

	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided", requestID)
		return
	}
	if _, err := technique.Get(req.Technique); err != nil {
		s.sendWebSocketError(conn, "invalid_request", err.Error(), requestID)
		return
	}

	s.sendWebSocketResponse(conn, WebSocketProcessResponse{
		Type:      "process_response",
		Status:    "processing",
		RequestID: requestID,
	})

	s.processWebSocketImage(conn, req, requestID)
}

// processWebSocketImage runs the requested technique and streams back
// the result.
func (s *Server) processWebSocketImage(conn *websocket.Conn, req WebSocketProcessRequest, requestID string) {
	params, err := s.extractWebSocketParams(req.Options)
	if err != nil {
		s.sendWebSocketError(conn, "invalid_request", err.Error(), requestID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	res, err := s.processor.ProcessBytes(ctx, req.Image, pipeline.Request{
		Technique: req.Technique,
		Params:    params,
	})
	duration := time.Since(start)

	if err != nil {
		processRequestsTotal.WithLabelValues(req.Technique, "error").Inc()
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Processing failed: %v", err), requestID)
		return
	}

	processRequestsTotal.WithLabelValues(req.Technique, "success").Inc()
	processingDuration.WithLabelValues(req.Technique).Observe(duration.Seconds())

	encoded, err := encodeResultPNG(res)
	if err != nil {
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("Encoding failed: %v", err), requestID)
		return
	}

	s.sendWebSocketResponse(conn, WebSocketProcessResponse{
		Type:      "process_response",
		Status:    "completed",
		Result:    resultPayload(res, encoded),
		RequestID: requestID,
	})
}

// extractWebSocketParams applies option overrides on top of the
// configured defaults.
func (s *Server) extractWebSocketParams(options map[string]interface{}) (technique.Params, error) {
	p := s.processor.DefaultParams()

	if options == nil {
		return p, nil
	}

	intOpt := func(key string, dst *int) error {
		val, ok := options[key]
		if !ok {
			return nil
		}
		f, ok := val.(float64)
		if !ok {
			return fmt.Errorf("invalid %s: %v", key, val)
		}
		*dst = int(f)
		return nil
	}
	floatOpt := func(key string, dst *float64) error {
		val, ok := options[key]
		if !ok {
			return nil
		}
		f, ok := val.(float64)
		if !ok {
			return fmt.Errorf("invalid %s: %v", key, val)
		}
		*dst = f
		return nil
	}

	if _, ok := options["kernel_size"]; ok {
		if err := intOpt("kernel_size", &p.GaussianKernel); err != nil {
			return p, err
		}
		p.MedianKernel = p.GaussianKernel
	}
	if err := floatOpt("sigma", &p.GaussianSigma); err != nil {
		return p, err
	}
	if err := floatOpt("strength", &p.SharpenStrength); err != nil {
		return p, err
	}
	if err := intOpt("block_size", &p.AdaptiveBlock); err != nil {
		return p, err
	}
	if err := floatOpt("c", &p.AdaptiveC); err != nil {
		return p, err
	}
	if err := intOpt("clusters", &p.KMeansClusters); err != nil {
		return p, err
	}

	return p, nil
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketProcessResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message, requestID string) {
	s.sendWebSocketResponse(conn, WebSocketProcessResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
