package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// SSEWriter 以 Server-Sent Events 格式写出 JSON 数据并逐条 flush。
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter 设置 event-stream 响应头，ResponseWriter 不支持 flush 时返回 false。
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	SetupSSEHeaders(w)
	return &SSEWriter{w: w, flusher: flusher}, true
}

// Send 发送一个 data 数据块
func (s *SSEWriter) Send(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[sse] failed to marshal payload: %v", err)
		return
	}

	if _, err := s.w.Write([]byte("data: ")); err != nil {
		log.Printf("[sse] failed to write prefix: %v", err)
		return
	}
	if _, err := s.w.Write(data); err != nil {
		log.Printf("[sse] failed to write payload: %v", err)
		return
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		log.Printf("[sse] failed to write terminator: %v", err)
		return
	}
	s.flusher.Flush()
}

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}
