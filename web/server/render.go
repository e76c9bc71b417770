package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-raytracer/pkg/imageio"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// CompleteEvent is the final SSE payload of a streamed render
type CompleteEvent struct {
	ImageData string `json:"imageData"` // Base64 encoded image
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Stats     Stats  `json:"stats"`
}

// handleRender renders the requested scene and responds with the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, statusForError(err), fmt.Sprintf("Invalid request: %v", err))
		return
	}

	logger := NewWebLogger(r.URL.RawQuery, nil)
	img, stats := renderer.NewRaytracer(sceneObj, req.renderConfig(), logger).Render()

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, req.Format); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Failed to write image: %v", err)
	}
}

// handleRenderStream renders in the background and streams console output, then the image, via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, statusForError(err), fmt.Sprintf("Invalid request: %v", err))
		return
	}

	s.setSSEHeaders(w)

	consoleChan := make(chan ConsoleMessage, 100)
	done := make(chan CompleteEvent, 1)
	failed := make(chan error, 1)

	go func() {
		defer close(consoleChan)
		logger := NewWebLogger(r.URL.RawQuery, consoleChan)
		img, stats := renderer.NewRaytracer(sceneObj, req.renderConfig(), logger).Render()

		var buf bytes.Buffer
		if err := imageio.Encode(&buf, img, req.Format); err != nil {
			failed <- err
			return
		}
		done <- CompleteEvent{
			ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
			Format:    string(req.Format),
			Width:     req.Width,
			Height:    req.Height,
			Stats:     newStats(stats),
		}
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			// Client went away; the render finishes in the background and is dropped
			return
		case msg, ok := <-consoleChan:
			if !ok {
				select {
				case event := <-done:
					s.sendSSEJSON(w, flusher, "complete", event)
				case err := <-failed:
					s.sendSSEEvent(w, flusher, "error", err.Error())
				}
				return
			}
			s.sendSSEJSON(w, flusher, "console", msg)
		}
	}
}

func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendSSEJSON sends value as the JSON payload of an SSE event, or an error event if it cannot be encoded
func (s *Server) sendSSEJSON(w http.ResponseWriter, flusher http.Flusher, event string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		s.sendSSEEvent(w, flusher, "error", fmt.Sprintf("failed to encode %s event", event))
		return
	}
	s.sendSSEEvent(w, flusher, event, string(data))
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
