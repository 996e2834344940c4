package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quiz-delivery/internal/app"
	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/engine"
)

// WSHandler runs one delivery session per websocket connection. All events
// for a connection, whether sent by the client or generated by the engine's
// countdown, pass through a single loop, so transitions never race.
type WSHandler struct {
	service  *app.DeliveryService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.DeliveryService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Name string `json:"name"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	ChoiceID   string `json:"choiceId,omitempty"`
	Text       string `json:"text,omitempty"`
	Image      string `json:"image,omitempty"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// handoffPayload carries the post-completion artifacts the client can offer:
// the teacher message link and the downloadable transcript.
type handoffPayload struct {
	MessageLink string `json:"messageLink,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// ServeWS upgrades HTTP requests to websockets and runs the session loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("docId")
	if docID == "" {
		http.Error(w, "missing docId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	// Engine-generated events join the client's events on one channel; the
	// loop below is the only consumer, which is what serializes transitions.
	events := make(chan engine.Event, 32)
	eng, err := h.service.OpenSession(r.Context(), docID, func(ev engine.Event) {
		select {
		case events <- ev:
		default:
			// Backlogged session; ticks are periodic, dropping one is harmless.
		}
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: errorMessage(err)}})
		return
	}
	defer eng.Stop()

	send := make(chan any, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				// Keep draining so the session loop never blocks on send.
				for range send {
				}
				return
			}
		}
	}()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				return
			}
			ev, err := decodeEvent(inbound)
			if err != nil {
				send <- outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			events <- ev
		}
	}()

	f := eng.Start(r.Context())
	send <- outboundMessage[engine.Frame]{Type: "frame", Payload: f}
	lastScreen := f.Screen

	for {
		select {
		case ev := <-events:
			f = eng.Apply(r.Context(), ev)
			send <- outboundMessage[engine.Frame]{Type: "frame", Payload: f}
			if f.Screen == engine.ScreenCompleted && lastScreen != engine.ScreenCompleted {
				send <- outboundMessage[handoffPayload]{Type: "handoff", Payload: handoffPayload{
					MessageLink: eng.MessageLink(),
					Transcript:  eng.TranscriptText(),
				}}
			}
			lastScreen = f.Screen
		case <-readerDone:
			eng.Stop()
			close(send)
			<-writerDone
			return
		}
	}
}

// decodeEvent maps a wire message onto an engine event.
func decodeEvent(msg inboundMessage) (engine.Event, error) {
	switch msg.Type {
	case "start":
		var p startPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return engine.Event{}, fmt.Errorf("invalid start payload")
			}
		}
		return engine.Event{Type: engine.EvStart, Name: p.Name}, nil
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return engine.Event{}, fmt.Errorf("invalid answer payload")
		}
		return engine.Event{Type: engine.EvAnswer, QuestionID: p.QuestionID, Answer: domain.Answer{
			ChoiceID: p.ChoiceID,
			Text:     p.Text,
			Image:    p.Image,
		}}, nil
	case "jump":
		var p jumpPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return engine.Event{}, fmt.Errorf("invalid jump payload")
		}
		return engine.Event{Type: engine.EvJump, Index: p.Index}, nil
	case "next":
		return engine.Event{Type: engine.EvNext}, nil
	case "prev":
		return engine.Event{Type: engine.EvPrev}, nil
	case "finish":
		return engine.Event{Type: engine.EvFinish}, nil
	case "back":
		return engine.Event{Type: engine.EvBack}, nil
	case "submit":
		return engine.Event{Type: engine.EvSubmit}, nil
	case "retry":
		return engine.Event{Type: engine.EvRetry}, nil
	case "review":
		return engine.Event{Type: engine.EvReview}, nil
	case "exitRequest":
		return engine.Event{Type: engine.EvExitRequest}, nil
	case "exitConfirm":
		return engine.Event{Type: engine.EvExitConfirm}, nil
	case "exitCancel":
		return engine.Event{Type: engine.EvExitCancel}, nil
	case "focusLost":
		return engine.Event{Type: engine.EvFocusLost}, nil
	case "focusGained":
		return engine.Event{Type: engine.EvFocusGained}, nil
	case "online":
		return engine.Event{Type: engine.EvWentOnline}, nil
	case "offline":
		return engine.Event{Type: engine.EvWentOffline}, nil
	}
	return engine.Event{}, fmt.Errorf("unsupported message type %q", msg.Type)
}

func errorMessage(err error) string {
	if err == domain.ErrDocumentNotFound {
		return "document not found"
	}
	return err.Error()
}

// Healthz reports liveness for load balancers.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
