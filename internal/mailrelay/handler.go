package mailrelay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"
)

const (
	maxBodyBytes = 64 << 10
	sendTimeout  = 10 * time.Second
)

type Options struct {
	From          string
	To            []string
	SubjectPrefix string
}

type Handler struct {
	sender Sender
	opts   Options
}

func NewHandler(sender Sender, opts Options) *Handler {
	return &Handler{sender: sender, opts: opts}
}

type successResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP accepts a JSON submission on POST. Invalid input answers 400,
// a provider failure 502 and success 200 with the provider's message id.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if h.sender == nil || len(h.opts.To) == 0 {
		log.Printf("mailrelay: %v", ErrNotConfigured)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "mail relay not configured"})
		return
	}

	var sub Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	msg, err := Compose(sub, h.opts.From, h.opts.To, h.opts.SubjectPrefix)
	if err != nil {
		log.Printf("mailrelay: compose: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to send email"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sendTimeout)
	defer cancel()
	id, err := h.sender.Send(ctx, msg)
	if err != nil {
		log.Printf("mailrelay: send: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrDelivery) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: "failed to send email"})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, ID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("mailrelay: write response: %v", err)
	}
}
