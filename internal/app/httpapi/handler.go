// Package httpapi exposes the application services over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	app "github.com/thefreed/feedcore/internal/app"
	"github.com/thefreed/feedcore/internal/app/domain/conversation"
	"github.com/thefreed/feedcore/internal/app/domain/feed"
	"github.com/thefreed/feedcore/internal/app/domain/message"
	"github.com/thefreed/feedcore/internal/app/domain/post"
	"github.com/thefreed/feedcore/internal/app/services/messaging"
	"github.com/thefreed/feedcore/internal/apperrors"
	"github.com/thefreed/feedcore/internal/middleware"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
}

// NewHandler returns a mux exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}
	mux := http.NewServeMux()
	mux.HandleFunc("/dm/", h.directMessages)
	mux.HandleFunc("/feed", h.feed)
	mux.HandleFunc("/posts", h.posts)
	mux.HandleFunc("/search", h.search)
	mux.HandleFunc("/search/", h.search)
	mux.HandleFunc("/healthz", h.health)
	return mux
}

func (h *handler) directMessages(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/dm"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	subject := middleware.GetUserID(r.Context())

	if parts[0] == "with" {
		if len(parts) != 2 || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.listWith(w, r, subject, parts[1])
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodPost:
			h.send(w, r, subject, parts[0])
		case http.MethodGet:
			h.list(w, r, parts[0])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "read" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.markRead(w, r, subject, parts[0])
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *handler) send(w http.ResponseWriter, r *http.Request, senderID, recipientID string) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conv, msg, err := h.app.Messages.Send(r.Context(), senderID, recipientID, payload.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Conversation conversation.Conversation `json:"conversation"`
		Message      message.Message           `json:"message"`
	}{Conversation: conv, Message: msg})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request, conversationID string) {
	limit, cursor := pageParams(r)
	_, page, next, err := h.app.Messages.List(r.Context(), conversationID, limit, cursor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagePage{
		Items:      page,
		NextCursor: next,
	})
}

func (h *handler) listWith(w http.ResponseWriter, r *http.Request, subjectID, otherID string) {
	limit, cursor := pageParams(r)
	conv, page, next, err := h.app.Messages.ListWith(r.Context(), subjectID, otherID, limit, cursor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagePage{
		Conversation: &conv,
		Items:        page,
		NextCursor:   next,
	})
}

func (h *handler) markRead(w http.ResponseWriter, r *http.Request, readerID, conversationID string) {
	count, at, err := h.app.Messages.MarkRead(r.Context(), conversationID, readerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Updated int       `json:"updated"`
		ReadAt  time.Time `json:"readAt"`
	}{Updated: count, ReadAt: at})
}

func (h *handler) feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	subject := middleware.GetUserID(r.Context())
	limit, cursor := pageParams(r)

	page, err := h.app.Feed.Build(r.Context(), subject, limit, cursor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) posts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Content    string   `json:"content"`
		Language   string   `json:"lang"`
		Hashtags   []string `json:"hashtags"`
		Visibility string   `json:"visibility"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stored, err := h.app.Feed.Publish(r.Context(), post.Post{
		AuthorID:   middleware.GetUserID(r.Context()),
		Content:    payload.Content,
		Language:   payload.Language,
		Hashtags:   payload.Hashtags,
		Visibility: feed.Visibility(payload.Visibility),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	lang := r.URL.Query().Get("lang")
	scope := strings.Trim(strings.TrimPrefix(r.URL.Path, "/search"), "/")

	switch scope {
	case "":
		results, err := h.app.Search.All(r.Context(), query, lang)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	case "users":
		results, err := h.app.Search.Users(r.Context(), query)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	case "posts":
		results, err := h.app.Search.Posts(r.Context(), query, lang)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	case "hashtags":
		results, err := h.app.Search.Hashtags(r.Context(), query)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messagePage struct {
	Conversation *conversation.Conversation `json:"conversation,omitempty"`
	Items        []message.Message          `json:"items"`
	NextCursor   string                     `json:"nextCursor,omitempty"`
}

func pageParams(r *http.Request) (int, string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	return limit, r.URL.Query().Get("cursor")
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, messaging.ErrContentTooLong):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case apperrors.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err)
	case apperrors.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
