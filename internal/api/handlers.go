package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/amhamid/go-marketplace/internal/messaging"
	"github.com/amhamid/go-marketplace/internal/server"
	"github.com/amhamid/go-marketplace/internal/types"
	"github.com/gorilla/websocket"
)

type SendMessageRequest struct {
	To        int    `json:"to"`
	Body      string `json:"body"`
	Warning   bool   `json:"warning"`
	Important bool   `json:"important"`
	ReplyTo   *int   `json:"reply_to"`
}

type MarkSeenRequest struct {
	UserId int `json:"user_id"`
}

type ConversationResponse struct {
	Messages    []types.Message `json:"messages"`
	UnreadCount int             `json:"unread_count"`
}

func (s *MarketApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *MarketApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *MarketApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.messenger.Send(identity, messaging.SendParams{
		To:        req.To,
		Body:      req.Body,
		Warning:   req.Warning,
		Important: req.Important,
		ReplyTo:   req.ReplyTo,
	})
	if err != nil {
		errResp := messagingError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, msg)
}

func (s *MarketApp) getConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherId, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, unread, err := s.messenger.Conversation(identity.Id, otherId)
	if err != nil {
		s.log.Println("get conversation:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, ConversationResponse{
		Messages:    messages,
		UnreadCount: unread,
	})
}

func (s *MarketApp) getMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	detail, err := s.messenger.Message(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// only the two participants may read a message
	if detail.SenderId != identity.Id && detail.RecipientId != identity.Id && !identity.Role.Elevated() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, detail)
}

func (s *MarketApp) markSeen(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req MarkSeenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.messenger.MarkSeen(identity.Id, req.UserId); err != nil {
		s.log.Println("mark seen:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *MarketApp) getConversations(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	summaries, err := s.messenger.Conversations(identity.Id)
	if err != nil {
		s.log.Println("list conversations:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, summaries)
}

func messagingError(err error) *ApiError {
	var verr *messaging.ValidationError

	switch {
	case errors.Is(err, messaging.ErrSelfMessage):
		return NewValidationError(err.Error())
	case errors.As(err, &verr):
		return NewValidationError(verr.Error())
	case errors.Is(err, messaging.ErrPermissionDenied):
		return NewForbiddenError()
	case errors.Is(err, messaging.ErrRecipientNotFound):
		return NewNotFoundError()
	default:
		return NewInternalServerError(err)
	}
}

func (s *MarketApp) serveWs(w http.ResponseWriter, r *http.Request) {
	identity, ok := Identity(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(identity.Id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(toWireUser(user), conn, s.cs, s.messenger, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
