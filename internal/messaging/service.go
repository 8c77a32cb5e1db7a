package messaging

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/amhamid/go-marketplace/internal/database"
	"github.com/amhamid/go-marketplace/internal/types"
)

const maxBodyLength = 1000

// Notifier fans events out to the live connections of a user. Implementations
// must be best-effort: a delivery failure never reaches the caller.
type Notifier interface {
	MessageReceived(to int, msg types.Message)
	MessageSent(from int, msg types.Message)
	MessagesSeen(to int, roomId string, by int)
	UnreadCount(to, from, count, total int)
}

type Service struct {
	log      *log.Logger
	db       database.MarketRepository
	notifier Notifier
}

func NewService(logger *log.Logger, db database.MarketRepository, notifier Notifier) *Service {
	return &Service{
		log:      logger,
		db:       db,
		notifier: notifier,
	}
}

type SendParams struct {
	To        int
	Body      string
	Warning   bool
	Important bool
	ReplyTo   *int
}

// Send validates, persists and fans out a new message. The message is
// persisted with status delivered; fan-out happens only after a successful
// write, and its failures are swallowed.
func (s *Service) Send(from types.UserSummary, params SendParams) (types.Message, error) {
	if params.Body == "" {
		return types.Message{}, &ValidationError{Field: "body", Reason: "must not be empty"}
	}
	if len(params.Body) > maxBodyLength {
		return types.Message{}, &ValidationError{
			Field:  "body",
			Reason: fmt.Sprintf("must not exceed %d characters", maxBodyLength),
		}
	}

	if params.To == from.Id {
		return types.Message{}, ErrSelfMessage
	}

	recipient, err := s.db.GetAccountById(params.To)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Message{}, ErrRecipientNotFound
		}
		return types.Message{}, fmt.Errorf("get recipient: %w", err)
	}

	if !CanSend(from.Role, types.Role(recipient.Role)) {
		return types.Message{}, ErrPermissionDenied
	}

	// a dangling replyTo is allowed, it renders as absent on read
	dbMsg, err := s.db.CreateMessage(database.CreateMessageParams{
		SenderId:    from.Id,
		RecipientId: params.To,
		Body:        params.Body,
		Warning:     params.Warning,
		Important:   params.Important,
		ReplyTo:     params.ReplyTo,
		Status:      string(types.MessageDelivered),
		RoomId:      RoomId(from.Id, params.To),
	})
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}

	msg := toWireMessage(dbMsg)

	s.notifier.MessageReceived(msg.RecipientId, msg)
	s.notifier.MessageSent(msg.SenderId, msg)
	s.emitUnreadCount(msg.RecipientId, msg.SenderId)

	return msg, nil
}

// MarkSeen advances every unseen message addressed to readerId in the
// conversation with otherId to seen. Replays are no-ops: statuses never
// regress and the second call reports the same zero count.
func (s *Service) MarkSeen(readerId, otherId int) error {
	roomId := RoomId(readerId, otherId)

	if _, err := s.db.MarkConversationSeen(roomId, readerId); err != nil {
		return fmt.Errorf("mark conversation seen: %w", err)
	}

	// recompute after the update so the emitted count is never stale-high
	s.emitUnreadCount(readerId, otherId)
	s.notifier.MessagesSeen(otherId, roomId, readerId)

	return nil
}

// Conversation returns every message between the two participants ascending
// by creation time, along with the caller's unread count for the thread.
func (s *Service) Conversation(userId, otherId int) ([]types.Message, int, error) {
	dbMsgs, err := s.db.GetConversation(RoomId(userId, otherId))
	if err != nil {
		return nil, 0, fmt.Errorf("get conversation: %w", err)
	}

	unread, err := s.db.CountUnreadFrom(userId, otherId)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}

	messages := make([]types.Message, len(dbMsgs))
	for i, m := range dbMsgs {
		messages[i] = toWireMessage(m)
	}

	return messages, unread, nil
}

// Conversations groups the user's messages by counterpart, keeping the most
// recent message and an unread tally per counterpart. Summaries are ordered
// by last-message time, newest first.
func (s *Service) Conversations(userId int) ([]types.ConversationSummary, error) {
	dbMsgs, err := s.db.ListMessagesForAccount(userId)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	byOther := make(map[int]*types.ConversationSummary)
	for _, dbMsg := range dbMsgs {
		msg := toWireMessage(dbMsg)

		otherId := msg.SenderId
		if otherId == userId {
			otherId = msg.RecipientId
		}

		summary, ok := byOther[otherId]
		if !ok {
			summary = &types.ConversationSummary{User: types.UserSummary{Id: otherId}}
			byOther[otherId] = summary
			// rows arrive newest first, so the first message per
			// counterpart is the conversation's latest
			summary.LastMessage = msg
		} else if msg.CreatedAt.After(summary.LastMessage.CreatedAt) {
			summary.LastMessage = msg
		}

		if msg.RecipientId == userId && msg.Status != types.MessageSeen {
			summary.UnreadCount++
		}
	}

	summaries := make([]types.ConversationSummary, 0, len(byOther))
	for otherId, summary := range byOther {
		if other, err := s.db.GetAccountById(otherId); err == nil {
			summary.User = types.UserSummary{Id: other.Id, Name: other.Name, Role: types.Role(other.Role)}
		} else {
			s.log.Printf("conversations: lookup account %d: %v", otherId, err)
		}
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})

	return summaries, nil
}

// Message fetches a single message with its sender, recipient and reply
// references expanded. A reply id that no longer resolves is omitted.
func (s *Service) Message(id int) (types.MessageDetail, error) {
	dbMsg, err := s.db.GetMessageById(id)
	if err != nil {
		return types.MessageDetail{}, fmt.Errorf("get message: %w", err)
	}

	detail := types.MessageDetail{Message: toWireMessage(dbMsg)}

	if sender, err := s.db.GetAccountById(dbMsg.SenderId); err == nil {
		detail.Sender = types.UserSummary{Id: sender.Id, Name: sender.Name, Role: types.Role(sender.Role)}
	}
	if recipient, err := s.db.GetAccountById(dbMsg.RecipientId); err == nil {
		detail.Recipient = types.UserSummary{Id: recipient.Id, Name: recipient.Name, Role: types.Role(recipient.Role)}
	}

	if detail.ReplyTo != nil {
		if reply, err := s.db.GetMessageById(*detail.ReplyTo); err == nil {
			wireReply := toWireMessage(reply)
			detail.Reply = &wireReply
		} else if !errors.Is(err, sql.ErrNoRows) {
			return types.MessageDetail{}, fmt.Errorf("get reply: %w", err)
		}
	}

	return detail, nil
}

// UnreadCount returns the number of messages addressed to userId that are
// not yet seen, optionally scoped to a sender (from > 0).
func (s *Service) UnreadCount(userId, from int) (int, error) {
	if from > 0 {
		return s.db.CountUnreadFrom(userId, from)
	}
	return s.db.CountUnread(userId)
}

func (s *Service) emitUnreadCount(to, from int) {
	count, err := s.db.CountUnreadFrom(to, from)
	if err != nil {
		s.log.Printf("count unread from %d for %d: %v", from, to, err)
		return
	}

	total, err := s.db.CountUnread(to)
	if err != nil {
		s.log.Printf("count unread for %d: %v", to, err)
		return
	}

	s.notifier.UnreadCount(to, from, count, total)
}

func toWireMessage(m database.Message) types.Message {
	msg := types.Message{
		Id:          m.Id,
		SenderId:    m.SenderId,
		RecipientId: m.RecipientId,
		Body:        m.Body,
		Warning:     m.Warning,
		Important:   m.Important,
		Status:      types.MessageStatus(m.Status),
		RoomId:      m.RoomId,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.ReplyTo.Valid {
		replyTo := int(m.ReplyTo.Int64)
		msg.ReplyTo = &replyTo
	}

	return msg
}
