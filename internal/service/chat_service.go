package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"buzztub/internal/apperr"
	"buzztub/internal/media/sniffer"
	"buzztub/internal/models"
	"buzztub/internal/storage"
)

const chatHistorySize = 20

type ChatService struct {
	messages ChatStore
	files    FileStore
	category storage.Category
	log      zerolog.Logger
}

func NewChatService(messages ChatStore, files FileStore, attachmentExtensions []string, log zerolog.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		files:    files,
		category: storage.Category{Prefix: "chat", Kind: sniffer.KindImage, Extensions: attachmentExtensions},
		log:      log,
	}
}

// Attachment is an optional image posted with a chat message.
type Attachment struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (s *ChatService) Recent(ctx context.Context) ([]models.ChatMessage, error) {
	return s.messages.Latest(ctx, chatHistorySize)
}

func (s *ChatService) Post(ctx context.Context, session models.Session, text string, attachment *Attachment) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return models.ChatMessage{}, apperr.Validation("Message cannot be empty.")
	}

	msg := models.ChatMessage{Author: session.Username, Text: text}
	if attachment != nil {
		key, err := s.files.Save(ctx, s.category, storage.Upload{
			Filename: attachment.Filename,
			Size:     attachment.Size,
			Body:     attachment.Body,
		})
		if err != nil {
			return models.ChatMessage{}, uploadError(err)
		}
		msg.AttachmentPath = &key
	}

	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		if msg.AttachmentPath != nil {
			if rmErr := s.files.Remove(ctx, *msg.AttachmentPath); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("key", *msg.AttachmentPath).Msg("remove orphaned attachment failed")
			}
		}
		return models.ChatMessage{}, fmt.Errorf("create message: %w", err)
	}
	return created, nil
}
