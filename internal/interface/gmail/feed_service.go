package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
)

// FeedService polls the deal-feed inbox and stores raw feed messages for the
// deal processor to drain.
type FeedService struct {
	gmailService *gmail.Service
	feedRepo     repository.FeedMessageRepository
	logger       logger.Logger
	pollInterval time.Duration
	senders      []string
}

// NewFeedService creates a new deal-feed service
func NewFeedService(ctx context.Context, tokenSource oauth2.TokenSource, feedRepo repository.FeedMessageRepository, senders []string, logger logger.Logger, pollInterval time.Duration) (*FeedService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &FeedService{
		gmailService: service,
		feedRepo:     feedRepo,
		logger:       logger,
		pollInterval: pollInterval,
		senders:      senders,
	}, nil
}

// FetchMessages fetches new feed messages from the inbox
func (s *FeedService) FetchMessages(ctx context.Context) error {
	lastMsg, _ := s.feedRepo.GetLast(ctx)
	var fetchFrom time.Time
	var hasLast bool

	if lastMsg != nil && !lastMsg.ReceivedAt.IsZero() {
		fetchFrom = lastMsg.ReceivedAt
		hasLast = true
	} else {
		// Default starting point
		fetchFrom = time.Now().AddDate(0, 0, -7)
	}

	queryDate := fetchFrom
	if hasLast {
		// Go back a day to catch any messages we might have missed
		queryDate = fetchFrom.AddDate(0, 0, -1)
	}

	query := fmt.Sprintf("after:%s", queryDate.Format("2006/01/02"))
	s.logger.Debug("Querying deal-feed inbox", "query", query)

	req := s.gmailService.Users.Messages.List("me").Q(query)
	resp, err := req.Do()
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err)
		return err
	}

	if len(resp.Messages) == 0 {
		s.logger.Debug("No new feed messages found")
		return nil
	}

	messageIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		messageIDs[i] = msg.Id
	}

	existing, err := s.feedRepo.FindByMessageIDs(ctx, messageIDs)
	if err != nil {
		s.logger.Error("Failed to batch check existing messages", "error", err)
		existing = make(map[string]*entity.FeedMessage)
	}

	newCount := 0
	skippedOld := 0
	skippedExisting := 0
	skippedSender := 0

	for _, msg := range resp.Messages {
		if _, exists := existing[msg.Id]; exists {
			skippedExisting++
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "messageID", msg.Id, "error", err)
			continue
		}

		messageTime := time.Unix(0, fullMsg.InternalDate*int64(time.Millisecond))
		if hasLast && !messageTime.After(fetchFrom) {
			skippedOld++
			continue
		}

		feedMsg := s.convertToFeedMessage(fullMsg)

		if !s.fromKnownSender(feedMsg.From) {
			s.logger.Debug("Message not from a configured deal feed", "from", feedMsg.From)
			skippedSender++
			continue
		}

		s.logger.Info("Storing new feed message",
			"from", feedMsg.From,
			"subject", feedMsg.Subject,
			"messageID", feedMsg.MessageID)

		if err := s.feedRepo.Save(ctx, feedMsg); err != nil {
			s.logger.Error("Failed to save feed message", "messageID", msg.Id, "error", err)
			continue
		}

		newCount++
	}

	s.logger.Info("Feed fetch completed",
		"totalFromInbox", len(resp.Messages),
		"alreadyInDB", skippedExisting,
		"skippedOld", skippedOld,
		"skippedSender", skippedSender,
		"newMessages", newCount)

	return nil
}

// StartPolling starts polling the inbox for new feed messages
func (s *FeedService) StartPolling(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Feed polling stopped")
			return
		case <-ticker.C:
			if err := s.FetchMessages(ctx); err != nil {
				s.logger.Error("Error polling deal feed", "error", err)
			}
		}
	}
}

// fromKnownSender matches the From header against the configured feed
// senders. An empty list accepts everything (useful in development).
func (s *FeedService) fromKnownSender(from string) bool {
	if len(s.senders) == 0 {
		return true
	}
	fromLower := strings.ToLower(from)
	for _, sender := range s.senders {
		if strings.Contains(fromLower, strings.ToLower(sender)) {
			return true
		}
	}
	return false
}

// convertToFeedMessage converts a Gmail message to our domain entity
func (s *FeedService) convertToFeedMessage(msg *gmail.Message) *entity.FeedMessage {
	feedMsg := &entity.FeedMessage{
		MessageID:     msg.Id,
		ProcessStatus: entity.StatusPending,
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			feedMsg.From = header.Value
		case "Subject":
			feedMsg.Subject = header.Value
		}
	}

	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(msg.Payload.Body.Data); err == nil {
			feedMsg.Body = string(data)
		}
	}

	// Prefer the text/plain part of multipart messages; the JSON payload
	// rides in the plain-text body.
	for _, part := range msg.Payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil {
			if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
				feedMsg.Body = string(data)
			}
		}
	}

	feedMsg.ReceivedAt = time.Unix(0, msg.InternalDate*int64(time.Millisecond))

	return feedMsg
}
