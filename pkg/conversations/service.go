package conversations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"resty.dev/v3"

	"github.com/avi3tal/noxus-go/internal/transport"
)

const basePath = "/v1/conversations"

// MessageTimeout bounds a message round trip, which waits for the reply
const MessageTimeout = 30 * time.Second

type Service struct {
	requester *transport.Requester
	logger    *slog.Logger
}

func NewService(r *transport.Requester, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{requester: r, logger: logger}
}

func conversationPath(id string) string {
	return fmt.Sprintf("%s/%s", basePath, id)
}

// List returns one page of conversations
func (s *Service) List(ctx context.Context, page, size int) ([]Conversation, error) {
	out, err := transport.GetPage[Conversation](ctx, s.requester, basePath, page, size, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	if err := s.requester.Get(ctx, conversationPath(id), nil, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to get conversation %s", id)
	}
	return &c, nil
}

type writeRequest struct {
	Name     *string   `json:"name"`
	Settings *Settings `json:"settings"`
}

// Create starts a conversation configured either by settings or by an
// existing agent. Exactly one of the two must be given.
func (s *Service) Create(ctx context.Context, name string, settings *Settings, agentID string) (*Conversation, error) {
	if (settings == nil) == (agentID == "") {
		return nil, ErrSettingsOrAgent
	}
	if settings != nil {
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}

	req := transport.Request{
		Method: resty.MethodPost,
		Path:   basePath,
		Body:   writeRequest{Name: &name, Settings: settings},
	}
	if agentID != "" {
		req.Query = map[string]string{"assistant_id": agentID}
	}

	var c Conversation
	if err := s.requester.DoJSON(ctx, req, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to create conversation %q", name)
	}
	s.logger.Info("Conversation created.", "conversation_id", c.ID, "agent_id", agentID)
	return &c, nil
}

// Update changes the name and/or settings. Empty name and nil settings are
// left unchanged by the backend.
func (s *Service) Update(ctx context.Context, id, name string, settings *Settings) (*Conversation, error) {
	body := writeRequest{Settings: settings}
	if name != "" {
		body.Name = &name
	}
	if settings != nil {
		if err := settings.Validate(); err != nil {
			return nil, err
		}
	}

	var c Conversation
	if err := s.requester.Patch(ctx, conversationPath(id), nil, body, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to update conversation %s", id)
	}
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.requester.Delete(ctx, conversationPath(id)); err != nil {
		return errors.Wrapf(err, "failed to delete conversation %s", id)
	}
	return nil
}

// Refresh overwrites c with the backend copy
func (s *Service) Refresh(ctx context.Context, c *Conversation) error {
	fresh, err := s.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Messages returns the transcript of a conversation
func (s *Service) Messages(ctx context.Context, id string) ([]Message, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Messages, nil
}

// AddMessage posts msg to c and waits for the reply. c is updated with the
// returned conversation and the last message, the reply, is returned.
func (s *Service) AddMessage(ctx context.Context, c *Conversation, msg MessageRequest) (*Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	var updated Conversation
	err := s.requester.DoJSON(ctx, transport.Request{
		Method:  resty.MethodPost,
		Path:    conversationPath(c.ID),
		Body:    msg,
		Timeout: MessageTimeout,
	}, &updated)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to conversation %s", c.ID)
	}
	*c = updated

	if len(c.Messages) == 0 {
		return nil, ErrNoResponse
	}
	reply := c.Messages[len(c.Messages)-1]
	s.logger.Debug("Message answered.", "conversation_id", c.ID, "message_id", reply.ID)
	return &reply, nil
}
