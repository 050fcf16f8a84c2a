package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

// EmailSender delivers an HTML alert digest.
type EmailSender interface {
	SendEmail(ctx context.Context, subject, html string) error
}

// ChatSender delivers a structured chat message to the team channel.
type ChatSender interface {
	SendMessage(ctx context.Context, msg ChatMessage) error
}

// WebhookSender posts a JSON payload to the configured endpoint.
type WebhookSender interface {
	Send(ctx context.Context, payload interface{}) error
}

// ChatMessage is a chat-webhook payload: a header line plus one block
// per alert.
type ChatMessage struct {
	Text   string      `json:"text"`
	Blocks []ChatBlock `json:"blocks,omitempty"`
}

type ChatBlock struct {
	Type string            `json:"type"`
	Text map[string]string `json:"text,omitempty"`
}

// NewAlertChatMessage renders alerts into a chat message.
func NewAlertChatMessage(alerts []models.Alert) ChatMessage {
	msg := ChatMessage{
		Text: fmt.Sprintf(":rotating_light: %d alert(s) triggered", len(alerts)),
		Blocks: []ChatBlock{{
			Type: "header",
			Text: map[string]string{"type": "plain_text", "text": "Monitoring alerts"},
		}},
	}
	for _, a := range alerts {
		msg.Blocks = append(msg.Blocks, ChatBlock{
			Type: "section",
			Text: map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*%s* [%s]\n%s (value: %g)", a.Type, a.Severity, a.Message, a.Value),
			},
		})
	}
	return msg
}

// SESEmailSender sends alert digests through AWS SESv2.
type SESEmailSender struct {
	client *sesv2.Client
	from   string
	to     []string
}

func NewSESEmailSender(client *sesv2.Client, from string, to []string) *SESEmailSender {
	return &SESEmailSender{client: client, from: from, to: to}
}

func (s *SESEmailSender) SendEmail(ctx context.Context, subject, html string) error {
	if len(s.to) == 0 {
		return fmt.Errorf("no alert email recipients configured")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &sestypes.Destination{
			ToAddresses: s.to,
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{
					Data: aws.String(subject),
				},
				Body: &sestypes.Body{
					Html: &sestypes.Content{
						Data: aws.String(html),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}

// HTTPChatSender posts chat messages to a Slack-compatible webhook URL.
type HTTPChatSender struct {
	url    string
	client *http.Client
}

func NewHTTPChatSender(url string) *HTTPChatSender {
	return &HTTPChatSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPChatSender) SendMessage(ctx context.Context, msg ChatMessage) error {
	return postJSON(ctx, s.client, s.url, msg)
}

// HTTPWebhookSender posts arbitrary JSON payloads to a generic webhook.
type HTTPWebhookSender struct {
	url    string
	client *http.Client
}

func NewHTTPWebhookSender(url string) *HTTPWebhookSender {
	return &HTTPWebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPWebhookSender) Send(ctx context.Context, payload interface{}) error {
	return postJSON(ctx, s.client, s.url, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
