package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tyee-ai/gpu-thermal/internal/httpx"
	"github.com/tyee-ai/gpu-thermal/internal/models"
)

// SlackSink posts failure events to a Slack incoming webhook.
type SlackSink struct {
	client     *httpx.Client
	webhookURL string
	channel    string
}

// NewSlackSink creates a SlackSink.
func NewSlackSink(client *httpx.Client, webhookURL, channel string) *SlackSink {
	return &SlackSink{
		client:     client,
		webhookURL: webhookURL,
		channel:    channel,
	}
}

// slackMessage is the webhook payload.
type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Fallback string       `json:"fallback,omitempty"`
	Color    string       `json:"color,omitempty"`
	Title    string       `json:"title,omitempty"`
	Fields   []slackField `json:"fields,omitempty"`
	Footer   string       `json:"footer,omitempty"`
	Ts       int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Name implements Sink.
func (s *SlackSink) Name() string { return "slack" }

// Notify posts one failure event to the webhook.
func (s *SlackSink) Notify(ctx context.Context, ev models.ThermalEvent) error {
	msg := slackMessage{
		Channel:   s.channel,
		Username:  "GPU Thermal Monitor",
		IconEmoji: ":fire:",
		Text:      fmt.Sprintf("GPU thermal failure on %s", ev.Node),
		Attachments: []slackAttachment{
			{
				Fallback: fmt.Sprintf("Thermal failure: %s/%s", ev.Node, ev.GPUID),
				Color:    "danger",
				Title:    "Thermal Failure",
				Fields:   eventFields(ev),
				Footer:   "gpu-thermal",
				Ts:       time.Now().Unix(),
			},
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	resp, err := s.client.PostJSON(ctx, s.webhookURL, body)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook: status %d", resp.StatusCode)
	}
	return nil
}

func eventFields(ev models.ThermalEvent) []slackField {
	fields := []slackField{
		{Title: "Node", Value: ev.Node, Short: true},
		{Title: "GPU", Value: ev.GPUID, Short: true},
		{Title: "Event Time", Value: ev.EventTime.Format("2006-01-02"), Short: true},
	}
	if ev.Temperature != nil {
		fields = append(fields, slackField{
			Title: "Temperature",
			Value: fmt.Sprintf("%.2f°C", *ev.Temperature),
			Short: true,
		})
	}
	if ev.AvgTemperature != nil {
		fields = append(fields, slackField{
			Title: "Avg Temperature",
			Value: fmt.Sprintf("%.2f°C", *ev.AvgTemperature),
			Short: true,
		})
	}
	return fields
}
