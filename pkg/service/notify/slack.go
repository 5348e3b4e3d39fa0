package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Service delivers risk notifications to an external channel.
type Service interface {
	NotifyRiskLevel(ctx context.Context, asset *model.Asset, threat *model.Threat, risk *model.Risk) error
}

// levelColors maps risk levels to Slack attachment colors
var levelColors = map[types.RiskLevel]string{
	types.RiskLevelCritical: "#d00000",
	types.RiskLevelHigh:     "#e85d04",
	types.RiskLevelMedium:   "#ffba08",
	types.RiskLevelLow:      "#3f88c5",
	types.RiskLevelVeryLow:  "#6c757d",
}

// client implements Service on top of the Slack API
type client struct {
	api     *slack.Client
	channel string
}

// Option is a functional option for client configuration
type Option func(*client)

// New creates a Slack notifier posting to the given channel
func New(token, channel string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	c := &client{
		api:     slack.New(token),
		channel: channel,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NotifyRiskLevel posts a message describing the current level of a risk
func (c *client) NotifyRiskLevel(ctx context.Context, asset *model.Asset, threat *model.Threat, risk *model.Risk) error {
	color, ok := levelColors[risk.RiskLevel]
	if !ok {
		color = levelColors[types.RiskLevelVeryLow]
	}

	fields := []slack.AttachmentField{
		{Title: "Asset", Value: asset.Name, Short: true},
		{Title: "Threat", Value: threat.Name, Short: true},
		{Title: "Level", Value: string(risk.RiskLevel), Short: true},
		{Title: "Exposure", Value: fmt.Sprintf("%.1f", risk.Calculation.Exposure), Short: true},
		{Title: "Value at Risk", Value: fmt.Sprintf("%.2f", risk.RiskValue), Short: true},
	}
	if risk.VulnerabilityID != "" {
		fields = append(fields, slack.AttachmentField{
			Title: "Vulnerability", Value: string(risk.VulnerabilityID), Short: true,
		})
	}

	attachment := slack.Attachment{
		Color:  color,
		Title:  fmt.Sprintf("Risk level %s: %s / %s", risk.RiskLevel, asset.Name, threat.Name),
		Fields: fields,
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channel,
		slack.MsgOptionAttachments(attachment))
	if err != nil {
		return goerr.Wrap(err, "failed to post risk notification",
			goerr.V("channel", c.channel),
			goerr.V("risk_id", risk.ID))
	}

	return nil
}
