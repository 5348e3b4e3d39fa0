package config

import (
	"github.com/secops-lab/magerisk/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

// Notify holds CLI flags for Slack risk notifications
type Notify struct {
	slackToken   string
	slackChannel string
}

// Flags returns CLI flags for notification configuration
func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for critical risk notifications",
			Sources:     cli.EnvVars("MAGERISK_SLACK_BOT_TOKEN"),
			Destination: &n.slackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel receiving critical risk notifications",
			Sources:     cli.EnvVars("MAGERISK_SLACK_CHANNEL"),
			Destination: &n.slackChannel,
		},
	}
}

// IsConfigured reports whether both the token and the channel are set
func (n *Notify) IsConfigured() bool {
	return n.slackToken != "" && n.slackChannel != ""
}

// Configure builds the Slack notification service
func (n *Notify) Configure() (notify.Service, error) {
	return notify.New(n.slackToken, n.slackChannel)
}
