package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ricewatch/ricewatch-api/internal/properties"
)

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

const (
	colorRed   = 16711680
	colorGreen = 65280
)

// SendErrorReport posts a failure embed to the configured error webhook.
func SendErrorReport(message string) error {
	return send(properties.DiscordErrorNotificationUrl(), discordEmbed{
		Title:       "🚨 RiceWatch run failed",
		Description: message,
		Color:       colorRed,
	})
}

// SendRunReport posts a completed-analysis summary to the success webhook.
func SendRunReport(message string) error {
	return send(properties.DiscordSuccessNotificationUrl(), discordEmbed{
		Title:       "🌾 RiceWatch analysis complete",
		Description: message,
		Color:       colorGreen,
	})
}

func send(webhookURL string, embed discordEmbed) error {
	if webhookURL == "" {
		return nil // notifications are optional
	}

	payload, err := json.Marshal(discordMessage{Embeds: []discordEmbed{embed}})
	if err != nil {
		return err
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}
