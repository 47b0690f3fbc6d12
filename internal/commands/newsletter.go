package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruminaider/salon-sync/internal/remote"
)

// NewsletterClient subscribes addresses to the salon newsletter.
type NewsletterClient interface {
	Subscribe(ctx context.Context, email string) (*remote.SubscribeResult, error)
}

// Subscribe adds email to the newsletter and returns the server's message.
func Subscribe(ctx context.Context, client NewsletterClient, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("email is required")
	}
	res, err := client.Subscribe(ctx, email)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
