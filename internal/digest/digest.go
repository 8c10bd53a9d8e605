// Package digest sends the periodic Discord summary of in-stock seeking
// items.
package digest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cjjwisniewski/seeker-functions/internal/discord"
	"github.com/cjjwisniewski/seeker-functions/internal/domain"
	"github.com/cjjwisniewski/seeker-functions/internal/repository"
)

// Discord embed limit per message.
const maxEmbedsPerMessage = 10

const embedColorGreen = 0x2ecc71

// Sender posts one webhook message.
type Sender interface {
	Send(ctx context.Context, msg discord.WebhookMessage) error
}

// Job walks every user and posts a digest of their in-stock items. A failure
// for one user is logged and the walk continues.
type Job struct {
	users   repository.UserRepository
	seeking repository.SeekingRepository
	sender  Sender
	logger  *slog.Logger
}

// NewJob creates a digest job.
func NewJob(users repository.UserRepository, seeking repository.SeekingRepository, sender Sender, logger *slog.Logger) *Job {
	return &Job{users: users, seeking: seeking, sender: sender, logger: logger}
}

// Run executes one digest pass.
func (j *Job) Run(ctx context.Context) {
	userIDs, err := j.users.ListIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "digest user enumeration failed", slog.String("error", err.Error()))
		return
	}

	var notified int
	for _, userID := range userIDs {
		if err := j.digestUser(ctx, userID); err != nil {
			j.logger.ErrorContext(ctx, "digest failed for user",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			continue
		}
		notified++
	}

	j.logger.InfoContext(ctx, "stock digest complete",
		slog.Int("users", len(userIDs)),
		slog.Int("notified", notified),
	)
}

func (j *Job) digestUser(ctx context.Context, userID string) error {
	items, err := j.seeking.ListInStockByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list in-stock items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	for start := 0; start < len(items); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(items))
		msg := discord.WebhookMessage{
			Content: fmt.Sprintf("<@%s> %d of your seeking cards are in stock on Cardtrader", userID, len(items)),
			Embeds:  buildEmbeds(items[start:end]),
		}
		if start > 0 {
			msg.Content = ""
		}
		if err := j.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("send digest webhook: %w", err)
		}
	}
	return nil
}

func buildEmbeds(items []domain.SeekingItem) []discord.Embed {
	embeds := make([]discord.Embed, 0, len(items))
	for _, item := range items {
		embed := discord.Embed{
			Title: fmt.Sprintf("%s (%s #%s)", item.Name, item.SetCode, item.CollectorNumber),
			Color: embedColorGreen,
			Fields: []discord.EmbedField{
				{Name: "Language", Value: item.Language, Inline: true},
				{Name: "Finish", Value: item.Finish, Inline: true},
			},
		}
		if item.LowPriceCents != nil {
			embed.Fields = append(embed.Fields, discord.EmbedField{
				Name:   "Lowest price",
				Value:  fmt.Sprintf("€%.2f", float64(*item.LowPriceCents)/100),
				Inline: true,
			})
		}
		if item.ImageURI != "" {
			embed.Thumbnail = &discord.EmbedImage{URL: item.ImageURI}
		}
		embeds = append(embeds, embed)
	}
	return embeds
}
