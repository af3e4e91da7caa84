package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// Authorizer decides whether a Discord user holds a staff rank
type Authorizer interface {
	HasCapability(ctx context.Context, subjectID string, need models.Rank) (bool, error)
}

// allowed reports whether userID may run cmd. A failed lookup denies.
func allowed(ctx context.Context, a Authorizer, userID string, cmd *Command) bool {
	if cmd.RequiredRank == "" {
		return true
	}
	if a == nil {
		return false
	}
	ok, err := a.HasCapability(ctx, userID, cmd.RequiredRank)
	if err != nil {
		logger.Error(fmt.Sprintf("Rank lookup for %s failed: %v", userID, err), "StaffMiddleware")
		return false
	}
	return ok
}

// StaffMiddleware rejects users whose rank is below the command's
func (c *ExtendedClient) StaffMiddleware(ctx *CommandContext, cmd *Command) error {
	userID := ctx.User().ID
	if allowed(ctx.Context(), c.Authorizer, userID, cmd) {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Access Denied",
		Description: "❌ You do not have permission to use this command.",
		Color:       0xFF0000,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Required Rank", Value: cmd.RequiredRank.Title()},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	_ = ctx.ReplyEphemeralEmbed(embed)

	logger.Warn(fmt.Sprintf("User %s tried /%s without rank %s", userID, cmd.Name, cmd.RequiredRank), "StaffMiddleware")
	return errors.Unauthorized(cmd.Name)
}

// errorMessage turns a command error into the text shown to the user
func errorMessage(err error) string {
	switch errors.KindOf(err) {
	case errors.KindValidation, errors.KindNotFound:
		return "❌ " + errors.Message(err)
	case errors.KindUnauthorized:
		return "❌ You do not have permission to use this command."
	case errors.KindUpstreamUnavailable:
		return "❌ An upstream service is unavailable, try again later."
	default:
		return "❌ An error occurred while executing this command."
	}
}

// replyError answers the interaction with the error, editing the deferred
// response when there is one
func replyError(ctx *CommandContext, err error) {
	if rerr := ctx.Respond(errorMessage(err)); rerr != nil {
		logger.Debug("Could not report command error: "+rerr.Error(), "Client")
	}
}
