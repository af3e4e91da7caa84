package mod

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/internal/commands/shared"
	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

const bannedUsersFile = "banned_users.txt"

// createBannedUsersCommand creates the /mod bannedusers subcommand
func createBannedUsersCommand(d *shared.Deps) *discord.Command {
	return discord.NewCommand(
		"bannedusers",
		"Export the list of banned players",
		"mod",
		d.Bind(bannedUsersHandler),
	).WithRank(models.RankManager)
}

func bannedUsersHandler(ctx *discord.CommandContext, d *shared.Deps) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	bans, err := d.Service.ActiveBans(ctx.Context())
	if err != nil {
		return err
	}
	if len(bans) == 0 {
		return ctx.Respond("✅ There are no banned players.")
	}

	data, err := bannedUsersCSV(bans)
	if err != nil {
		return err
	}

	d.LogCommand(ctx, "Banned Users Export",
		shared.Field("Total Bans", fmt.Sprintf("%d", len(bans))),
	)
	return ctx.EditReplyFile(fmt.Sprintf("📄 **%d** banned players", len(bans)), bannedUsersFile, bytes.NewReader(data))
}

// bannedUsersCSV renders the ban list with ISO 8601 dates
func bannedUsersCSV(bans []models.Ban) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Username", "UserID", "Reason", "BannedBy", "BannedAt", "ExpiresAt"})

	for _, b := range bans {
		expires := "Permanent"
		if b.ExpiresAt != nil {
			expires = b.ExpiresAt.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{
			b.Username,
			b.SubjectID,
			b.Reason,
			b.IssuedBy,
			b.IssuedAt.UTC().Format(time.RFC3339),
			expires,
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
