package staff

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOptionChoices(t *testing.T) {
	opt := rankOption()
	require.Len(t, opt.Choices, len(models.Ranks))
	assert.Equal(t, "Moderator", opt.Choices[0].Name)
	assert.Equal(t, "owner", opt.Choices[3].Value)
}

func TestStaffEmbedGroupsByRank(t *testing.T) {
	embed := staffEmbed([]models.StaffMember{
		{DiscordID: "1", Rank: models.RankModerator},
		{DiscordID: "2", Rank: models.RankOwner},
		{DiscordID: "3", Rank: models.RankModerator},
	})

	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Owner", embed.Fields[0].Name)
	assert.Equal(t, "Moderator", embed.Fields[1].Name)
	assert.Contains(t, embed.Fields[1].Value, "<@1>")
	assert.Contains(t, embed.Fields[1].Value, "<@3>")
}

func TestStrikeMessage(t *testing.T) {
	msg := strikeMessage("alice", moderation.Result{Count: 1})
	assert.Equal(t, "✅ Successfully gave a strike to **alice** (Strike #1)", msg)

	msg = strikeMessage("alice", moderation.Result{Count: 3, Escalated: true})
	assert.Contains(t, msg, "automatically removed from whitelist due to 3 strikes")
}

func TestRemovalEmbed(t *testing.T) {
	embed := removalEmbed(&discordgo.User{ID: "7", Username: "alice"}, models.RankAdmin, time.Unix(1700000000, 0))
	assert.Equal(t, "Staff Member Removed", embed.Title)

	var reason string
	for _, f := range embed.Fields {
		if f.Name == "Reason" {
			reason = f.Value
		}
	}
	assert.Equal(t, "3 Strikes - Automatic Removal", reason)
}

func TestLogsEmbedTruncates(t *testing.T) {
	var records []models.PunishmentRecord
	for i := 0; i < 25; i++ {
		records = append(records, models.PunishmentRecord{
			Action:    "Ban",
			Username:  strings.Repeat("n", 40),
			SubjectID: "123456789",
			Timestamp: time.Unix(1700000000, 0),
		})
	}

	embed := logsEmbed("alice", records, 2)
	require.Len(t, embed.Fields, 1)
	assert.LessOrEqual(t, len(embed.Fields[0].Value), 1024)
	assert.True(t, strings.HasSuffix(embed.Fields[0].Value, "..."))
	assert.Contains(t, embed.Description, "Strikes: **2**")

	empty := logsEmbed("bob", nil, 0)
	assert.Empty(t, empty.Fields)
	assert.Contains(t, empty.Description, "No actions recorded.")
}
