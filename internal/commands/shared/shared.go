// Package shared holds what every command group needs: the services behind
// the commands, option builders and the command log.
package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/discord"
	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/moderation"
	"github.com/PancyStudios/ModRelayGo/pkg/relay"
	"github.com/PancyStudios/ModRelayGo/pkg/roblox"
	"github.com/bwmarrin/discordgo"
)

// Embed colors
const (
	ColorLog     = 0xFF5733
	ColorDanger  = 0xFF0000
	ColorWarning = 0xFFA500
	ColorSuccess = 0x00FF00
	ColorInfo    = 0x0099FF
)

// Deps are the services the commands run against
type Deps struct {
	Service *moderation.Service
	Roblox  *roblox.Client
	Relay   *relay.Client
	Audit   *discord.AuditLog
}

// HandlerFunc is a command handler that needs the services
type HandlerFunc func(ctx *discord.CommandContext, d *Deps) error

// Bind turns fn into a plain command handler
func (d *Deps) Bind(fn HandlerFunc) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		return fn(ctx, d)
	}
}

// ResolvePlayer looks up a game account by username or numeric id
func (d *Deps) ResolvePlayer(ctx *discord.CommandContext, input string) (*roblox.User, moderation.Player, error) {
	user := d.Roblox.Resolve(ctx.Context(), input)
	if user == nil {
		return nil, moderation.Player{}, errors.NotFound("ResolvePlayer", "Could not find that Roblox user.")
	}
	return user, moderation.Player{ID: user.IDString(), Name: user.DisplayLabel()}, nil
}

// LogCommand posts the "Command: <action>" embed to the logs channel and the
// owner's DMs
func (d *Deps) LogCommand(ctx *discord.CommandContext, action string, details ...*discordgo.MessageEmbedField) {
	mod := ctx.User()
	rank := "Unknown"
	if r, err := d.Service.Authorizer().RankOf(ctx.Context(), mod.ID); err == nil && r != "" {
		rank = string(r)
	}

	now := time.Now()
	embed := &discordgo.MessageEmbed{
		Title: "Command: " + action,
		Color: ColorLog,
		Fields: append([]*discordgo.MessageEmbedField{
			Field("Moderator", fmt.Sprintf("<@%s> (%s)", mod.ID, mod.Username)),
			Field("Rank", rank),
			Field("Timestamp", Timestamp(now)),
		}, details...),
		Timestamp: now.Format(time.RFC3339),
	}
	d.Audit.Send(embed)
	logger.Info(fmt.Sprintf("%s ran %s", mod.Username, action), "Commands")
}

// Field builds an embed field. Empty values are replaced since Discord
// rejects them.
func Field(name, value string) *discordgo.MessageEmbedField {
	if value == "" {
		value = "N/A"
	}
	return &discordgo.MessageEmbedField{Name: name, Value: value}
}

// InlineField is Field shown side by side
func InlineField(name, value string) *discordgo.MessageEmbedField {
	f := Field(name, value)
	f.Inline = true
	return f
}

// Timestamp renders t as a full Discord timestamp
func Timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:F>", t.Unix())
}

// Relative renders t as a relative Discord timestamp ("3 hours ago")
func Relative(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// PlayerLabel renders a game account as "name (id)"
func PlayerLabel(u *roblox.User) string {
	return fmt.Sprintf("%s (%d)", u.DisplayLabel(), u.ID)
}

// WithRelayNote warns the moderator when the command never reached the queue
func WithRelayNote(msg string, res moderation.Result) string {
	if res.Relayed {
		return msg
	}
	return msg + "\n⚠️ The moderation queue could not be reached, the game was not notified."
}

// Option builders

func StringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func PlayerOption() *discordgo.ApplicationCommandOption {
	return StringOption("player", "Username or UserID", true)
}

func ReasonOption(description string) *discordgo.ApplicationCommandOption {
	return StringOption("reason", description, true)
}

func ProofOption() *discordgo.ApplicationCommandOption {
	return StringOption("proof", "Proof/Evidence", true)
}

func DurationOption() *discordgo.ApplicationCommandOption {
	return StringOption("duration", "Duration (e.g., 3d 2h 1m)", true)
}

func UserOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func AmountOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: "Amount of cash",
		Required:    true,
	}
}

// Footer is the footer shared by every command embed
func Footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: "💫 - ModRelay Moderation"}
}

// Actor renders who issued an action, as a mention unless it was automatic
func Actor(id string) string {
	if id == "" || strings.EqualFold(id, moderation.SystemActor) {
		return "System"
	}
	return fmt.Sprintf("<@%s>", id)
}
