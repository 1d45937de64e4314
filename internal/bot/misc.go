package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/reinodovo/custom-bots/internal/store"
)

func miscCog(bot *Bot) *Cog {
	return &Cog{
		Name: "misc",
		Commands: []*Command{
			{
				Name: "invite",
				Help: "Shows the invite link of the bot.",
				Run: func(ctx *Context) error {
					return ctx.ReplyEmbed(bot.invite(ctx.Message.Author))
				},
			},
			{
				Name:    "remind",
				Aliases: []string{"remindme", "reminder"},
				Usage:   "<when> <text>",
				Help:    "Reminds you of something, e.g. `remind 1h30m stretch`.",
				Run: func(ctx *Context) error {
					when, text := splitWord(ctx.Rest)
					text = strings.TrimSpace(text)
					if when == "" || text == "" {
						return ErrMissingArgument
					}
					at, err := ParseTime(when, time.Now())
					if err != nil {
						return err
					}
					if !at.After(time.Now()) {
						return badArgument("time must be in the future")
					}

					t := store.NewTimer(bot.Registration().ID, reminderEvent, at)
					t.ChannelID = ctx.Message.ChannelID
					t.AuthorID = ctx.Message.Author.ID
					t.Content = text
					if _, err := bot.timers.Create(t); err != nil {
						return err
					}
					return ctx.Reply(fmt.Sprintf("Alright, I'll remind you <t:%v:R>.", at.Unix()))
				},
			},
			{
				Name:    "reminders",
				Aliases: []string{"timers"},
				Help:    "Lists your pending reminders.",
				Run: func(ctx *Context) error {
					timers, err := bot.reminders(ctx.Message.Author.ID)
					if err != nil {
						return err
					}
					if len(timers) == 0 {
						return ctx.Reply("You have no pending reminders.")
					}
					var b strings.Builder
					for _, t := range timers {
						fmt.Fprintf(&b, "`%v` <t:%v:R> %v\n", shortID(t.ID), t.ExpiresAt.Unix(), t.Content)
					}
					return ctx.Reply(b.String())
				},
			},
			{
				Name:    "forget",
				Aliases: []string{"cancelremind"},
				Usage:   "<id>",
				Help:    "Cancels one of your reminders.",
				Run: func(ctx *Context) error {
					if len(ctx.Args) == 0 {
						return ErrMissingArgument
					}
					timers, err := bot.reminders(ctx.Message.Author.ID)
					if err != nil {
						return err
					}
					for _, t := range timers {
						if t.ID == ctx.Args[0] || shortID(t.ID) == ctx.Args[0] {
							if err := bot.timers.Delete(t.ID); err != nil {
								return err
							}
							return ctx.React(checkMark)
						}
					}
					return badArgument("reminder %v not found", ctx.Args[0])
				},
			},
		},
	}
}

const inviteURL = "https://discord.com/oauth2/authorize?client_id=%v&permissions=0&scope=bot"

func (bot *Bot) invite(requester *discordgo.User) *discordgo.MessageEmbed {
	r := bot.Registration()
	server := "any server"
	if r.GuildID != 0 {
		guildID := strconv.FormatInt(r.GuildID, 10)
		server = fmt.Sprintf("`%v`", guildID)
		if guild, err := bot.session.Guild(guildID); err == nil {
			server = fmt.Sprintf("**%v** (ID: `%v`)", guild.Name, guild.ID)
		} else {
			bot.logger.WithError(err).Debug("failed to get main guild")
		}
	}

	var b strings.Builder
	b.WriteString("You can still add the bot on your server, but it won't work.\n")
	fmt.Fprintf(&b, "> - Bot is made to work in %v\n", server)
	if r.OwnerID != 0 {
		fmt.Fprintf(&b, "> - If you want to use the bot in your server, please consider asking <@%v> (`%v`)\n", r.OwnerID, r.OwnerID)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "This bot is not intended to be used in multiple servers.",
		Description: b.String(),
		URL:         fmt.Sprintf(inviteURL, bot.UserID()),
	}
	if requester != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Requested by %v", requester), IconURL: requester.AvatarURL("")}
	}
	return embed
}

func (bot *Bot) reminders(authorID string) ([]store.Timer, error) {
	timers, err := bot.store.ListTimers(bot.Registration().ID)
	if err != nil {
		return nil, err
	}
	mine := []store.Timer{}
	for _, t := range timers {
		if t.Event == reminderEvent && t.AuthorID == authorID {
			mine = append(mine, t)
		}
	}
	return mine, nil
}

// shortID drops the bot prefix and keeps the first block of the uuid.
func shortID(id string) string {
	if _, rest, ok := strings.Cut(id, "/"); ok {
		id = rest
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
