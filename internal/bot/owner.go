package bot

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/store"
)

func ownerCog(bot *Bot) *Cog {
	return &Cog{
		Name:      "owner",
		OwnerOnly: true,
		Commands: []*Command{
			{
				Name:    "playing",
				Aliases: []string{"streaming", "listening", "watching", "competing"},
				Usage:   "[status] <text>",
				Help:    "Changes the bot's activity, e.g. `playing online Hello World!`. The status defaults to dnd.",
				Run: func(ctx *Context) error {
					status, media := presenceArgs(ctx.Rest)
					if media == "" {
						return ErrMissingArgument
					}
					return bot.changePresence(ctx, func(r *store.Registration) {
						r.Status = status
						r.Activity = ctx.InvokedWith
						r.Media = media
					})
				},
			},
			{
				Name:  "status",
				Usage: "<online|idle|dnd|invisible>",
				Help:  "Changes the bot's status.",
				Run: func(ctx *Context) error {
					if len(ctx.Args) == 0 {
						return ErrMissingArgument
					}
					status := strings.ToLower(ctx.Args[0])
					if !slices.Contains(store.Statuses, status) {
						return badArgument("status must be one of %v", strings.Join(store.Statuses, ", "))
					}
					return bot.changePresence(ctx, func(r *store.Registration) {
						r.Status = status
					})
				},
			},
			{
				Name:  "prefix",
				Usage: "<prefix>",
				Help:  "Sets the bot's prefix.",
				Run:   setPrefix,
			},
			{
				Name: "shutdown",
				Help: "Shuts the bot down.",
				Run: func(ctx *Context) error {
					if err := ctx.React(checkMark); err != nil {
						bot.logger.WithError(err).Warn("failed to react")
					}
					bot.logger.WithField("user_id", ctx.Message.Author.ID).Info("shutdown requested")
					return bot.Shutdown()
				},
			},
			{
				Name: "leave",
				Help: "Makes the bot leave this server.",
				Run: func(ctx *Context) error {
					if err := ctx.React(checkMark); err != nil {
						return err
					}
					bot.logger.WithField("guild_id", ctx.Message.GuildID).Info("leaving guild")
					return errors.Wrapf(bot.session.GuildLeave(ctx.Message.GuildID), "leave guild %v", ctx.Message.GuildID)
				},
			},
		},
	}
}

// Shutdown hands the bot to the shutdown hook it was created with, or closes
// it when there is none.
func (bot *Bot) Shutdown() error {
	if bot.shutdown != nil {
		return bot.shutdown(bot)
	}
	return bot.Close()
}

const defaultPresenceStatus = "dnd"

// presenceArgs splits an optional leading status off the activity text.
func presenceArgs(rest string) (string, string) {
	first, media := splitWord(rest)
	if status := strings.ToLower(first); slices.Contains(store.Statuses, status) {
		return status, strings.TrimSpace(media)
	}
	return defaultPresenceStatus, strings.TrimSpace(rest)
}

func (bot *Bot) changePresence(ctx *Context, change func(r *store.Registration)) error {
	if err := bot.updateRegistration(change); err != nil {
		return err
	}
	if err := bot.updatePresence(); err != nil {
		return errors.Wrap(err, "update presence")
	}
	return ctx.React(checkMark)
}
