package bot

import (
	"github.com/reinodovo/custom-bots/internal/store"
)

const checkMark = "✅"

func setPrefix(ctx *Context) error {
	if ctx.Rest == "" {
		return ErrMissingArgument
	}
	err := ctx.Bot.updateRegistration(func(r *store.Registration) {
		r.Prefix = ctx.Rest
	})
	if err != nil {
		return err
	}
	return ctx.React(checkMark)
}

func setChannel(field func(r *store.Registration) *string) func(ctx *Context) error {
	return func(ctx *Context) error {
		channelID, err := ctx.ChannelArg()
		if err != nil {
			return err
		}
		err = ctx.Bot.updateRegistration(func(r *store.Registration) {
			*field(r) = channelID
		})
		if err != nil {
			return err
		}
		return ctx.React(checkMark)
	}
}

func unsetChannel(field func(r *store.Registration) *string) func(ctx *Context) error {
	return func(ctx *Context) error {
		err := ctx.Bot.updateRegistration(func(r *store.Registration) {
			*field(r) = ""
		})
		if err != nil {
			return err
		}
		return ctx.React(checkMark)
	}
}

func suggestionChannel(r *store.Registration) *string { return &r.SuggestionChannel }
func modlogChannel(r *store.Registration) *string     { return &r.ModlogChannel }

// configCog changes the stored registration. Channel settings are restricted
// to owners since message events carry no member permissions.
func configCog(_ *Bot) *Cog {
	return &Cog{
		Name: "config",
		Commands: []*Command{
			{
				Name: "set",
				Help: "Sets the bot's configuration.",
				Subcommands: []*Command{
					{Name: "prefix", Usage: "<prefix>", Help: "Sets the bot's prefix.", OwnerOnly: true, Run: setPrefix},
					{Name: "suggestion", Aliases: []string{"suggest"}, Usage: "[#channel]", Help: "Sets the suggestion channel.", OwnerOnly: true, Run: setChannel(suggestionChannel)},
					{Name: "modlog", Usage: "[#channel]", Help: "Sets the modlog channel.", OwnerOnly: true, Run: setChannel(modlogChannel)},
				},
			},
			{
				Name: "unset",
				Help: "Unsets the bot's configuration.",
				Subcommands: []*Command{
					{Name: "suggestion", Aliases: []string{"suggest"}, Help: "Unsets the suggestion channel.", OwnerOnly: true, Run: unsetChannel(suggestionChannel)},
					{Name: "modlog", Help: "Unsets the modlog channel.", OwnerOnly: true, Run: unsetChannel(modlogChannel)},
				},
			},
		},
	}
}
