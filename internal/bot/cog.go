package bot

import (
	"sort"
	"strings"

	"github.com/reinodovo/custom-bots/internal/store"
)

// Cog is a named group of commands that a registration can enable.
type Cog struct {
	Name     string
	Commands []*Command
	// OwnerOnly restricts every command of the cog and tells other users so.
	OwnerOnly bool
}

var builtinCogs = map[string]func(bot *Bot) *Cog{
	"meta":   metaCog,
	"config": configCog,
	"owner":  ownerCog,
	"misc":   miscCog,
}

// BuiltinCogs lists the cogs every bot can load.
func BuiltinCogs() []string {
	names := make([]string, 0, len(builtinCogs))
	for name := range builtinCogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (bot *Bot) expandCogs(names []string) []string {
	if len(names) == 1 && names[0] == store.AllCogs {
		if len(bot.settings.AllCogs) > 0 {
			return bot.settings.AllCogs
		}
		return BuiltinCogs()
	}
	return names
}

func (bot *Bot) loadCogs(names []string) {
	for _, name := range bot.expandCogs(names) {
		name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "cogs.")
		logger := bot.logger.WithField("cog", name)

		newCog, ok := builtinCogs[name]
		if !ok {
			logger.Warn("cog not found, skipping")
			continue
		}
		if bot.hasCog(name) {
			logger.Warn("cog is already loaded, skipping")
			continue
		}
		bot.addCog(newCog(bot))
		logger.Info("cog loaded")
	}
}

func (bot *Bot) hasCog(name string) bool {
	for _, cog := range bot.cogs {
		if cog.Name == name {
			return true
		}
	}
	return false
}

func (bot *Bot) addCog(cog *Cog) {
	for _, command := range cog.Commands {
		setParents(command, cog)
		for _, name := range command.names() {
			if _, exists := bot.commands[name]; exists {
				bot.logger.WithField("command", name).Warn("command name already taken, skipping")
				continue
			}
			bot.commands[name] = command
		}
	}
	bot.cogs = append(bot.cogs, cog)
}

func setParents(command *Command, cog *Cog) {
	command.cog = cog
	for _, sub := range command.Subcommands {
		sub.parent = command
		setParents(sub, cog)
	}
}
