package bot

import (
	"fmt"
	"strings"
)

func helpCog(bot *Bot) *Cog {
	return &Cog{
		Name: "help",
		Commands: []*Command{
			{
				Name:  "help",
				Usage: "[command]",
				Help:  "Shows the commands or help for one command.",
				Run: func(ctx *Context) error {
					if len(ctx.Args) == 0 {
						return ctx.Reply(bot.overview(ctx.Prefix))
					}
					command := bot.commands[strings.ToLower(ctx.Args[0])]
					for _, name := range ctx.Args[1:] {
						if command == nil {
							break
						}
						command = command.subcommand(name)
					}
					if command == nil {
						return ctx.Reply(fmt.Sprintf("No command called `%v` found.", strings.Join(ctx.Args, " ")))
					}
					return ctx.Reply(commandHelp(ctx.Prefix, command))
				},
			},
		},
	}
}

func (bot *Bot) overview(prefix string) string {
	var b strings.Builder
	for _, cog := range bot.cogs {
		names := make([]string, 0, len(cog.Commands))
		for _, command := range cog.Commands {
			names = append(names, "`"+command.Name+"`")
		}
		fmt.Fprintf(&b, "**%v**: %v\n", cog.Name, strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "\nUse `%vhelp <command>` for more info on a command.", prefix)
	return b.String()
}

func commandHelp(prefix string, command *Command) string {
	var b strings.Builder
	usage := strings.TrimSpace(prefix + command.QualifiedName() + " " + command.Usage)
	fmt.Fprintf(&b, "`%v`", usage)
	if command.Help != "" {
		fmt.Fprintf(&b, "\n%v", command.Help)
	}
	if len(command.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %v", strings.Join(command.Aliases, ", "))
	}
	if len(command.Subcommands) > 0 {
		b.WriteString("\nSubcommands:")
		for _, sub := range command.Subcommands {
			fmt.Fprintf(&b, "\n- `%v` %v", sub.Name, sub.Help)
		}
	}
	return b.String()
}
