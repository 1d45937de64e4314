package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	ErrBadArgument     = errors.New("bad argument")
	ErrMissingArgument = errors.New("missing required argument")
	ErrNotOwner        = errors.New("not an owner")
)

// ArgumentError is a bad argument whose reason is shown to the user.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrBadArgument
}

func badArgument(format string, args ...any) error {
	return &ArgumentError{Reason: fmt.Sprintf(format, args...)}
}

type Command struct {
	Name        string
	Aliases     []string
	Usage       string
	Help        string
	OwnerOnly   bool
	Subcommands []*Command
	Run         func(ctx *Context) error

	parent *Command
	cog    *Cog
}

// QualifiedName includes the names of the parent groups, e.g. "set prefix".
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.QualifiedName() + " " + c.Name
}

func (c *Command) names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

func (c *Command) subcommand(name string) *Command {
	name = strings.ToLower(name)
	for _, sub := range c.Subcommands {
		for _, n := range sub.names() {
			if n == name {
				return sub
			}
		}
	}
	return nil
}

func (c *Command) ownerOnly() bool {
	for cmd := c; cmd != nil; cmd = cmd.parent {
		if cmd.OwnerOnly {
			return true
		}
	}
	return false
}

const notOwnerReply = "You are not the owner of this bot."

func (c *Command) run(ctx *Context) error {
	if c.cog != nil && c.cog.OwnerOnly && !ctx.Bot.IsOwner(ctx.Message.Author.ID) {
		if err := ctx.Reply(notOwnerReply); err != nil {
			return err
		}
		return ErrNotOwner
	}
	if c.ownerOnly() && !ctx.Bot.IsOwner(ctx.Message.Author.ID) {
		return ErrNotOwner
	}
	if c.Run == nil {
		return ctx.Reply(commandHelp(ctx.Prefix, c))
	}
	return c.Run(ctx)
}

// Context is the invocation of a command by a message.
type Context struct {
	Bot         *Bot
	Message     *discordgo.Message
	Prefix      string
	InvokedWith string
	Command     *Command
	// Rest is the raw text after the command name.
	Rest string
	Args []string
}

func (ctx *Context) Reply(content string) error {
	_, err := ctx.Bot.session.ChannelMessageSend(ctx.Message.ChannelID, content)
	return err
}

func (ctx *Context) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	_, err := ctx.Bot.session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed)
	return err
}

// Target returns the first user mentioned in the message, or its author.
func (ctx *Context) Target() *discordgo.User {
	for _, user := range ctx.Message.Mentions {
		if user != nil && user.ID != ctx.Bot.UserID() {
			return user
		}
	}
	return ctx.Message.Author
}

func (ctx *Context) React(emoji string) error {
	return ctx.Bot.session.MessageReactionAdd(ctx.Message.ChannelID, ctx.Message.ID, emoji)
}

// ChannelArg returns the channel mentioned in the first argument, or the
// channel the command was sent in.
func (ctx *Context) ChannelArg() (string, error) {
	if len(ctx.Args) == 0 {
		return ctx.Message.ChannelID, nil
	}
	match := channelMention.FindStringSubmatch(ctx.Args[0])
	if match == nil {
		return "", badArgument("channel %q not found", ctx.Args[0])
	}
	return match[1], nil
}
