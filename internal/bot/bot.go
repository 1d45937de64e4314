package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/store"
	"github.com/reinodovo/custom-bots/internal/timer"
	"github.com/reinodovo/custom-bots/internal/usage"
	"github.com/sirupsen/logrus"
)

const reminderEvent = "reminder"

// Settings are shared by every bot of a runner.
type Settings struct {
	MasterOwner int64
	// AllCogs is what the "~" wildcard expands to. Empty means every built-in
	// cog.
	AllCogs []string
}

type Options struct {
	Store    *store.Store
	Session  Session
	Settings Settings
	Logger   *logrus.Logger
	// Shutdown is called by the shutdown command. Without it the bot closes
	// itself.
	Shutdown func(b *Bot) error
}

// Bot runs one registration on one Discord session.
type Bot struct {
	store    *store.Store
	session  Session
	settings Settings
	timers   *timer.Dispatcher
	usage    *usage.Recorder
	logger   *logrus.Entry
	spam     *spamControl
	shutdown func(b *Bot) error

	commands map[string]*Command
	cogs     []*Cog

	closeOnce sync.Once
	closeErr  error

	mu           sync.RWMutex
	registration store.Registration
	userID       string
	startedAt    time.Time
	ready        bool
}

func New(registration store.Registration, opts Options) (*Bot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithFields(logrus.Fields{
		"bot_id":   registration.ID,
		"bot_name": registration.Name,
	})

	timers, err := timer.NewDispatcher(opts.Store, entry)
	if err != nil {
		return nil, err
	}
	recorder, err := usage.NewRecorder(opts.Store, registration.ID, usage.FlushInterval, entry)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		store:        opts.Store,
		session:      opts.Session,
		settings:     opts.Settings,
		timers:       timers,
		usage:        recorder,
		logger:       entry,
		spam:         newSpamControl(spamRate, spamPer),
		shutdown:     opts.Shutdown,
		commands:     make(map[string]*Command),
		registration: registration,
		startedAt:    time.Now(),
	}
	bot.addCog(helpCog(bot))
	bot.loadCogs(registration.Cogs)
	timers.Handle(reminderEvent, bot.onReminder)
	return bot, nil
}

// Open connects the session. Discord rejecting the token surfaces here.
func (bot *Bot) Open() error {
	bot.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		bot.onReady(r)
	})
	bot.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		bot.handleMessage(m.Message)
	})

	bot.timers.Start()
	bot.usage.Start()
	if err := bot.session.Open(); err != nil {
		_ = bot.timers.Stop()
		_ = bot.usage.Stop()
		return errors.Wrapf(err, "open session for %v", bot.Registration())
	}
	return nil
}

// Close disconnects the session and stops the timers. It is safe to call more
// than once.
func (bot *Bot) Close() error {
	bot.closeOnce.Do(func() {
		bot.closeErr = bot.session.Close()
		for _, stop := range []func() error{bot.timers.Stop, bot.usage.Stop} {
			if err := stop(); bot.closeErr == nil {
				bot.closeErr = err
			}
		}
	})
	return bot.closeErr
}

func (bot *Bot) Registration() store.Registration {
	bot.mu.RLock()
	defer bot.mu.RUnlock()
	return bot.registration
}

func (bot *Bot) UserID() string {
	bot.mu.RLock()
	defer bot.mu.RUnlock()
	return bot.userID
}

func (bot *Bot) Uptime() time.Duration {
	bot.mu.RLock()
	defer bot.mu.RUnlock()
	return time.Since(bot.startedAt)
}

// Cogs returns the names of the loaded cogs in load order.
func (bot *Bot) Cogs() []string {
	names := make([]string, 0, len(bot.cogs))
	for _, cog := range bot.cogs {
		names = append(names, cog.Name)
	}
	return names
}

func (bot *Bot) IsOwner(userID string) bool {
	registration := bot.Registration()
	for _, owner := range []int64{registration.OwnerID, bot.settings.MasterOwner} {
		if owner != 0 && strconv.FormatInt(owner, 10) == userID {
			return true
		}
	}
	return false
}

// updateRegistration applies change and persists the result. The in-memory
// registration only changes once the store accepted it.
func (bot *Bot) updateRegistration(change func(r *store.Registration)) error {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	updated := bot.registration
	updated.Cogs = append([]string(nil), bot.registration.Cogs...)
	change(&updated)
	if err := bot.store.SaveRegistration(updated); err != nil {
		return err
	}
	bot.registration = updated
	return nil
}

func (bot *Bot) updatePresence() error {
	r := bot.Registration()
	return bot.session.UpdateStatusComplex(presence(r.Status, r.Activity, r.Media))
}

func (bot *Bot) onReady(r *discordgo.Ready) {
	bot.mu.Lock()
	if bot.ready {
		bot.mu.Unlock()
		return
	}
	bot.ready = true
	bot.startedAt = time.Now()
	if r.User != nil {
		bot.userID = r.User.ID
	}
	bot.mu.Unlock()

	bot.logger.WithField("user_id", bot.UserID()).Info("logged in")

	if err := bot.updatePresence(); err != nil {
		bot.logger.WithError(err).Warn("failed to update presence")
	}
	restored, err := bot.timers.Restore(bot.Registration().ID)
	if err != nil {
		bot.logger.WithError(err).Error("failed to restore timers")
		return
	}
	bot.logger.WithField("timers", restored).Info("timers restored")
}

func (bot *Bot) onReminder(t store.Timer) {
	content := fmt.Sprintf("<@%v>, reminder: %v", t.AuthorID, t.Content)
	if _, err := bot.session.ChannelMessageSend(t.ChannelID, content); err != nil {
		bot.logger.WithError(err).WithField("timer_id", t.ID).Error("failed to deliver reminder")
	}
}

func (bot *Bot) isExactMention(content string) bool {
	userID := bot.UserID()
	if userID == "" {
		return false
	}
	content = strings.TrimSpace(content)
	return content == "<@"+userID+">" || content == "<@!"+userID+">"
}

// matchPrefix returns the prefix the message starts with and the remaining
// text. The configured prefix is matched case-insensitively; mentioning the bot
// works as a prefix too.
func (bot *Bot) matchPrefix(content string) (string, string, bool) {
	prefix := bot.Registration().Prefix
	if prefix != "" && len(content) >= len(prefix) && strings.EqualFold(content[:len(prefix)], prefix) {
		return content[:len(prefix)], content[len(prefix):], true
	}
	if userID := bot.UserID(); userID != "" {
		for _, mention := range []string{"<@" + userID + "> ", "<@!" + userID + "> "} {
			if strings.HasPrefix(content, mention) {
				return mention, content[len(mention):], true
			}
		}
	}
	return "", "", false
}

var channelMention = regexp.MustCompile(`^<#([0-9]+)>$`)

func (bot *Bot) handleMessage(m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	if bot.isExactMention(m.Content) {
		reply := fmt.Sprintf("Hello! My prefix is `%v`", bot.Registration().Prefix)
		if _, err := bot.session.ChannelMessageSend(m.ChannelID, reply); err != nil {
			bot.logger.WithError(err).Warn("failed to reply to mention")
		}
		return
	}

	prefix, rest, ok := bot.matchPrefix(m.Content)
	if !ok {
		return
	}
	name, rest := splitWord(rest)
	command, ok := bot.commands[strings.ToLower(name)]
	if !ok {
		return
	}

	if !bot.spam.allow(m.Author.ID, time.Now()) {
		bot.logger.WithField("user_id", m.Author.ID).Debug("auto spam detected, ignoring command")
		return
	}

	ctx := &Context{
		Bot:         bot,
		Message:     m,
		Prefix:      prefix,
		InvokedWith: strings.ToLower(name),
		Command:     command,
	}

	guildID := bot.Registration().GuildID
	if guildID != 0 && m.GuildID != strconv.FormatInt(guildID, 10) && !bot.IsOwner(m.Author.ID) {
		if err := ctx.Reply("This command is disabled in this guild."); err != nil {
			bot.logger.WithError(err).Warn("failed to reply")
		}
		return
	}

	bot.invoke(ctx, command, rest)
}

func (bot *Bot) invoke(ctx *Context, command *Command, rest string) {
	// Descend into subcommands while the next word names one.
	for {
		next, remaining := splitWord(rest)
		sub := command.subcommand(next)
		if sub == nil {
			break
		}
		command, rest = sub, remaining
		ctx.InvokedWith = strings.ToLower(next)
	}
	ctx.Command = command
	ctx.Rest = strings.TrimSpace(rest)
	ctx.Args = strings.Fields(rest)
	bot.usage.Record(command.QualifiedName())

	err := command.run(ctx)
	bot.handleError(ctx, err)
}

func (bot *Bot) handleError(ctx *Context, err error) {
	if err == nil || errors.Is(err, ErrNotOwner) {
		return
	}

	var argErr *ArgumentError
	switch {
	case errors.Is(err, ErrMissingArgument):
		err = ctx.Reply(fmt.Sprintf("Invalid Syntax. `%vhelp %v` for more info.", ctx.Prefix, ctx.Command.QualifiedName()))
	case errors.As(err, &argErr):
		err = ctx.Reply(fmt.Sprintf("Invalid argument: %v", argErr.Reason))
	default:
		bot.logger.WithError(err).WithField("command", ctx.Command.QualifiedName()).Error("command failed")
		return
	}
	if err != nil {
		bot.logger.WithError(err).Warn("failed to reply")
	}
}

func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t\n")
	i := strings.IndexAny(s, " \t\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}
