package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Session is the part of *discordgo.Session a bot uses.
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
	HeartbeatLatency() time.Duration
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildLeave(guildID string, options ...discordgo.RequestOption) error
}

// discordSession answers guild lookups from the gateway state when it can.
type discordSession struct {
	*discordgo.Session
}

func (s discordSession) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if s.State != nil {
		if guild, err := s.State.Guild(guildID); err == nil {
			return guild, nil
		}
	}
	return s.Session.Guild(guildID, options...)
}

type SessionFactory func(token string) (Session, error)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// NewDiscordSession creates a gateway session authenticated with a bot token.
func NewDiscordSession(token string) (Session, error) {
	if token == "" {
		return nil, errors.New("empty bot token")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "create discord session")
	}
	dg.Identify.Intents = discordgo.MakeIntent(intents)
	return discordSession{Session: dg}, nil
}

var activityTypes = map[string]discordgo.ActivityType{
	"playing":   discordgo.ActivityTypeGame,
	"streaming": discordgo.ActivityTypeStreaming,
	"listening": discordgo.ActivityTypeListening,
	"watching":  discordgo.ActivityTypeWatching,
	"competing": discordgo.ActivityTypeCompeting,
}

func presence(status, activity, media string) discordgo.UpdateStatusData {
	data := discordgo.UpdateStatusData{Status: status}
	if media == "" {
		return data
	}
	activityType, ok := activityTypes[activity]
	if !ok {
		activityType = discordgo.ActivityTypeGame
	}
	data.Activities = []*discordgo.Activity{{Name: media, Type: activityType}}
	return data
}
