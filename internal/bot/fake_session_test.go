package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	channelID string
	content   string
}

type fakeSession struct {
	mu        sync.Mutex
	openErr   error
	opened    bool
	closed    bool
	handlers  []interface{}
	sent      []sentMessage
	reactions []string
	statuses  []discordgo.UpdateStatusData
	embeds    []*discordgo.MessageEmbed
	guilds    map[string]*discordgo.Guild
	left      []string
}

func (s *fakeSession) AddHandler(handler interface{}) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
	return func() {}
}

func (s *fakeSession) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.opened = true
	return nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (s *fakeSession) MessageReactionAdd(_, _, emojiID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, emojiID)
	return nil
}

func (s *fakeSession) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, usd)
	return nil
}

func (s *fakeSession) HeartbeatLatency() time.Duration {
	return 42 * time.Millisecond
}

func (s *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeds = append(s.embeds, embed)
	return &discordgo.Message{ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

func (s *fakeSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	guild, ok := s.guilds[guildID]
	if !ok {
		return nil, discordgo.ErrStateNotFound
	}
	return guild, nil
}

func (s *fakeSession) GuildLeave(guildID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.left = append(s.left, guildID)
	return nil
}

func (s *fakeSession) lastEmbed() *discordgo.MessageEmbed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.embeds) == 0 {
		return nil
	}
	return s.embeds[len(s.embeds)-1]
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func (s *fakeSession) lastMessage() string {
	msgs := s.messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].content
}
