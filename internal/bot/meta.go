package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const imageSize = "1024"

func metaCog(bot *Bot) *Cog {
	return &Cog{
		Name: "meta",
		Commands: []*Command{
			{
				Name: "ping",
				Help: "Shows the gateway latency.",
				Run: func(ctx *Context) error {
					latency := bot.session.HeartbeatLatency()
					return ctx.Reply(fmt.Sprintf("Pong! `%v ms`", latency.Milliseconds()))
				},
			},
			{
				Name: "uptime",
				Help: "Shows how long the bot has been online.",
				Run: func(ctx *Context) error {
					return ctx.Reply(fmt.Sprintf("Uptime: `%v`", bot.Uptime().Round(time.Second)))
				},
			},
			{
				Name:    "avatar",
				Aliases: []string{"av"},
				Usage:   "[@user]",
				Help:    "Shows the avatar of a user.",
				Run: func(ctx *Context) error {
					target := ctx.Target()
					return ctx.ReplyEmbed(&discordgo.MessageEmbed{
						Title:     fmt.Sprintf("%v's Avatar", target),
						Image:     &discordgo.MessageEmbedImage{URL: target.AvatarURL(imageSize)},
						Timestamp: time.Now().UTC().Format(time.RFC3339),
					})
				},
			},
			{
				Name:    "serverinfo",
				Aliases: []string{"guildinfo", "si", "gi"},
				Help:    "Shows the basic stats of this server.",
				Run: func(ctx *Context) error {
					guild, err := bot.session.Guild(ctx.Message.GuildID)
					if err != nil {
						return errors.Wrapf(err, "get guild %v", ctx.Message.GuildID)
					}
					return ctx.ReplyEmbed(serverInfo(guild))
				},
			},
			{
				Name:    "guildicon",
				Aliases: []string{"guildavatar", "serverlogo", "servericon"},
				Help:    "Shows the icon of this server.",
				Run: func(ctx *Context) error {
					guild, err := bot.session.Guild(ctx.Message.GuildID)
					if err != nil {
						return errors.Wrapf(err, "get guild %v", ctx.Message.GuildID)
					}
					if guild.Icon == "" {
						return ctx.Reply(fmt.Sprintf("<@%v> %v has no icon yet!", ctx.Message.Author.ID, guild.Name))
					}
					return ctx.ReplyEmbed(&discordgo.MessageEmbed{
						Image:     &discordgo.MessageEmbedImage{URL: guild.IconURL(imageSize)},
						Timestamp: time.Now().UTC().Format(time.RFC3339),
					})
				},
			},
		},
	}
}

func serverInfo(guild *discordgo.Guild) *discordgo.MessageEmbed {
	var categories, text, voice int
	for _, channel := range guild.Channels {
		switch channel.Type {
		case discordgo.ChannelTypeGuildCategory:
			categories++
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
			text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			voice++
		}
	}

	members := guild.MemberCount
	if members == 0 {
		members = len(guild.Members)
	}
	var bots int
	for _, member := range guild.Members {
		if member.User != nil && member.User.Bot {
			bots++
		}
	}

	created := "N/A"
	if at, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		created = fmt.Sprintf("<t:%v>", at.Unix())
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Server Info: " + guild.Name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "ID: " + guild.ID},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: fmt.Sprintf("<@%v>", guild.OwnerID), Inline: true},
			{Name: "Created at", Value: created, Inline: true},
			{Name: "Total Members", Value: fmt.Sprintf("Members: %v\nHumans: %v\nBots: %v", members, members-bots, bots), Inline: true},
			{Name: "Total channels", Value: fmt.Sprintf("Categories: %v\nText: %v\nVoice: %v", categories, text, voice), Inline: true},
			{Name: "General", Value: fmt.Sprintf("Roles: %v\nEmojis: %v\nBoost Level: %v", len(guild.Roles), len(guild.Emojis), int(guild.PremiumTier)), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL(imageSize)}
	}
	return embed
}
