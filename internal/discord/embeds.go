package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/liveops/internal/domain"
)

func createEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterLiveOps,
		},
	}
}

func createdEmbed(p domain.EventCreatedPayload) *discordgo.MessageEmbed {
	embed := createEmbed(fmt.Sprintf(TitleNewEventFmt, p.Title), "", ColorCreated)
	embed.Timestamp = p.StartTime.UTC().Format(time.RFC3339)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: FieldType, Value: displayType(p.EventType), Inline: true},
		{Name: FieldPriority, Value: fmt.Sprintf("%d", p.Priority), Inline: true},
		{Name: FieldStarts, Value: discordTime(p.StartTime)},
		{Name: FieldEnds, Value: discordTime(p.EndTime)},
	}
	return embed
}

func completedEmbed(p domain.EventCompletedPayload) *discordgo.MessageEmbed {
	embed := createEmbed(fmt.Sprintf(TitleCompletedFmt, p.Title), "", ColorCompleted)
	embed.Timestamp = p.CompletedAt.UTC().Format(time.RFC3339)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: FieldPlayer, Value: p.PlayerID, Inline: true},
		{Name: FieldRewards, Value: formatRewards(p.Rewards), Inline: true},
	}
	return embed
}

// discordTime renders a timestamp every reader sees in their own zone
func discordTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", t.Unix(), t.Unix())
}

// displayType turns "weekly_tournament" into "Weekly Tournament"
func displayType(t domain.EventType) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "_", " "))
}

func formatRewards(rewards map[string]int64) string {
	if len(rewards) == 0 {
		return DescriptionNoReward
	}
	parts := make([]string, 0, len(rewards))
	for _, key := range domain.SortedKeys(rewards) {
		parts = append(parts, fmt.Sprintf("%d %s", rewards[key], key))
	}
	return strings.Join(parts, ", ")
}
