// Package discord announces new events and completions to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/event"
	"github.com/osse101/liveops/internal/logger"
)

// Sender is the part of *discordgo.Session the announcer uses
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer posts lifecycle notifications to one channel from a background
// goroutine, so a slow Discord API never holds up a publish.
type Announcer struct {
	sender    Sender
	channelID string
	queue     chan *discordgo.MessageEmbed
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewAnnouncer creates an announcer; call Start before publishing
func NewAnnouncer(sender Sender, channelID string) *Announcer {
	return &Announcer{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan *discordgo.MessageEmbed, AnnounceQueueSize),
		done:      make(chan struct{}),
	}
}

// NewSession opens a bot session for token
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}
	slog.Info(LogMsgSessionOpen)
	return s, nil
}

// Register subscribes to created and completed notifications
func (a *Announcer) Register(bus event.Bus) {
	bus.Subscribe(event.EventCreated, a.HandleEvent)
	bus.Subscribe(event.EventCompleted, a.HandleEvent)
}

// Start launches the send loop
func (a *Announcer) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.run(context.WithoutCancel(ctx))
	logger.FromContext(ctx).Info(LogMsgAnnouncerStarted, "channel_id", a.channelID)
}

// Stop sends whatever is queued and waits for the loop to exit
func (a *Announcer) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.wg.Wait()
	})
}

// HandleEvent turns a notification into an embed and queues it. It never
// returns an error; announcements are best effort.
func (a *Announcer) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	var embed *discordgo.MessageEmbed
	switch evt.Type {
	case event.EventCreated:
		p, err := event.DecodePayload[domain.EventCreatedPayload](evt.Payload)
		if err != nil {
			log.Warn(LogMsgBadPayload, "type", evt.Type, "error", err)
			return nil
		}
		embed = createdEmbed(p)
	case event.EventCompleted:
		p, err := event.DecodePayload[domain.EventCompletedPayload](evt.Payload)
		if err != nil {
			log.Warn(LogMsgBadPayload, "type", evt.Type, "error", err)
			return nil
		}
		embed = completedEmbed(p)
	default:
		return nil
	}

	select {
	case <-a.done:
		return nil
	default:
	}
	select {
	case a.queue <- embed:
	default:
		log.Warn(LogMsgQueueFull, "type", evt.Type)
	}
	return nil
}

func (a *Announcer) run(ctx context.Context) {
	defer a.wg.Done()
	for {
		select {
		case embed := <-a.queue:
			a.send(ctx, embed)
		case <-a.done:
			for {
				select {
				case embed := <-a.queue:
					a.send(ctx, embed)
				default:
					return
				}
			}
		}
	}
}

func (a *Announcer) send(ctx context.Context, embed *discordgo.MessageEmbed) {
	if _, err := a.sender.ChannelMessageSendEmbed(a.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		logger.FromContext(ctx).Error(LogMsgSendFailed, "title", embed.Title, "error", err)
	}
}
