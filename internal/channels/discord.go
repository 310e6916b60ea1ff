package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"mediato115/internal/bus"
	"mediato115/internal/config"
	"mediato115/internal/logging"
	"mediato115/internal/plugin"
)

// titleOption is the name of the string option on the Discord slash command.
const titleOption = "title"

// discordGateway is the part of *discordgo.Session the channel drives.
type discordGateway interface {
	AddHandler(handler any) func()
	Open() error
	Close() error
	ApplicationCommandCreate(appID, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord delivers the command through a Discord application command and
// renders menus as message component buttons.
type Discord struct {
	*baseChannel
	session  discordGateway
	state    *discordgo.State
	guildID  string
	command  plugin.CommandSpec
	dispatch bus.Dispatch
	created  *discordgo.ApplicationCommand
	removers []func()
}

// NewDiscord builds a Discord channel from configuration. It does not connect.
func NewDiscord(cfg config.Discord, logger *slog.Logger) (*Discord, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentDirectMessages | discordgo.IntentMessageContent

	return &Discord{
		baseChannel: newBaseChannel("discord", cfg.AllowFrom, logger),
		session:     session,
		state:       session.State,
		guildID:     strings.TrimSpace(cfg.GuildID),
		command:     plugin.Command(),
	}, nil
}

func (c *Discord) Start(ctx context.Context, dispatch bus.Dispatch) error {
	c.logger.Info("starting discord bot")
	c.dispatch = dispatch
	c.removers = append(c.removers,
		c.session.AddHandler(c.onInteraction),
		c.session.AddHandler(c.onMessage),
	)

	if err := c.session.Open(); err != nil {
		c.removeHandlers()
		return fmt.Errorf("open discord session: %w", err)
	}
	c.setRunning(true)

	user := c.botUser()
	if user == nil {
		c.abortStart()
		return errors.New("discord session has no bot user")
	}
	created, err := c.session.ApplicationCommandCreate(user.ID, c.guildID, c.applicationCommand(), discordgo.WithContext(ctx))
	if err != nil {
		c.abortStart()
		return fmt.Errorf("register discord command: %w", err)
	}
	c.created = created
	c.logger.Info("discord bot connected",
		logging.String("username", user.Username),
		logging.String("command", created.Name),
	)
	return nil
}

func (c *Discord) Stop(ctx context.Context) error {
	c.logger.Info("stopping discord bot")
	c.setRunning(false)
	c.removeHandlers()

	if user := c.botUser(); c.created != nil && user != nil {
		if err := c.session.ApplicationCommandDelete(user.ID, c.guildID, c.created.ID, discordgo.WithContext(ctx)); err != nil {
			c.logger.Warn("discord command cleanup failed", logging.Error(err))
		}
	}
	c.created = nil
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

// abortStart undoes a partially completed Start once the gateway is open.
func (c *Discord) abortStart() {
	c.setRunning(false)
	c.removeHandlers()
	if err := c.session.Close(); err != nil {
		c.logger.Warn("discord session close failed", logging.Error(err))
	}
}

func (c *Discord) removeHandlers() {
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil
}

func (c *Discord) botUser() *discordgo.User {
	if c.state == nil {
		return nil
	}
	return c.state.User
}

// Post sends n to the Discord channel it is addressed to.
func (c *Discord) Post(ctx context.Context, n bus.Notification) error {
	if !c.IsRunning() {
		return errors.New("discord bot not running")
	}
	if n.ChatID == "" {
		return errors.New("discord channel id is empty")
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := &discordgo.MessageSend{
		Content:    discordContent(n),
		Components: discordComponents(n.Buttons),
	}
	if _, err := c.session.ChannelMessageSendComplex(n.ChatID, msg, discordgo.WithContext(sendCtx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (c *Discord) applicationCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.command.Keyword(),
		Description: c.command.Description,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        titleOption,
				Description: "Movie or series title",
				Required:    true,
			},
		},
	}
}

func (c *Discord) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ev, ack, ok := discordInteractionEvent(i, c.command)
	if !ok {
		return
	}
	if !c.IsAllowed(ev.Origin().UserID) {
		ack = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "You are not allowed to use this command.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}
	}
	if err := s.InteractionRespond(i.Interaction, ack); err != nil {
		c.logger.Warn("discord interaction ack failed", logging.Error(err))
	}
	c.emit(c.dispatch, ev)
}

func (c *Discord) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	args, ok := parseCommand(m.Content, c.command.Keyword())
	if !ok {
		return
	}
	c.emit(c.dispatch, bus.CommandEvent{
		Action:  c.command.Action,
		Channel: c.Name(),
		ChatID:  m.ChannelID,
		UserID:  m.Author.ID,
		Args:    args,
	})
}

// discordInteractionEvent converts a slash command or button interaction into
// a bus event and the response that acknowledges it.
func discordInteractionEvent(i *discordgo.InteractionCreate, spec plugin.CommandSpec) (bus.Event, *discordgo.InteractionResponse, bool) {
	if i == nil || i.Interaction == nil {
		return nil, nil, false
	}
	origin := bus.Origin{Channel: "discord", ChatID: i.ChannelID, UserID: interactionUserID(i.Interaction)}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != spec.Keyword() {
			return nil, nil, false
		}
		var title string
		for _, opt := range data.Options {
			if opt == nil || opt.Name != titleOption || opt.Type != discordgo.ApplicationCommandOptionString {
				continue
			}
			title, _ = opt.Value.(string)
		}
		ev := bus.CommandEvent{
			Action:  spec.Action,
			Channel: origin.Channel,
			ChatID:  origin.ChatID,
			UserID:  origin.UserID,
			Args:    strings.TrimSpace(title),
		}
		ack := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("Searching for %q", ev.Args),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}
		return ev, ack, true
	case discordgo.InteractionMessageComponent:
		ev, ok := bus.CallbackFromPayload(i.MessageComponentData().CustomID, origin)
		if !ok {
			return nil, nil, false
		}
		ack := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
		return ev, ack, true
	default:
		return nil, nil, false
	}
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func discordContent(n bus.Notification) string {
	title := strings.TrimSpace(n.Title)
	text := strings.TrimRight(n.Text, "\n")
	if title == "" {
		return text
	}
	if text == "" {
		return "**" + title + "**"
	}
	return "**" + title + "**\n" + text
}

func discordComponents(rows [][]bus.Button) []discordgo.MessageComponent {
	var components []discordgo.MessageComponent
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: b.Payload,
			})
		}
		components = append(components, discordgo.ActionsRow{Components: buttons})
	}
	return components
}
