// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/llm"
	"github.com/jeranaias/ayane-chat/internal/model"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/ui/components"
	"github.com/jeranaias/ayane-chat/internal/ui/markdown"
	"github.com/jeranaias/ayane-chat/internal/ui/styles"
)

// Fixed layout rows.
const (
	headerHeight   = 1
	composerChrome = 3 // border plus hint line
	helpHeight     = 1
)

// =============================================================================
// MODEL DEFINITION
// =============================================================================

// Model is the chat session controller and the screen that renders it.
type Model struct {
	cfg  *config.Config
	life *lifecycle

	conversation *model.Conversation

	// Components
	composer Composer
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	theme    *styles.Theme
	toasts   *components.ToastManager

	renderer    *markdown.Renderer
	renderCache map[string]string
	targets     []clickTarget

	// Backends
	streamer llm.Streamer
	pipeline *playback.Pipeline
	device   audio.Device
	adapters *playback.Registry
	sender   *senderRef

	// Turn state
	loading        bool
	streamingMsgID string
	streamingStats *model.Statistics
	buffer         *StreamingBuffer
	limiter        *rate.Limiter
	ticking        bool
	toastTicking   bool

	// Index into playable messages; -1 follows the newest.
	selected int

	width  int
	height int
}

// Options configures a new Model.
type Options struct {
	Config   *config.Config
	Streamer llm.Streamer

	// Pipeline plays assistant messages; nil hides the Listen control.
	Pipeline *playback.Pipeline

	// Device is used to rebuild the pipeline when the config reloads.
	Device audio.Device

	// Context bounds all streams and playbacks.
	Context context.Context

	Theme *styles.Theme
}

// New creates the chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	keys := DefaultKeyMap()

	sp := spinner.New(
		spinner.WithSpinner(styles.ThinkingSpinner),
		spinner.WithStyle(theme.Thinking),
	)

	vp := viewport.New(80, 10)
	vp.MouseWheelEnabled = true

	m := Model{
		cfg:          cfg,
		life:         newLifecycle(opts.Context),
		conversation: model.NewConversation(),
		composer:     NewComposer(cfg.UI.ComposerMinHeight, cfg.UI.ComposerMaxHeight, keys),
		viewport:     vp,
		spinner:      sp,
		help:         help.New(),
		keys:         keys,
		theme:        theme,
		toasts:       components.NewToastManager(),
		renderCache:  make(map[string]string),
		streamer:     opts.Streamer,
		pipeline:     opts.Pipeline,
		device:       opts.Device,
		adapters:     playback.NewRegistry(),
		sender:       &senderRef{},
		buffer:       NewStreamingBuffer(),
		limiter:      newRedrawLimiter(),
		selected:     -1,
		width:        80,
		height:       24,
	}
	m.composer.SetWidth(m.width - 4)
	m.theme.SetSize(m.width, m.height)
	m.rebuildRenderer()
	m.layout()
	m.refresh(true)
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case StreamTokenMsg:
		return m.handleStreamToken(msg)

	case StreamTickMsg:
		return m.handleStreamTick(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case PlaybackDoneMsg:
		return m.handlePlaybackDone(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			m.layout()
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if last := m.conversation.InProgress(); last != nil && last.IsEmpty() {
			m.refresh(false)
		}
		return m, cmd
	}

	return m, nil
}

// View renders the screen.
func (m Model) View() string {
	parts := []string{m.renderHeader(), m.viewport.View()}
	if stack := m.renderToasts(); stack != "" {
		parts = append(parts, stack)
	}
	parts = append(parts, m.renderComposer(), m.help.ShortHelpView(m.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// SESSION CONTROLLER
// =============================================================================

// Messages returns the conversation in insertion order.
func (m Model) Messages() []*model.Message {
	out := make([]*model.Message, len(m.conversation.Messages))
	copy(out, m.conversation.Messages)
	return out
}

// Draft returns the composer text.
func (m Model) Draft() string {
	return m.composer.Value()
}

// SetDraft replaces the composer text.
func (m *Model) SetDraft(s string) {
	m.composer.SetValue(s)
	m.layout()
}

// SelectPrompt copies suggested prompt i into the draft without submitting.
func (m *Model) SelectPrompt(i int) {
	if i < 0 || i >= len(SuggestedPrompts) {
		return
	}
	m.SetDraft(SuggestedPrompts[i])
}

// Loading reports whether a reply is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// CanSubmit reports whether Submit would start a turn.
func (m Model) CanSubmit() bool {
	return !m.loading && strings.TrimSpace(m.composer.Value()) != ""
}

// Config returns the active configuration.
func (m Model) Config() *config.Config {
	return m.cfg
}

// Toasts returns the active notifications, newest first.
func (m Model) Toasts() []components.Toast {
	return m.toasts.Toasts()
}

// Submit sends the draft. It does nothing and returns nil when the draft
// is blank or a reply is already in flight.
func (m *Model) Submit() tea.Cmd {
	if !m.CanSubmit() {
		return nil
	}

	draft := strings.TrimSpace(m.composer.Value())
	m.conversation.AddUserMessage(draft)
	m.composer.Reset()

	m.loading = true
	reply := m.conversation.AddAssistantMessage()
	m.streamingMsgID = reply.ID
	m.streamingStats = model.NewStatistics()
	m.buffer.Reset()
	m.selected = -1

	m.layout()
	m.refresh(true)

	log.Info("submit", "message", reply.ID, "chars", len(draft), "history", m.conversation.Len())

	cmds := []tea.Cmd{m.streamCmd(reply.ID), m.spinner.Tick}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, streamTickCmd())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

func (m Model) handleStreamToken(msg StreamTokenMsg) (tea.Model, tea.Cmd) {
	if !m.loading || msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.streamingStats.RecordToken()
	m.buffer.Write(msg.Token)
	if m.limiter.Allow() {
		m.flushStream()
	}
	return m, nil
}

func (m Model) handleStreamTick(_ StreamTickMsg) (tea.Model, tea.Cmd) {
	if !m.loading {
		m.ticking = false
		return m, nil
	}
	m.flushStream()
	return m, streamTickCmd()
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.flushStream()

	stats := m.streamingStats
	stats.Finalize(msg.CompletionTokens)
	m.conversation.FinalizeLast(stats)
	m.endTurn()
	m.refresh(true)

	cmd := m.composer.Focus()
	return m, cmd
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.flushStream()
	m.conversation.FailLast()
	m.endTurn()
	m.refresh(true)

	m.toasts.AddError(llm.Describe(msg.Err))
	cmd := m.toastCmd()
	focus := m.composer.Focus()
	return m, tea.Batch(cmd, focus)
}

// flushStream moves buffered tokens into the in-progress message.
func (m *Model) flushStream() {
	content, ok := m.buffer.Flush()
	if !ok {
		return
	}
	m.conversation.AppendToLast(content)
	m.refresh(true)
}

func (m *Model) endTurn() {
	m.loading = false
	m.streamingMsgID = ""
	m.streamingStats = nil
	m.buffer.Reset()
	m.layout()
}

// =============================================================================
// INPUT HANDLERS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.life.shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		if m.toasts.DismissNewest() {
			m.layout()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		cmd := m.Submit()
		return m, cmd

	case key.Matches(msg, m.keys.Prompt):
		if m.conversation.IsEmpty() {
			m.SelectPrompt(promptKeys[msg.String()])
		}
		return m, nil

	case key.Matches(msg, m.keys.SelectPrev):
		m.moveSelection(-1)
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.SelectNext):
		m.moveSelection(1)
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.Listen):
		cmd := m.play(m.selectedMessageID())
		return m, cmd

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	prev := m.composer.Height()
	cmd := m.composer.Update(msg)
	if m.composer.Height() != prev {
		m.layout()
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.MouseLeft {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if msg.Y < headerHeight || msg.Y >= headerHeight+m.viewport.Height {
		return m, nil
	}
	target, ok := targetAt(m.targets, msg.Y-headerHeight+m.viewport.YOffset)
	if !ok {
		return m, nil
	}

	switch target.kind {
	case targetPrompt:
		if m.conversation.IsEmpty() {
			m.SelectPrompt(target.prompt)
		}
		return m, nil
	case targetListen:
		cmd := m.play(target.messageID)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width
	m.composer.SetWidth(msg.Width - 4)
	m.rebuildRenderer()
	m.layout()
	m.refresh(true)
	return m, nil
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Config == nil {
		log.Warn("config reload failed", "err", msg.Err)
		m.toasts.AddWarning("Config reload failed; keeping previous settings")
		cmd := m.toastCmd()
		return m, cmd
	}

	cfg := msg.Config
	if streamer, err := llm.New(cfg.Chat); err != nil {
		log.Warn("chat backend not rebuilt", "err", err)
	} else {
		m.streamer = streamer
	}

	if m.device != nil {
		pipeline, err := playback.FromConfig(cfg.Speech, m.device)
		if err != nil {
			log.Warn("speech pipeline not rebuilt", "err", err)
		} else {
			m.pipeline = pipeline
		}
	}

	themeChanged := cfg.UI.CodeTheme != m.cfg.UI.CodeTheme || cfg.UI.WordWrap != m.cfg.UI.WordWrap
	m.cfg = cfg
	m.composer.SetBounds(cfg.UI.ComposerMinHeight, cfg.UI.ComposerMaxHeight)
	if themeChanged {
		m.rebuildRenderer()
	}
	m.layout()
	m.refresh(false)

	log.Info("config reloaded", "provider", cfg.Chat.Provider, "model", cfg.Chat.Model, "voice", cfg.Speech.VoiceID)
	m.toasts.AddStatus("Configuration reloaded")
	cmd := m.toastCmd()
	return m, cmd
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport to the space the other parts leave.
func (m *Model) layout() {
	toastHeight := 0
	if stack := m.renderToasts(); stack != "" {
		toastHeight = lipgloss.Height(stack)
	}
	h := m.height - headerHeight - (m.composer.Height() + composerChrome) - helpHeight - toastHeight
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

// refresh re-renders the transcript, optionally scrolling to the bottom.
func (m *Model) refresh(gotoBottom bool) {
	content, targets := m.renderTranscript()
	m.viewport.SetContent(clipLines(content, m.viewport.Width))
	m.targets = targets
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) rebuildRenderer() {
	width := m.theme.ContentWidth() - 2
	if ww := m.cfg.UI.WordWrap; ww > 0 && ww < width {
		width = ww
	}
	r, err := markdown.New(markdown.DefaultOptions(width, m.cfg.UI.CodeTheme))
	if err != nil {
		log.Warn("markdown renderer unavailable", "err", err)
		if m.renderer != nil {
			return
		}
		r, _ = markdown.New(markdown.Options{Width: width})
	}
	m.renderer = r
	m.renderCache = make(map[string]string)
}

// toastCmd starts the toast tick loop unless it is already running.
func (m *Model) toastCmd() tea.Cmd {
	m.layout()
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.AssistantBadge.Render("🤖 Ayane")
	status := m.theme.HelpDesc.Render(m.cfg.Chat.Provider + " · " + m.cfg.Chat.Model)
	if m.loading {
		status = m.theme.Thinking.Render(m.spinner.View() + " Thinking...")
	} else if n := m.adapters.Playing(); n > 0 {
		status = m.theme.ListenDisabled.Render(PlayingLabel)
	}
	return title + "  " + status
}

func (m Model) renderToasts() string {
	return components.RenderToastStack(m.toasts.Toasts(), m.width, time.Now())
}

func (m Model) renderComposer() string {
	box := m.theme.ComposerFocused.Width(m.width - 2).Render(m.composer.View())

	sendStyle := m.theme.SendDisabled
	if m.CanSubmit() {
		sendStyle = m.theme.SendEnabled
	}
	hint := sendStyle.Render("⏎ Send") + m.theme.HelpSep.Render("  │  ") + m.theme.HelpDesc.Render("alt+enter new line")
	return box + "\n" + hint
}
