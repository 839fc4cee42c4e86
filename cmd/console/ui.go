package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/adventure-engine/pkg/chat"
)

const (
	NarratorName    = "Narrator"
	PlaceHolderText = "What would you like to do?"
	SelectionPrompt = "Choose your character and setting..."
)

// uiPhase tracks where the player is in the session lifecycle.
type uiPhase int

const (
	phaseSelecting uiPhase = iota // character options shown, awaiting selection
	phasePlaying                  // adventure underway
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	client    *http.Client
	sessionID uuid.UUID
	phase     uiPhase

	viewport viewport.Model
	textarea textarea.Model
	messages []chat.ChatMessage
	ready    bool
	width    int
	height   int
	err      error
	loading  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type selectionResultMsg struct {
	response *chat.SessionResponse
	err      error
}

type turnResultMsg struct {
	response *chat.ChatResponse
	err      error
}

type progressTickMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, created *chat.SessionResponse) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = SelectionPrompt
	ta.Focus()
	ta.Prompt = "> "
	ta.SetHeight(2)
	ta.CharLimit = 500
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return ConsoleUI{
		config:    cfg,
		client:    client,
		sessionID: created.SessionID,
		phase:     phaseSelecting,
		textarea:  ta,
		messages: []chat.ChatMessage{
			{Role: chat.ChatRoleAssistant, Content: created.Options},
		},
	}
}

func (ui ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		headerHeight := 2
		footerHeight := ui.textarea.Height() + 3

		if !ui.ready {
			ui.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			ui.ready = true
		} else {
			ui.viewport.Width = msg.Width
			ui.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		ui.textarea.SetWidth(msg.Width - 4)
		ui.viewport.SetContent(ui.renderMessages())
		ui.viewport.GotoBottom()

	case tea.KeyMsg:
		if ui.showQuitModal {
			switch msg.String() {
			case "y", "Y", "enter":
				return ui, tea.Quit
			case "n", "N", "esc":
				ui.showQuitModal = false
			}
			return ui, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			ui.showQuitModal = true
			return ui, nil
		case tea.KeyCtrlY:
			if content, ok := ui.lastNarration(); ok {
				_ = clipboard.WriteAll(content)
			}
			return ui, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(ui.textarea.Value())
			if input == "" || ui.loading {
				return ui, nil
			}
			if strings.EqualFold(input, "quit") {
				ui.showQuitModal = true
				return ui, nil
			}
			ui.textarea.Reset()
			ui.messages = append(ui.messages, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
			})
			ui.loading = true
			ui.viewport.SetContent(ui.renderMessages())
			ui.viewport.GotoBottom()

			if ui.phase == phaseSelecting {
				return ui, tea.Batch(ui.sendSelection(input), ui.tickProgress())
			}
			return ui, tea.Batch(ui.sendTurn(input), ui.tickProgress())
		}

	case selectionResultMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
		} else {
			ui.err = nil
			ui.phase = phasePlaying
			ui.textarea.Placeholder = PlaceHolderText
			if msg.response.InitialStory != "" {
				ui.messages = append(ui.messages, chat.ChatMessage{
					Role:    chat.ChatRoleAssistant,
					Content: msg.response.InitialStory,
				})
			}
		}
		ui.viewport.SetContent(ui.renderMessages())
		ui.viewport.GotoBottom()

	case turnResultMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
		} else {
			ui.err = nil
			ui.messages = append(ui.messages, chat.ChatMessage{
				Role:    chat.ChatRoleAssistant,
				Content: msg.response.Message,
			})
		}
		ui.viewport.SetContent(ui.renderMessages())
		ui.viewport.GotoBottom()

	case progressTickMsg:
		if ui.loading {
			ui.progressTick++
			ui.viewport.SetContent(ui.renderMessages())
			ui.viewport.GotoBottom()
			return ui, ui.tickProgress()
		}
	}

	ui.textarea, taCmd = ui.textarea.Update(msg)
	ui.viewport, vpCmd = ui.viewport.Update(msg)
	return ui, tea.Batch(taCmd, vpCmd)
}

func (ui ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	if ui.showQuitModal {
		modal := modalStyle.Render("Quit the adventure?\n\n[y] yes   [n] no")
		return lipgloss.Place(ui.width, ui.height, lipgloss.Center, lipgloss.Center, modal)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Adventure Engine"))
	b.WriteString("\n\n")
	b.WriteString(ui.viewport.View())
	b.WriteString("\n")
	if ui.err != nil {
		b.WriteString(errorStyle.Render("Error: " + ui.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(ui.textarea.View())
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("enter: send • ctrl+y: copy last narration • ctrl+c: quit"))
	return b.String()
}

func (ui ConsoleUI) renderMessages() string {
	width := ui.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, msg := range ui.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case chat.ChatRoleUser:
			b.WriteString(speakerStyle.Render("You: "))
			b.WriteString(userStyle.Render(wordwrap.String(msg.Content, width)))
		default:
			b.WriteString(speakerStyle.Render(NarratorName + ": "))
			b.WriteString(narratorStyle.Render(wordwrap.String(msg.Content, width)))
		}
	}
	if ui.loading {
		b.WriteString("\n\n")
		b.WriteString(loadingStyle.Render("The storyteller is thinking" + strings.Repeat(".", ui.progressTick%4)))
	}
	return b.String()
}

// lastNarration returns the most recent assistant message.
func (ui ConsoleUI) lastNarration() (string, bool) {
	for i := len(ui.messages) - 1; i >= 0; i-- {
		if ui.messages[i].Role == chat.ChatRoleAssistant {
			return ui.messages[i].Content, true
		}
	}
	return "", false
}

func (ui ConsoleUI) sendSelection(selection string) tea.Cmd {
	return func() tea.Msg {
		resp, err := selectCharacter(ui.client, ui.config.APIBaseURL, ui.sessionID, selection)
		return selectionResultMsg{response: resp, err: err}
	}
}

func (ui ConsoleUI) sendTurn(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := processTurn(ui.client, ui.config.APIBaseURL, ui.sessionID, message)
		return turnResultMsg{response: resp, err: err}
	}
}

func (ui ConsoleUI) tickProgress() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
