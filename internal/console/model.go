// Package console is the interactive terminal front end: a login gate in
// front of search, article browsing, topic clustering, feedback and export.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeafMist/news-research-radar/internal/feedback"
	"github.com/DeafMist/news-research-radar/internal/models"
	"github.com/DeafMist/news-research-radar/internal/research"
	"github.com/DeafMist/news-research-radar/internal/topics"
)

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// Researcher is the console-facing subset of research.Service.
type Researcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]models.Article, error)
	EnrichAll(ctx context.Context, query string, articles []models.Article) []models.NewsDocument
	Topics(ctx context.Context, docs []string, numTopics, topK int) ([]topics.Topic, error)
}

// FeedbackRecorder stores feedback.
type FeedbackRecorder interface {
	Record(user, text string) (feedback.Entry, error)
}

// Settings tune the console.
type Settings struct {
	PageSize      int
	NumTopics     int
	TopK          int
	TopicsTimeout time.Duration
	ExportDir     string
	// Samples are offered before any search, like a bundled demo feed.
	Samples []models.Article
}

type screen int

const (
	screenLogin screen = iota
	screenSearch
	screenTopics
	screenFeedback
)

type (
	articlesMsg struct {
		query string
		docs  []models.NewsDocument
		err   error
	}
	topicsMsg struct {
		topics []topics.Topic
		err    error
	}
	exportMsg struct {
		path string
		err  error
	}
)

// Model is the Bubble Tea model.
type Model struct {
	auth     Authenticator
	research Researcher
	feedback FeedbackRecorder
	settings Settings
	now      func() time.Time

	screen   screen
	user     string
	username textinput.Model
	password textinput.Model
	query    textinput.Model
	note     textarea.Model
	viewport viewport.Model

	docs    []models.NewsDocument
	topics  []topics.Topic
	cursor  int
	current string
	status  string
	busy    bool
	ready   bool
}

// New builds the console model, starting on the login screen.
func New(auth Authenticator, researcher Researcher, fb FeedbackRecorder, settings Settings) Model {
	if settings.PageSize <= 0 {
		settings.PageSize = 10
	}
	if settings.NumTopics <= 0 {
		settings.NumTopics = topics.DefaultNumTopics
	}
	if settings.TopK <= 0 {
		settings.TopK = topics.DefaultTopK
	}
	if settings.TopicsTimeout <= 0 {
		settings.TopicsTimeout = 30 * time.Second
	}
	if settings.ExportDir == "" {
		settings.ExportDir = "exports"
	}

	user := textinput.New()
	user.Prompt = "Username: "
	user.Focus()

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	query := textinput.New()
	query.Prompt = "> "
	query.Placeholder = "Enter search query and press Enter"

	note := textarea.New()
	note.Placeholder = "Share your feedback about the tool"
	note.ShowLineNumbers = false

	return Model{
		auth:     auth,
		research: researcher,
		feedback: fb,
		settings: settings,
		now:      time.Now,
		screen:   screenLogin,
		username: user,
		password: pass,
		query:    query,
		note:     note,
		viewport: viewport.New(80, 20),
		status:   "Please log in.",
	}
}

// LoggedIn reports whether the login gate has been passed.
func (m Model) LoggedIn() bool { return m.user != "" }

// Status returns the current status line.
func (m Model) Status() string { return m.status }

// Documents returns the articles currently shown.
func (m Model) Documents() []models.NewsDocument { return m.docs }

// Topics returns the last clustering result.
func (m Model) Topics() []topics.Topic { return m.topics }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update routes messages to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-fh-6)
		m.note.SetWidth(max(20, msg.Width-4))
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
	case articlesMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.docs, m.cursor, m.current, m.topics = msg.docs, 0, msg.query, nil
		if len(m.docs) == 0 {
			m.status = "No articles found."
		} else {
			m.status = fmt.Sprintf("Found %d articles.", len(m.docs))
		}
		m.refresh()
		return m, nil
	case topicsMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Topics: " + describeTopicsError(msg.err)
			return m, nil
		}
		m.topics = msg.topics
		m.screen = screenTopics
		m.status = fmt.Sprintf("%d topics. Esc to go back.", len(m.topics))
		m.refresh()
		return m, nil
	case exportMsg:
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported to " + msg.path
		}
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenFeedback:
		return m.updateFeedback(msg)
	case screenTopics:
		return m.updateTopics(msg)
	default:
		return m.updateSearch(msg)
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			return m, m.toggleLoginFocus()
		case tea.KeyEnter:
			if m.username.Focused() {
				return m, m.toggleLoginFocus()
			}
			return m.login()
		}
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleLoginFocus() tea.Cmd {
	if m.username.Focused() {
		m.username.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.username.Focus()
}

func (m Model) login() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.username.Value())
	if m.auth == nil || !m.auth.Authenticate(username, m.password.Value()) {
		m.status = "Invalid username or password."
		m.password.Reset()
		return m, nil
	}

	m.user = username
	m.password.Reset()
	m.password.Blur()
	m.screen = screenSearch
	m.status = "Login successful!"

	var cmds []tea.Cmd
	cmds = append(cmds, m.query.Focus())
	if len(m.settings.Samples) > 0 {
		m.busy = true
		m.status = "Login successful! Loading sample articles..."
		cmds = append(cmds, m.enrichCmd("samples", m.settings.Samples))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.query.Value())
			if q == "" {
				m.status = "Please enter a query."
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Fetching news for %q...", q)
			return m, m.searchCmd(q)
		case tea.KeyDown:
			if len(m.docs) > 0 {
				m.cursor = (m.cursor + 1) % len(m.docs)
				m.refresh()
			}
			return m, nil
		case tea.KeyUp:
			if len(m.docs) > 0 {
				m.cursor = (m.cursor - 1 + len(m.docs)) % len(m.docs)
				m.refresh()
			}
			return m, nil
		case tea.KeyCtrlT:
			if m.busy {
				return m, nil
			}
			if len(m.docs) == 0 {
				m.status = "Nothing to cluster yet."
				return m, nil
			}
			m.busy = true
			m.status = "Clustering topics..."
			return m, m.topicsCmd(research.DocumentTexts(m.docs))
		case tea.KeyCtrlF:
			m.screen = screenFeedback
			m.query.Blur()
			m.status = "Ctrl+S to submit, Esc to cancel."
			return m, m.note.Focus()
		case tea.KeyCtrlE:
			if len(m.docs) == 0 {
				m.status = "Nothing to export yet."
				return m, nil
			}
			return m, m.exportCmd()
		case tea.KeyPgDown, tea.KeyPgUp:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) updateTopics(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.screen = screenSearch
			m.status = fmt.Sprintf("Results for %q", m.current)
			m.refresh()
			return m, nil
		case tea.KeyCtrlE:
			return m, m.exportCmd()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateFeedback(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.note.Blur()
			m.screen = screenSearch
			m.status = "Feedback discarded."
			return m, m.query.Focus()
		case tea.KeyCtrlS:
			if m.feedback == nil {
				m.status = "Feedback is not configured."
				return m, nil
			}
			if _, err := m.feedback.Record(m.user, m.note.Value()); err != nil {
				if errors.Is(err, feedback.ErrEmpty) {
					m.status = "Please write something first."
				} else {
					m.status = "Feedback failed: " + err.Error()
				}
				return m, nil
			}
			m.note.Reset()
			m.note.Blur()
			m.screen = screenSearch
			m.status = "Thank you for your feedback!"
			return m, m.query.Focus()
		}
	}
	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) searchCmd(query string) tea.Cmd {
	researcher, pageSize := m.research, m.settings.PageSize
	return func() tea.Msg {
		ctx := context.Background()
		articles, err := researcher.Search(ctx, query, pageSize)
		if err != nil {
			return articlesMsg{query: query, err: err}
		}
		return articlesMsg{query: query, docs: researcher.EnrichAll(ctx, query, articles)}
	}
}

func (m Model) enrichCmd(query string, articles []models.Article) tea.Cmd {
	researcher := m.research
	return func() tea.Msg {
		return articlesMsg{query: query, docs: researcher.EnrichAll(context.Background(), query, articles)}
	}
}

func (m Model) topicsCmd(docs []string) tea.Cmd {
	researcher, s := m.research, m.settings
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), s.TopicsTimeout)
		defer cancel()
		ts, err := researcher.Topics(ctx, docs, s.NumTopics, s.TopK)
		return topicsMsg{topics: ts, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	report := research.Report{
		Query:       m.current,
		GeneratedAt: m.now(),
		Articles:    m.docs,
		Topics:      m.topics,
	}
	dir := m.settings.ExportDir
	return func() tea.Msg {
		path, err := research.ExportFile(dir, report)
		return exportMsg{path: path, err: err}
	}
}

func describeTopicsError(err error) string {
	switch {
	case errors.Is(err, topics.ErrEmptyCorpus):
		return "no usable text in the current articles."
	case errors.Is(err, topics.ErrEmptyVocabulary):
		return "the articles share no usable terms."
	case errors.Is(err, context.DeadlineExceeded):
		return "clustering timed out."
	default:
		return err.Error()
	}
}
