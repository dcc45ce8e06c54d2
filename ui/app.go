package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2A9D8F")).
			Padding(0, 1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E76F51")).
			PaddingLeft(2)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E9C46A")).
			PaddingLeft(2).
			Width(80)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			MarginTop(1).
			PaddingLeft(2)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8ECAE6")).
			MarginTop(1).
			PaddingLeft(2)
)

// Asker 질문을 받아 답변을 돌려주는 질의 서비스 (rag.Searcher가 구현)
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Model TUI 애플리케이션 모델
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textinput.Model
	spinner  spinner.Model
	asked    string
	answer   string
	err      error
	loading  bool
	quitting bool
}

// NewModel 새로운 TUI 모델을 생성합니다
func NewModel(ctx context.Context, asker Asker) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "예: 호텔의 청결 상태는 어떤가요?"
	ti.CharLimit = 500
	ti.Width = 78
	ti.Focus()

	return &Model{
		ctx:     ctx,
		asker:   asker,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle)),
	}
}

// Init bubbletea 초기화 함수
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update bubbletea 업데이트 함수
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case answerMsg:
		m.loading = false
		m.answer = msg.answer
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit 입력된 질문을 질의 서비스로 보냅니다. 빈 입력은 무시합니다.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	switch question {
	case "":
		return m, nil
	case "q", "exit":
		m.quitting = true
		return m, tea.Quit
	}

	m.loading = true
	m.asked = question
	m.answer = ""
	m.err = nil
	m.input.SetValue("")
	return m, tea.Batch(m.ask(question), m.spinner.Tick)
}

// View bubbletea 뷰 함수
func (m *Model) View() string {
	if m.quitting {
		return "\n👋 안녕히 가세요!\n\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("🏨 호텔 리뷰 질의응답"))
	b.WriteString("\n\n")

	b.WriteString("질문 입력 (Enter: 질문, q 또는 exit: 종료):\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.asked != "" {
		b.WriteString(labelStyle.Render("❓ " + m.asked))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(loadingStyle.Render(m.spinner.View() + " 리뷰를 분석하는 중..."))
		b.WriteString("\n")
		return b.String()
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("❌ 오류: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}

	if m.answer != "" {
		b.WriteString(labelStyle.Render("💬 답변:"))
		b.WriteString("\n")
		for _, line := range strings.Split(m.answer, "\n") {
			b.WriteString(answerStyle.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// answerMsg 질의 결과 메시지
type answerMsg struct {
	answer string
	err    error
}

func (m *Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.asker.Ask(m.ctx, question)
		return answerMsg{answer: answer, err: err}
	}
}

// Run TUI 애플리케이션을 실행합니다
func Run(ctx context.Context, asker Asker) error {
	p := tea.NewProgram(NewModel(ctx, asker), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
