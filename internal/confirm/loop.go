package confirm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bashhack/commitbuddy/internal/logger"
	"github.com/bashhack/commitbuddy/internal/ui"
)

// State is a confirmation loop state.
type State int

const (
	StatePresent State = iota
	StateEdit
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateEdit:
		return "edit"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is how the loop ended.
type Outcome int

const (
	// Cancelled is the zero value so an unfinished Result never commits.
	Cancelled Outcome = iota
	Committed
)

func (o Outcome) String() string {
	if o == Committed {
		return "committed"
	}
	return "cancelled"
}

// Result is the terminal state of a confirmation.
type Result struct {
	Outcome Outcome

	// Message is the text to commit, including operator edits.
	Message string

	// Transitions lists the states entered, in order, ending with StateDone.
	Transitions []State
}

// Confirmer resolves a proposed message to commit or cancel.
type Confirmer interface {
	Confirm(ctx context.Context, message string) Result
}

// Loop is the interactive Confirmer: present, optionally edit, and decide.
type Loop struct {
	Reader LineReader
	Writer io.Writer
	Styles ui.Styles
	Logger logger.Logger
}

// NewLoop creates a Loop reading from stdin and writing to stdout.
func NewLoop(log logger.Logger, styles ui.Styles) *Loop {
	return &Loop{
		Reader: NewLineReader(os.Stdin),
		Writer: os.Stdout,
		Styles: styles,
		Logger: log,
	}
}

// Confirm implements Confirmer.
func (l *Loop) Confirm(ctx context.Context, message string) Result {
	return l.Run(ctx, message)
}

// Run drives the state machine until the operator commits or cancels. Invalid
// answers re-prompt without limit. End of input and ctx cancellation cancel.
func (l *Loop) Run(ctx context.Context, message string) Result {
	res := Result{Message: message}
	state := StatePresent
	res.Transitions = append(res.Transitions, state)

	for state != StateDone {
		var next State
		switch state {
		case StatePresent:
			next, res.Outcome = l.present(ctx, res.Message)
		case StateEdit:
			var ok bool
			res.Message, ok = l.edit(ctx, res.Message)
			next = StatePresent
			if !ok {
				next = StateDone
				res.Outcome = Cancelled
			}
		}
		l.Logger.Info("Confirmation: %s -> %s", state, next)
		state = next
		res.Transitions = append(res.Transitions, state)
	}

	l.Logger.Info("Confirmation finished: %s", res.Outcome)
	return res
}

func (l *Loop) present(ctx context.Context, message string) (State, Outcome) {
	l.printf("\n%s\n\n", l.Styles.Title("📝 Proposed commit message:"))
	for _, line := range strings.Split(message, "\n") {
		l.printf("  %s\n", l.Styles.Message(line))
	}
	l.printf("\nUse this message? (%s = yes, %s = cancel, %s = edit): ",
		l.Styles.Success("y"), l.Styles.Error("n"), l.Styles.Warning("e"))

	for {
		answer, err := l.Reader.ReadLine(ctx)
		if err != nil {
			l.printf("\n")
			l.Logger.Info("Input ended while presenting: %v", err)
			return StateDone, Cancelled
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "y", "yes":
			return StateDone, Committed
		case "n", "no":
			return StateDone, Cancelled
		case "e", "edit":
			return StateEdit, Cancelled
		}

		l.printf("Please enter %s, %s or %s: ",
			l.Styles.Success("y"), l.Styles.Error("n"), l.Styles.Warning("e"))
	}
}

// edit reads replacement lines until an empty line. It returns false when
// input ends or ctx is cancelled mid-edit.
func (l *Loop) edit(ctx context.Context, message string) (string, bool) {
	l.printf("\n%s\n", l.Styles.Warning("✏️  Editing commit message"))
	l.printf("%s\n\n", l.Styles.Muted("(finish with an empty line, Ctrl+C to cancel)"))
	l.printf("%s\n  %s\n\n", l.Styles.Title("Current message:"), strings.ReplaceAll(message, "\n", "\n  "))
	l.printf("%s\n", l.Styles.Title("New message:"))

	var lines []string
	for {
		l.printf("  ")
		line, err := l.Reader.ReadLine(ctx)
		if err != nil {
			l.printf("\n%s\n", l.Styles.Error("❌ Edit cancelled"))
			return message, false
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}

	edited := strings.TrimSpace(strings.Join(lines, "\n"))
	if edited == "" {
		l.printf("%s\n", l.Styles.Warning("⚠️  Empty message, keeping the original"))
		return message, true
	}
	return edited, true
}

func (l *Loop) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.Writer, format, args...)
}

// AutoConfirmer commits without asking. It backs the --yes flag.
type AutoConfirmer struct {
	Writer io.Writer
	Styles ui.Styles
}

// Confirm implements Confirmer.
func (a *AutoConfirmer) Confirm(ctx context.Context, message string) Result {
	if ctx.Err() != nil {
		return Result{Outcome: Cancelled, Message: message, Transitions: []State{StatePresent, StateDone}}
	}

	if a.Writer != nil {
		_, _ = fmt.Fprintf(a.Writer, "\n%s\n", a.Styles.Title("📝 Commit message:"))
		for _, line := range strings.Split(message, "\n") {
			_, _ = fmt.Fprintf(a.Writer, "  %s\n", a.Styles.Message(line))
		}
		_, _ = fmt.Fprintln(a.Writer)
	}
	return Result{Outcome: Committed, Message: message, Transitions: []State{StatePresent, StateDone}}
}
