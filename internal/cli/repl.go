package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adsero/adsero-assistant/internal/chat"
	"github.com/adsero/adsero-assistant/internal/export"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

// Lookuper fetches catalog records by kind
type Lookuper interface {
	Lookup(ctx context.Context, kind sharepoint.Kind, query string) (sharepoint.Result, error)
}

const helpText = `Commands:
  /new                 start a new chat
  /list                list chats
  /select <n|id>       switch to a chat
  /delete <n|id>       delete a chat
  /search <query>      find chats by title
  /docs [query]        look up documents
  /reports [query]     look up reports
  /suggest             show suggested prompts
  /reply <n>           send a suggested prompt
  /export <fmt> [file] export the current chat (json, yaml, md)
  /help                show this help
  /quit                exit`

// liveTurn tracks how much of the streaming reply has been printed
type liveTurn struct {
	session string
	printed int
}

// REPL is the interactive terminal chat
type REPL struct {
	manager *chat.Manager
	lookup  Lookuper
	out     io.Writer
	st      styles
	log     *logrus.Entry
	now     func() time.Time
	dir     string

	mu   sync.Mutex
	live *liveTurn
}

// NewREPL creates a REPL over streamer, writing to out
func NewREPL(streamer chat.Streamer, lookup Lookuper, out io.Writer, log *logrus.Entry) *REPL {
	r := &REPL{
		lookup: lookup,
		out:    out,
		st:     newStyles(out),
		log:    log,
		now:    time.Now,
		dir:    ".",
	}

	client := chat.NewClient(streamer, chat.WithClientLogger(log))
	r.manager = chat.NewManager(client,
		chat.WithListener(r.onChange),
		chat.WithLogger(log),
	)
	return r
}

// Manager returns the session manager driven by the REPL
func (r *REPL) Manager() *chat.Manager {
	return r.manager
}

// onChange prints the new tail of the streaming reply
func (r *REPL) onChange(sessionID string, messages []chat.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.live == nil || r.live.session != sessionID || len(messages) == 0 {
		return
	}
	last := messages[len(messages)-1]
	if last.Role != chat.RoleAssistant || len(last.Content) <= r.live.printed {
		return
	}
	fmt.Fprint(r.out, last.Content[r.live.printed:])
	r.live.printed = len(last.Content)
}

// Run reads commands from in until /quit or end of input
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, r.st.header.Render("Adsero AI Assistant"))
	fmt.Fprintln(r.out, r.st.hint.Render("Type a message, or /help for commands."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, r.st.user.Render("› "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		quit, err := r.Handle(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintln(r.out, r.st.err.Render("Error: "+err.Error()))
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Handle runs one input line. It reports whether the REPL should exit.
func (r *REPL) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, r.send(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/new":
		r.manager.CreateSession()
		fmt.Fprintln(r.out, r.st.hint.Render("Started a new chat."))
	case "/list":
		renderSessions(r.out, r.st, r.manager.Sessions(), r.manager.ActiveID(), r.now())
	case "/search":
		renderSessions(r.out, r.st, r.manager.Search(arg), r.manager.ActiveID(), r.now())
	case "/select":
		return false, r.selectSession(arg)
	case "/delete":
		return false, r.deleteSession(arg)
	case "/docs":
		return false, r.lookupKind(ctx, sharepoint.KindDocuments, arg)
	case "/reports":
		return false, r.lookupKind(ctx, sharepoint.KindReports, arg)
	case "/suggest":
		title, items := r.suggestions()
		renderSuggestions(r.out, r.st, title, items)
	case "/reply":
		return false, r.reply(ctx, arg)
	case "/export":
		return false, r.export(arg)
	default:
		return false, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return false, nil
}

func (r *REPL) send(ctx context.Context, input string) error {
	// The listener takes r.mu, so the session must exist before locking
	session := r.manager.EnsureActive()
	r.mu.Lock()
	r.live = &liveTurn{session: session}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.live = nil
		r.mu.Unlock()
	}()

	fmt.Fprint(r.out, r.st.assistant.Render("Adsero AI")+": ")
	turn, err := r.manager.Send(ctx, input)
	if err != nil {
		fmt.Fprintln(r.out)
		return err
	}

	err = turn.Wait(ctx)
	fmt.Fprintln(r.out)
	if err != nil {
		r.log.WithError(err).WithField("session_id", turn.SessionID).Debug("Turn failed")
		return fmt.Errorf("response failed: %w", err)
	}
	fmt.Fprintln(r.out, r.st.hint.Render("Suggestions: "+strings.Join(chat.QuickReplies, " · ")))
	return nil
}

// resolve maps a 1-based list index or a session id to an id
func (r *REPL) resolve(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("missing chat number or id")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		sessions := r.manager.Sessions()
		if n < 1 || n > len(sessions) {
			return "", fmt.Errorf("no chat number %d", n)
		}
		return sessions[n-1].ID, nil
	}
	return arg, nil
}

func (r *REPL) selectSession(arg string) error {
	id, err := r.resolve(arg)
	if err != nil {
		return err
	}
	if err := r.manager.SelectSession(id); err != nil {
		return err
	}

	s, _ := r.manager.Active()
	fmt.Fprintln(r.out, r.st.title.Render(s.Title))
	renderTranscript(r.out, r.st, s.Messages)
	return nil
}

func (r *REPL) deleteSession(arg string) error {
	id, err := r.resolve(arg)
	if err != nil {
		return err
	}
	if err := r.manager.DeleteSession(id); err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.st.hint.Render("Deleted chat."))
	return nil
}

func (r *REPL) lookupKind(ctx context.Context, kind sharepoint.Kind, query string) error {
	if r.lookup == nil {
		return errors.New("document lookup is not configured")
	}
	result, err := r.lookup.Lookup(ctx, kind, query)
	if err != nil {
		return err
	}
	renderResult(r.out, r.st, result)
	return nil
}

func (r *REPL) suggestions() (string, []string) {
	if s, ok := r.manager.Active(); ok && len(s.Messages) > 0 {
		return "Follow-ups", chat.QuickReplies
	}
	return "Try asking", chat.StarterPrompts
}

func (r *REPL) reply(ctx context.Context, arg string) error {
	_, items := r.suggestions()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(items) {
		return fmt.Errorf("choose a suggestion between 1 and %d", len(items))
	}
	fmt.Fprintln(r.out, r.st.user.Render("You")+": "+items[n-1])
	return r.send(ctx, items[n-1])
}

func (r *REPL) export(arg string) error {
	format, path, _ := strings.Cut(arg, " ")
	if format == "" {
		format = "md"
	}
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	s, ok := r.manager.Active()
	if !ok {
		return errors.New("no active chat to export")
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join(r.dir, fmt.Sprintf("adsero-%s.%s", s.ID, exporter.Extension()))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := exporter.Export(&s, f); err != nil {
		return fmt.Errorf("export chat: %w", err)
	}
	fmt.Fprintln(r.out, r.st.hint.Render("Exported to "+path))
	return nil
}
