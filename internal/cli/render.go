package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/adsero/adsero-assistant/internal/chat"
	"github.com/adsero/adsero-assistant/internal/sharepoint"
)

func renderDocuments(w io.Writer, st styles, docs []sharepoint.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, st.hint.Render("No documents found."))
		return
	}
	fmt.Fprintf(w, "%s %s\n", st.header.Render("Documents"), st.count.Render(fmt.Sprintf("(%d)", len(docs))))
	for _, d := range docs {
		fmt.Fprintf(w, "  %s  %s\n", st.title.Render(d.Name), st.id.Render(d.Path))
		fmt.Fprintf(w, "    %s · modified %s\n",
			humanize.Bytes(uint64(d.Size)),
			st.date.Render(humanize.Time(d.Modified)))
	}
}

func renderReports(w io.Writer, st styles, reports []sharepoint.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, st.hint.Render("No reports found."))
		return
	}
	fmt.Fprintf(w, "%s %s\n", st.header.Render("Reports"), st.count.Render(fmt.Sprintf("(%d)", len(reports))))
	for _, r := range reports {
		fmt.Fprintf(w, "  %s  %s\n", st.title.Render(r.Name), st.id.Render(r.Type))
		fmt.Fprintf(w, "    created %s\n", st.date.Render(humanize.Time(r.Created)))
	}
}

func renderResult(w io.Writer, st styles, result sharepoint.Result) {
	if result.Kind == sharepoint.KindReports {
		renderReports(w, st, result.Reports)
		return
	}
	renderDocuments(w, st, result.Documents)
}

func renderSessions(w io.Writer, st styles, sessions []chat.Session, activeID string, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, st.hint.Render("No chats yet."))
		return
	}
	for i, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = st.active.Render("●")
		}
		fmt.Fprintf(w, "%s %2d. %s %s\n", marker, i+1, st.title.Render(s.Title), st.id.Render(s.ID))
		fmt.Fprintf(w, "      %s · %s\n",
			st.count.Render(fmt.Sprintf("%d messages", len(s.Messages))),
			st.date.Render(humanize.RelTime(s.CreatedAt, now, "ago", "from now")))
	}
}

func renderTranscript(w io.Writer, st styles, messages []chat.Message) {
	for _, m := range messages {
		label := st.user.Render("You")
		if m.Role == chat.RoleAssistant {
			label = st.assistant.Render("Adsero AI")
		}
		fmt.Fprintf(w, "%s: %s", label, m.Content)
		if m.Status == chat.StatusFailed {
			fmt.Fprint(w, st.err.Render(" (incomplete)"))
		}
		fmt.Fprintln(w)
	}
}

func renderSuggestions(w io.Writer, st styles, title string, items []string) {
	fmt.Fprintln(w, st.header.Render(title))
	for i, s := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
	fmt.Fprintln(w, st.hint.Render("Send one with /reply <n>"))
}
