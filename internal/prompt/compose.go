// Package prompt turns stored conversation state into the final instruction
// text sent to the completion gateway. The template body is opaque operator
// configuration with three named slots ({{history}}, {{message}} and
// {{files}}) filled by pure rendering functions. A template that omits a
// slot gets the corresponding section appended instead, so older free-text
// templates keep working.
package prompt

import (
	"fmt"
	"strings"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

// Slot placeholders recognized inside a template body.
const (
	SlotHistory = "{{history}}"
	SlotMessage = "{{message}}"
	SlotFiles   = "{{files}}"
)

// Slots carries the rendered text for each template slot. FileContext may
// be empty, in which case no file section appears anywhere in the output.
type Slots struct {
	History     string
	Latest      string
	FileContext string
}

// Sanitize prepares untrusted text for embedding in a prompt: line endings
// are normalized to \n, null bytes are stripped, and triple-backtick fences
// are neutralized so user input cannot break out of downstream code-fence
// rendering.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "```", "'''")
	return s
}

// RenderHistory renders turns as "<role>: <text>" lines in the order given,
// appending " [Files: a, b]" only when a turn carries attachments.
func RenderHistory(turns []domain.ChatTurn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		line := t.Role + ": " + Sanitize(t.Message)
		if len(t.Attachments) > 0 {
			names := make([]string, 0, len(t.Attachments))
			for _, a := range t.Attachments {
				names = append(names, a.OriginalName)
			}
			line += " [Files: " + strings.Join(names, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderFileContext builds the file-inventory block: files uploaded with the
// current turn (name, kind, size) followed by files from earlier turns
// (name, kind only). A file from history whose stored name matches a current
// upload is suppressed so it is never listed twice. When there are no files
// at all the result is the empty string, with no dangling section header.
func RenderFileContext(current, history []domain.Attachment) string {
	var b strings.Builder

	if len(current) > 0 {
		b.WriteString("The user has uploaded the following files with their current message:\n")
		for i, f := range current {
			fmt.Fprintf(&b, "- File %d: %s (%s, %.2f KB)\n", i+1, f.OriginalName, f.Kind, float64(f.SizeBytes)/1024)
		}
	}

	currentNames := make(map[string]struct{}, len(current))
	for _, f := range current {
		currentNames[f.StoredName] = struct{}{}
	}

	var previous []domain.Attachment
	for _, f := range history {
		if _, dup := currentNames[f.StoredName]; dup {
			continue
		}
		previous = append(previous, f)
	}

	if len(previous) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Previously uploaded files in this conversation that you can reference:\n")
		for _, f := range previous {
			fmt.Fprintf(&b, "- %s (%s, uploaded earlier)\n", f.OriginalName, f.Kind)
		}
		b.WriteString("The user may ask questions about any of these files; reference them when relevant.\n")
	}

	if b.Len() == 0 {
		return ""
	}
	b.WriteString("Acknowledge any files mentioned and offer to help review them if relevant to career guidance.")
	return b.String()
}

// Compose fills the template body's slots. Only placeholders present in the
// template body itself are substituted; a slot token inside rendered content
// (a user message quoting "{{message}}", say) is emitted literally and never
// re-expanded, so identical input always yields identical output. For each
// placeholder missing from the body the section is appended with a short
// label, preserving the order history, message, files. The file section is
// skipped entirely when FileContext is empty.
func Compose(body string, s Slots) string {
	slotText := [...]struct {
		slot string
		text string
	}{
		{SlotHistory, s.History},
		{SlotMessage, s.Latest},
		{SlotFiles, s.FileContext},
	}

	var b strings.Builder
	replaced := map[string]bool{}
	rest := body
	for {
		// Earliest placeholder occurrence wins; scanning resumes after it,
		// never inside substituted text.
		at, hit := -1, -1
		for i, st := range slotText {
			if j := strings.Index(rest, st.slot); j >= 0 && (at < 0 || j < at) {
				at, hit = j, i
			}
		}
		if at < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:at])
		b.WriteString(slotText[hit].text)
		replaced[slotText[hit].slot] = true
		rest = rest[at+len(slotText[hit].slot):]
	}
	out := b.String()

	var tail []string
	if !replaced[SlotHistory] && s.History != "" {
		tail = append(tail, "This is the conversation so far:\n"+s.History)
	}
	if !replaced[SlotMessage] {
		tail = append(tail, "This is the latest message from the user:\n"+s.Latest)
	}
	if !replaced[SlotFiles] && s.FileContext != "" {
		tail = append(tail, s.FileContext)
	}

	if len(tail) > 0 {
		out = strings.TrimRight(out, "\n") + "\n\n" + strings.Join(tail, "\n\n")
	}
	return out
}
