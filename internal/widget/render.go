package widget

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Render writes the list as plain text, newest first.
func Render(w io.Writer, entries []Entry, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Comments (%d)\n", len(entries))
	if len(entries) == 0 {
		b.WriteString("No comments yet. Start the conversation!\n")
	}

	for _, e := range entries {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s · %s", e.Comment.UserName, FormatAge(e.Comment.CreatedAt, now))
		if e.Temporary {
			b.WriteString(" (sending…)")
		}
		b.WriteString("\n")
		for _, line := range strings.Split(e.Comment.Content, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		switch {
		case e.Comment.ProfileImage != nil:
			fmt.Fprintf(&b, "  [photo] %s\n", *e.Comment.ProfileImage)
		case e.Preview != nil:
			fmt.Fprintf(&b, "  [photo] %s\n", e.Preview.Name)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatAge renders how long ago t was: minutes, hours and days up to a week, then
// the calendar date.
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Local().Format("Jan 2, 2006")
}
