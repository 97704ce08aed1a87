// Package friends shows friends, pending requests, suggestions and study
// groups. Accepting, declining and joining only change what this screen
// shows; the social fixtures are read-only.
package friends

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/router"
	"github.com/blink-new/studytrack/internal/screen"
	"github.com/blink-new/studytrack/internal/ui/components"
	"github.com/blink-new/studytrack/internal/ui/layout"
	"github.com/blink-new/studytrack/internal/ui/theme"
)

type tab int

const (
	tabFriends tab = iota
	tabRequests
	tabSuggestions
	tabGroups
)

// FriendsScreen is the social hub.
type FriendsScreen struct {
	friends     []content.Friend
	requests    []content.FriendRequest
	suggestions []content.Suggestion
	groups      []content.StudyGroup
	sent        map[string]bool

	tab       tab
	selected  int
	search    components.TextInput
	searching bool
	infoMsg   string
}

var _ screen.Screen = (*FriendsScreen)(nil)
var _ screen.KeyHintProvider = (*FriendsScreen)(nil)
var _ screen.Capturer = (*FriendsScreen)(nil)

// New creates the friends screen.
func New(deps *screen.Deps) *FriendsScreen {
	search := components.NewTextInput("", "Search name, university or major", 60)
	search.Blur()
	p := deps.Content
	return &FriendsScreen{
		friends:     p.Friends(),
		requests:    p.FriendRequests(),
		suggestions: p.Suggestions(),
		groups:      p.StudyGroups(),
		sent:        make(map[string]bool),
		search:      search,
	}
}

func (s *FriendsScreen) Init() tea.Cmd { return nil }

func (s *FriendsScreen) Title() string { return "Friends" }

// Capturing reports whether the search box has focus.
func (s *FriendsScreen) Capturing() bool { return s.searching }

func (s *FriendsScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}, {Key: "Esc", Description: "Clear"}}
	}
	hints := []layout.KeyHint{{Key: "Tab", Description: "Switch tab"}}
	switch s.tab {
	case tabFriends:
		hints = append(hints, layout.KeyHint{Key: "/", Description: "Search"})
	case tabRequests:
		hints = append(hints, layout.KeyHint{Key: "A", Description: "Accept"}, layout.KeyHint{Key: "X", Description: "Decline"})
	case tabSuggestions:
		hints = append(hints, layout.KeyHint{Key: "A", Description: "Add friend"})
	case tabGroups:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Join/leave"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *FriendsScreen) visibleFriends() []content.Friend {
	return content.FilterFriends(s.friends, s.search.Value())
}

func (s *FriendsScreen) rowCount() int {
	switch s.tab {
	case tabFriends:
		return len(s.visibleFriends())
	case tabRequests:
		return len(s.requests)
	case tabSuggestions:
		return len(s.suggestions)
	default:
		return len(s.groups)
	}
}

func (s *FriendsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if s.searching {
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			return s, cmd
		}
		return s, nil
	}
	key := kmsg.String()

	if s.searching {
		switch key {
		case "enter":
			s.search.Blur()
			s.searching = false
		case "esc":
			s.search.Reset()
			s.search.Blur()
			s.searching = false
		default:
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.selected = 0
			return s, cmd
		}
		return s, nil
	}

	switch key {
	case "esc":
		return s, router.Back
	case "tab", "right":
		s.tab = tab(components.NextIndex(int(s.tab), 1, 4))
		s.selected = 0
		s.infoMsg = ""
	case "shift+tab", "left":
		s.tab = tab(components.NextIndex(int(s.tab), -1, 4))
		s.selected = 0
		s.infoMsg = ""
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < s.rowCount()-1 {
			s.selected++
		}
	case "/":
		if s.tab == tabFriends {
			s.searching = true
			return s, s.search.Focus()
		}
	default:
		s.act(key)
	}
	return s, nil
}

// act applies a tab-specific action to the selected row.
func (s *FriendsScreen) act(key string) {
	if s.selected >= s.rowCount() {
		return
	}
	switch {
	case s.tab == tabRequests && key == "a":
		r := s.requests[s.selected]
		s.friends = append(s.friends, content.Friend{
			ID: r.ID, Name: r.Name, University: r.University, Major: r.Major,
			Level: 1, Status: content.PresenceOffline, LastActive: "Just added",
		})
		s.removeRequest()
		s.infoMsg = fmt.Sprintf("You and %s are now friends.", r.Name)
	case s.tab == tabRequests && key == "x":
		name := s.requests[s.selected].Name
		s.removeRequest()
		s.infoMsg = fmt.Sprintf("Declined %s.", name)
	case s.tab == tabSuggestions && key == "a":
		sg := s.suggestions[s.selected]
		s.sent[sg.ID] = true
		s.infoMsg = fmt.Sprintf("Friend request sent to %s.", sg.Name)
	case s.tab == tabGroups && (key == "space" || key == "enter"):
		s.toggleGroup()
	}
}

func (s *FriendsScreen) removeRequest() {
	s.requests = append(s.requests[:s.selected:s.selected], s.requests[s.selected+1:]...)
	if s.selected >= len(s.requests) {
		s.selected = max(0, len(s.requests)-1)
	}
}

func (s *FriendsScreen) toggleGroup() {
	g := &s.groups[s.selected]
	g.Joined = !g.Joined
	if g.Joined {
		g.Members++
		s.infoMsg = "Joined " + g.Name + "."
	} else {
		g.Members--
		s.infoMsg = "Left " + g.Name + "."
	}
}

func (s *FriendsScreen) View(width, height int) string {
	var b strings.Builder
	labels := []string{
		fmt.Sprintf("Friends (%d)", len(s.friends)),
		fmt.Sprintf("Requests (%d)", len(s.requests)),
		"Suggestions",
		"Groups",
	}
	b.WriteString(components.Tabs(labels, int(s.tab)))
	b.WriteString("\n\n")

	listHeight := max(3, height-10)
	switch s.tab {
	case tabFriends:
		s.renderFriends(&b, listHeight)
	case tabRequests:
		s.renderRequests(&b, listHeight)
	case tabSuggestions:
		s.renderSuggestions(&b, listHeight)
	case tabGroups:
		s.renderGroups(&b, listHeight)
	}

	if s.infoMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render(s.infoMsg))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, strings.TrimRight(b.String(), "\n"))
}

func (s *FriendsScreen) line(b *strings.Builder, i int, text string) {
	style := lipgloss.NewStyle().Foreground(theme.Text)
	prefix := "  "
	if i == s.selected {
		prefix = "> "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	b.WriteString(style.Render(prefix + text))
	b.WriteString("\n")
}

func presenceDot(p content.Presence) string {
	switch p {
	case content.PresenceOnline:
		return theme.Correct.Render("●")
	case content.PresenceStudying:
		return theme.Highlight.Render("●")
	default:
		return theme.Muted.Render("○")
	}
}

func (s *FriendsScreen) renderFriends(b *strings.Builder, height int) {
	b.WriteString(theme.Muted.Render(fmt.Sprintf("%d online · %d studying · %d offline",
		content.CountPresence(s.friends, content.PresenceOnline),
		content.CountPresence(s.friends, content.PresenceStudying),
		content.CountPresence(s.friends, content.PresenceOffline))))
	b.WriteString("\n")
	if s.searching || s.search.Value() != "" {
		b.WriteString(s.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := s.visibleFriends()
	if len(rows) == 0 {
		b.WriteString(theme.Hint.Render("No friends match."))
		b.WriteString("\n")
		return
	}
	start, end := components.Window(s.selected, len(rows), height)
	for i := start; i < end; i++ {
		f := rows[i]
		b.WriteString(presenceDot(f.Status) + " ")
		s.line(b, i, fmt.Sprintf("%-18s %-12s Lv %-3d %3dd streak %6.0fh  %s",
			components.Truncate(f.Name, 18), components.Truncate(f.University, 12),
			f.Level, f.Streak, f.TotalHours, f.LastActive))
		if i == s.selected && f.Activity != "" {
			b.WriteString(theme.Muted.Render("      " + f.Activity))
			b.WriteString("\n")
		}
	}
}

func (s *FriendsScreen) renderRequests(b *strings.Builder, height int) {
	if len(s.requests) == 0 {
		b.WriteString(theme.Hint.Render("No pending requests."))
		b.WriteString("\n")
		return
	}
	start, end := components.Window(s.selected, len(s.requests), height)
	for i := start; i < end; i++ {
		r := s.requests[i]
		s.line(b, i, fmt.Sprintf("%-18s %-12s %-20s %d mutual",
			components.Truncate(r.Name, 18), components.Truncate(r.University, 12),
			components.Truncate(r.Major, 20), r.MutualFriends))
	}
}

func (s *FriendsScreen) renderSuggestions(b *strings.Builder, height int) {
	start, end := components.Window(s.selected, len(s.suggestions), height)
	for i := start; i < end; i++ {
		sg := s.suggestions[i]
		status := sg.Reason
		if s.sent[sg.ID] {
			status = "request sent"
		}
		s.line(b, i, fmt.Sprintf("%-18s %-12s %-20s %s",
			components.Truncate(sg.Name, 18), components.Truncate(sg.University, 12),
			components.Truncate(sg.Major, 20), status))
	}
}

func (s *FriendsScreen) renderGroups(b *strings.Builder, height int) {
	start, end := components.Window(s.selected, len(s.groups), height)
	for i := start; i < end; i++ {
		g := s.groups[i]
		joined := ""
		if g.Joined {
			joined = "✓ joined"
		}
		s.line(b, i, fmt.Sprintf("%-24s %-16s %3d members  next: %-16s %s",
			components.Truncate(g.Name, 24), components.Truncate(g.Subject, 16),
			g.Members, g.NextSession, joined))
	}
}
