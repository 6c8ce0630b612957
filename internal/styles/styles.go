// Package styles provides the lipgloss styles used by the kitchen CLI.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"workspace-service/internal/domain"
	"workspace-service/internal/dto"
)

var (
	ColorGreen = lipgloss.Color("#9ece6a")
	ColorRed   = lipgloss.Color("#f7768e")
	ColorBlue  = lipgloss.Color("#7aa2f7")
	ColorGray  = lipgloss.Color("#565f89")
	ColorDark  = lipgloss.Color("#1a1b26")
)

var TitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

var OnlineStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

var OfflineStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

var RecipeTitleStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true).
	Underline(true)

var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorGray).
	Padding(0, 1)

// Badge renders a user's initials on their avatar color.
func Badge(u dto.OnlineUserResponse) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(u.ColorHex)).
		Foreground(ColorDark).
		Bold(true).
		Padding(0, 1).
		Render(u.Initials)
}

// Roster renders the online set of a workspace. The caller's own session is
// marked with "(you)".
func Roster(info *domain.WorkspaceInfo, users []domain.OnlineUser, self string, connected bool) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(info.RoomName))
	b.WriteString(" ")
	if connected {
		b.WriteString(OnlineStyle.Render("● " + info.OnlinePhrase))
	} else {
		b.WriteString(OfflineStyle.Render("○ " + info.OfflinePhrase))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d online", len(users))))

	for _, u := range users {
		r := dto.NewOnlineUserResponse(u)
		b.WriteString("\n")
		b.WriteString(Badge(r))
		b.WriteString(" ")
		b.WriteString(r.UserName)
		if u.UserSession == self {
			b.WriteString(MutedStyle.Render(" (you)"))
		}
	}

	return BoxStyle.Render(b.String())
}

// Recipe renders one suggested recipe.
func Recipe(r domain.Recipe) string {
	var b strings.Builder
	b.WriteString(RecipeTitleStyle.Render(r.Title))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s · %s", r.PrepTime, r.Difficulty)))
	if len(r.IngredientsAvailable) > 0 {
		b.WriteString("\n")
		b.WriteString(OnlineStyle.Render("have: " + strings.Join(r.IngredientsAvailable, ", ")))
	}
	if len(r.IngredientsMissing) > 0 {
		b.WriteString("\n")
		b.WriteString(OfflineStyle.Render("need: " + strings.Join(r.IngredientsMissing, ", ")))
	}
	for from, to := range r.Substitutions {
		b.WriteString(fmt.Sprintf("\n  %s → %s", from, to))
	}
	for i, step := range r.Instructions {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, step))
	}
	return BoxStyle.Render(b.String())
}
