package avatar

import "strings"

const (
	DefaultRoomName      = "Kitchen Workspace"
	DefaultOnlinePhrase  = "Connected to kitchen"
	DefaultOfflinePhrase = "Disconnected"
)

var roomNames = [...]string{
	"Cozy Kitchen Corner",
	"Chef's Creative Space",
	"Flavor Laboratory",
	"Cooking Command Center",
	"Recipe Workshop",
	"Culinary Studio",
	"Kitchen Playground",
	"Taste Testing HQ",
	"Food Innovation Hub",
	"Spice & Everything Nice",
}

var onlinePhrases = [...]string{
	"Cooking together",
	"In the kitchen",
	"Ready to cook",
	"Prepping ingredients",
	"Stirring up ideas",
	"Heat is on",
}

var offlinePhrases = [...]string{
	"Kitchen closed",
	"Away from stove",
	"Taking a break",
}

// RoomNameFor returns the display name of a workspace.
func RoomNameFor(workspaceID string) string {
	if workspaceID == "" {
		return DefaultRoomName
	}
	return roomNames[Index(workspaceID, len(roomNames))]
}

// ConnectionPhraseFor returns the status line shown next to the
// connection indicator.
func ConnectionPhraseFor(workspaceID string, online bool) string {
	if workspaceID == "" {
		if online {
			return DefaultOnlinePhrase
		}
		return DefaultOfflinePhrase
	}
	if online {
		return onlinePhrases[Index(workspaceID, len(onlinePhrases))]
	}
	return offlinePhrases[Index(workspaceID, len(offlinePhrases))]
}

// DisplayName falls back to a session-derived placeholder when the user
// never picked a name.
func DisplayName(userName, session string) string {
	if strings.TrimSpace(userName) != "" {
		return userName
	}
	prefix := session
	if r := []rune(session); len(r) > 4 {
		prefix = string(r[:4])
	}
	return "User-" + prefix
}

// Initials returns the first two letters of name, upper-cased.
func Initials(name string) string {
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
