package progress

// DefaultAvatarID is always unlocked and is the avatar of a new player.
const DefaultAvatarID = "student"

// Avatar is a cosmetic identity unlocked at a level threshold.
type Avatar struct {
	ID            string
	Name          string
	Icon          string
	Color         string
	RequiredLevel int
}

var avatarCatalog = []Avatar{
	{ID: "student", Name: "Student", Icon: "user", Color: "text-space-light", RequiredLevel: 1},
	{ID: "scholar", Name: "Scholar", Icon: "box", Color: "text-blue-400", RequiredLevel: 3},
	{ID: "graduate", Name: "Graduate", Icon: "star", Color: "text-cyan-400", RequiredLevel: 5},
	{ID: "professor", Name: "Professor", Icon: "shield", Color: "text-green-400", RequiredLevel: 10},
	{ID: "genius", Name: "Genius", Icon: "zap", Color: "text-indigo-400", RequiredLevel: 20},
}

// Avatars returns a copy of the static avatar catalog, ordered by level.
func Avatars() []Avatar {
	return append([]Avatar(nil), avatarCatalog...)
}

// LookupAvatar returns the catalog entry for id.
func LookupAvatar(id string) (Avatar, bool) {
	for _, a := range avatarCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

// unlockAvatars adds every avatar of catalog whose threshold is met by the
// state's level. Already unlocked avatars are left alone, so repeated calls
// never duplicate entries. It returns the ids added by this call.
func unlockAvatars(s PlayerState, catalog []Avatar) (PlayerState, []string) {
	var added []string
	for _, a := range catalog {
		if a.RequiredLevel > s.Level || s.IsUnlocked(a.ID) {
			continue
		}
		s.UnlockedAvatars = append(s.UnlockedAvatars, a.ID)
		added = append(added, a.ID)
	}
	return s, added
}
