package player

// Directory is the read-only view of the chat platform the core needs:
// channel membership, ownership and role membership.
type Directory interface {
	ProcessOwnerID() string
	GuildOwnerID(guildID string) (string, error)
	MemberHasRole(guildID, userID, roleID string) (bool, error)
	VoiceChannelMembers(guildID, channelID string) ([]Member, error)
	UserVoiceChannel(guildID, userID string) (string, bool)
}

// Gate decides whether a user may run privileged playback commands without
// a vote: the process owner, the guild owner, and holders of the guild's
// configured DJ role qualify.
type Gate struct {
	dir     Directory
	djRoles map[string]string // guildID -> roleID
}

// NewGate builds a gate over the directory and the per-guild DJ role map.
func NewGate(dir Directory, djRoles map[string]string) *Gate {
	return &Gate{dir: dir, djRoles: djRoles}
}

// Privileged reports whether the user bypasses vote gating in this guild.
func (g *Gate) Privileged(guildID, userID string) bool {
	if userID == "" {
		return false
	}
	if userID == g.dir.ProcessOwnerID() {
		return true
	}
	if owner, err := g.dir.GuildOwnerID(guildID); err == nil && owner == userID {
		return true
	}
	if roleID, ok := g.djRoles[guildID]; ok && roleID != "" {
		if has, err := g.dir.MemberHasRole(guildID, userID, roleID); err == nil && has {
			return true
		}
	}
	return false
}
