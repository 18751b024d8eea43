package moderation

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// UserRef names a platform user that may or may not have been resolved to
// full user data. Unresolved refs happen when a lookup fails or when a
// moderator acts on a raw id (banning someone who already left).
type UserRef struct {
	ID   snowflake.ID
	User *discord.User
}

func ResolvedUser(user discord.User) UserRef {
	return UserRef{ID: user.ID, User: &user}
}

func UnresolvedUser(id snowflake.ID) UserRef {
	return UserRef{ID: id}
}

func (r UserRef) Resolved() bool {
	return r.User != nil
}

// Mention renders a platform mention, which works from the id alone.
func (r UserRef) Mention() string {
	return fmt.Sprintf("<@%d>", r.ID)
}

// Display degrades to the raw id when the user data is unavailable.
func (r UserRef) Display() string {
	if r.User != nil {
		return r.User.Username
	}
	return fmt.Sprintf("user %d", r.ID)
}

func (r UserRef) String() string {
	return r.Display()
}
