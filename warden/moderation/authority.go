package moderation

import (
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/snowflake/v2"
)

// AuthorityChecker decides whether an actor may act against a target.
type AuthorityChecker interface {
	CanAct(actor UserRef, target UserRef) bool
}

type hierarchyChecker struct {
	client  bot.Client
	guildID snowflake.ID
}

// NewHierarchyChecker builds an AuthorityChecker backed by the member and
// role caches: self-targeting, bot targets, and targets with an equal or
// higher top role are all rejected.
func NewHierarchyChecker(client bot.Client, guildID snowflake.ID) AuthorityChecker {
	return &hierarchyChecker{client: client, guildID: guildID}
}

func (h *hierarchyChecker) CanAct(actor UserRef, target UserRef) bool {
	if actor.ID == target.ID {
		return false
	}
	if target.ID == h.client.ID() {
		return false
	}
	if target.Resolved() && target.User.Bot {
		return false
	}

	targetMember, targetInGuild := h.client.Caches().Member(h.guildID, target.ID)
	if !targetInGuild {
		// Target already left (or was never resolved): hierarchy cannot
		// protect them, acting on the raw id is allowed.
		return true
	}
	if targetMember.User.Bot {
		return false
	}

	actorMember, ok := h.client.Caches().Member(h.guildID, actor.ID)
	if !ok {
		return false
	}

	return h.topRolePosition(actorMember.RoleIDs) > h.topRolePosition(targetMember.RoleIDs)
}

func (h *hierarchyChecker) topRolePosition(roleIDs []snowflake.ID) int {
	top := 0
	for _, roleID := range roleIDs {
		if role, ok := h.client.Caches().Role(h.guildID, roleID); ok && role.Position > top {
			top = role.Position
		}
	}
	return top
}
