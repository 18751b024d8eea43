package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/wardenbot/warden/warden"
	"github.com/wardenbot/warden/warden/config"
	"github.com/wardenbot/warden/warden/database/models"
	"github.com/wardenbot/warden/warden/database/repositories"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/sahilm/fuzzy"
)

var Infractions = discord.SlashCommandCreate{
	Name:        "infractions",
	Description: "📋 Show a user's infraction history",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The user whose history to show",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:         "type",
			Description:  "Only show infractions of this type",
			Required:     false,
			Autocomplete: true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "active",
			Description: "Only show active infractions",
			Required:    false,
		},
	},
}

func InfractionsHandler(b *warden.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if ok, err := requireStaffChannel(b, e); !ok {
			return err
		}

		data := e.SlashCommandInteractionData()
		target := data.User("user")

		filter := repositories.InfractionFilter{}
		if raw, ok := data.OptString("type"); ok {
			typ := models.InfractionType(strings.ToLower(strings.TrimSpace(raw)))
			if !typ.Valid() {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: fmt.Sprintf("Unknown infraction type %q.", raw),
						Color:       config.ErrorColor,
					}},
					Flags: discord.MessageFlagEphemeral,
				})
			}
			filter.Type = &typ
		}
		if activeOnly, ok := data.OptBool("active"); ok && activeOnly {
			active := true
			filter.Active = &active
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		infractions, err := b.Infractions.GetByUser(ctx, target.ID.String(), filter)
		if err != nil {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("Failed to load infractions: %v", err),
					Color:       config.ErrorColor,
				}},
			})
		}

		if len(infractions) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "No Infractions",
					Description: fmt.Sprintf("%s has a clean record.", target.Username),
					Color:       config.SuccessColor,
				}},
			})
		}

		// Newest first in the listing.
		for i, j := 0, len(infractions)-1; i < j; i, j = i+1, j-1 {
			infractions[i], infractions[j] = infractions[j], infractions[i]
		}

		totalPages := int(math.Ceil(float64(len(infractions)) / float64(config.InfractionsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * config.InfractionsPerPage
				endIdx := min(startIdx+config.InfractionsPerPage, len(infractions))

				var description strings.Builder
				for _, inf := range infractions[startIdx:endIdx] {
					description.WriteString(summaryLine(inf))
					description.WriteString("\n\n")
				}

				embed.
					SetTitle(fmt.Sprintf("Infractions for %s", target.Username)).
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Total: %d", page+1, totalPages, len(infractions)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

// InfractionsAutocomplete suggests infraction types for the "type" option,
// fuzzy-matched against what the moderator has typed so far.
func InfractionsAutocomplete(b *warden.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "type" {
			return nil
		}

		searchTerm := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			searchTerm = strings.TrimSpace(s)
		}

		names := make([]string, len(models.InfractionTypes))
		for i, typ := range models.InfractionTypes {
			names[i] = string(typ)
		}

		matched := names
		if searchTerm != "" {
			matched = matched[:0:0]
			for _, match := range fuzzy.Find(searchTerm, names) {
				matched = append(matched, match.Str)
			}
		}

		choices := make([]discord.AutocompleteChoice, 0, len(matched))
		for _, name := range matched {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  name,
				Value: name,
			})
		}
		return e.AutocompleteResult(choices)
	}
}
