package services

import (
	"fmt"
	"strings"
)

var teamNames = []string{
	"Abra", "Bulbasaur", "Charmander", "Squirtle", "Pikachu", "Jigglypuff", "Meowth",
	"Psyduck", "Growlithe", "Poliwag", "Machop", "Geodude", "Ponyta", "Slowpoke",
	"Magnemite", "Gastly", "Onix", "Drowzee", "Krabby", "Voltorb", "Cubone", "Koffing",
	"Rhyhorn", "Horsea", "Goldeen", "Staryu", "Scyther", "Jynx", "Electabuzz", "Magmar",
	"Pinsir", "Tauros", "Magikarp", "Lapras", "Ditto", "Eevee", "Porygon", "Omanyte",
	"Kabuto", "Aerodactyl", "Snorlax", "Articuno", "Zapdos", "Moltres", "Dratini",
	"Mewtwo", "Mew", "Chikorita", "Cyndaquil", "Totodile",
}

// generateTeamName picks the name at index count+1, moving forward past names
// already used in the tournament so an existing team is never overwritten.
func generateTeamName(count int, used map[string]struct{}) string {
	for i := 0; i < len(teamNames); i++ {
		name := "Team " + teamNames[(count+1+i)%len(teamNames)]
		if _, taken := used[strings.ToLower(name)]; !taken {
			return name
		}
	}
	for n := 2; ; n++ {
		name := fmt.Sprintf("Team %s %d", teamNames[(count+1)%len(teamNames)], n)
		if _, taken := used[strings.ToLower(name)]; !taken {
			return name
		}
	}
}
