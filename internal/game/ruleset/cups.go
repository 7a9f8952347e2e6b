package ruleset

// Builtins returns the predefined formats. Each call returns fresh values.
func Builtins() []*Ruleset {
	out := []*Ruleset{
		{ID: "standard", Name: "Standard", MinLevel: 1, MaxLevel: 100, DefaultLevel: 50, MinTeamSize: 1, MaxTeamSize: 3, AllowLegendaries: true},
		{ID: "poke_cup", Name: "Poke Cup", MinLevel: 50, MaxLevel: 55, DefaultLevel: 50, LevelSumLimit: 155, MinTeamSize: 1, MaxTeamSize: 3, BannedSpecies: []string{"mew", "mewtwo"}},
		{ID: "prime_cup", Name: "Prime Cup", MinLevel: 1, MaxLevel: 100, DefaultLevel: 100, MinTeamSize: 1, MaxTeamSize: 3, AllowLegendaries: true},
		{ID: "little_cup", Name: "Little Cup", MinLevel: 5, MaxLevel: 5, DefaultLevel: 5, MinTeamSize: 1, MaxTeamSize: 3, BasicOnly: true},
		{ID: "pika_cup", Name: "Pika Cup", MinLevel: 15, MaxLevel: 20, DefaultLevel: 15, LevelSumLimit: 50, MinTeamSize: 1, MaxTeamSize: 3, BasicOnly: true},
		{ID: "petit_cup", Name: "Petit Cup", MinLevel: 25, MaxLevel: 30, DefaultLevel: 25, LevelSumLimit: 80, MinTeamSize: 1, MaxTeamSize: 3},
		{ID: "standard_6v6", Name: "Standard 6v6", MinLevel: 1, MaxLevel: 100, DefaultLevel: 50, MinTeamSize: 1, MaxTeamSize: 6, AllowLegendaries: true},
		{ID: "prime_cup_6v6", Name: "Prime Cup 6v6", MinLevel: 1, MaxLevel: 100, DefaultLevel: 100, MinTeamSize: 1, MaxTeamSize: 6, AllowLegendaries: true},
	}
	for _, r := range out {
		r.Generation = 1
		r.Clauses = AllClauses()
	}
	return out
}
