package normalize

// DefaultAliases returns the La Liga alias table. Case variants are not
// listed since lookups are case insensitive.
func DefaultAliases() []TeamAliases {
	return []TeamAliases{
		{Canonical: "Athletic Club", Aliases: []string{"Athletic Bilbao", "Athletic"}},
		{Canonical: "UD Las Palmas", Aliases: []string{"Las Palmas"}},
		{Canonical: "RC Celta", Aliases: []string{"Celta Vigo", "Celta", "RC Celta de Vigo"}},
		{Canonical: "Real Sociedad", Aliases: []string{"Real Sociedad de Fútbol"}},
		{Canonical: "Atlético de Madrid", Aliases: []string{"Atletico Madrid", "Club Atlético de Madrid"}},
		{Canonical: "Real Betis Balompié", Aliases: []string{"Real Betis", "Betis"}},
		{Canonical: "Real Valladolid", Aliases: []string{"Valladolid", "Real Valladolid CF"}},
		{Canonical: "CD Leganés", Aliases: []string{"Leganes"}},
		{Canonical: "RCD Espanyol", Aliases: []string{"Espanyol", "RCD Espanyol de Barcelona"}},
		{Canonical: "Getafe CF", Aliases: []string{"Getafe"}},
		{Canonical: "CA Osasuna", Aliases: []string{"Osasuna"}},
		{Canonical: "Deportivo Alavés", Aliases: []string{"Alaves"}},
		{Canonical: "Girona FC", Aliases: []string{"Girona"}},
		{Canonical: "RCD Mallorca", Aliases: []string{"Mallorca"}},
		{Canonical: "Real Madrid CF", Aliases: []string{"Real Madrid", "Madrid"}},
		{Canonical: "FC Barcelona", Aliases: []string{"Barcelona"}},
		{Canonical: "Sevilla FC", Aliases: []string{"Sevilla"}},
		{Canonical: "Valencia CF", Aliases: []string{"Valencia"}},
		{Canonical: "Villarreal CF", Aliases: []string{"Villarreal"}},
		{Canonical: "Rayo Vallecano de Madrid", Aliases: []string{"Rayo Vallecano"}},
	}
}
