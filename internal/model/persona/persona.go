package persona

// DataAnalystID selects the data-analysis conversation mode.
const DataAnalystID = "data-analyst"

// DefaultName is shown for unknown or unset agent types.
const DefaultName = "AI"

const dicebear = "https://api.dicebear.com/9.x/adventurer/svg?"

// RandomAvatars is the shared pool used for the local user and for unknown agents.
var RandomAvatars = []string{
	dicebear + "seed=Random1&flip=true&radius=50",
	dicebear + "seed=Random2&flip=true&radius=50",
}

// Persona describes how an agent type is presented in the chat header.
type Persona struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar"`
	// Avatars, when set, is a pool picked from at random instead of Avatar.
	Avatars []string `json:"avatars,omitempty" yaml:"avatars"`
}

func adventurer(seed, hair, eyes string) string {
	return dicebear + "seed=" + seed + "&hair=" + hair + "&eyes=" + eyes + "&flip=true&radius=50"
}

// Seed provides the built-in persona catalog.
func Seed() []Persona {
	return []Persona{
		{
			ID:   DataAnalystID,
			Name: "Data Analyst",
			Avatars: []string{
				dicebear + "seed=Abby&flip=true&radius=50",
				dicebear + "seed=Bubba&flip=true&radius=50",
			},
		},
		{ID: "astarion", Name: "Astarion", Avatar: dicebear + "skinColor=f2d3b1&mouth=variant09&hair=long17&hairColor=afafaf&flip=true&radius=50"},
		{ID: "aylin", Name: "Aylin", Avatar: dicebear + "seed=Olivia&hair=longCurly&eyes=variant08&glasses=round&flip=true&radius=50"},
		{ID: "gale", Name: "Gale", Avatar: adventurer("Alexander", "shortCombover", "variant07")},
		{ID: "halsin", Name: "Halsin", Avatar: adventurer("Bear", "shortMessy", "variant06")},
		{ID: "isobel", Name: "Isobel", Avatar: adventurer("Isobel", "straight", "variant02")},
		{ID: "jaheira", Name: "Jaheira", Avatar: adventurer("Jaheira", "longStraight", "variant01")},
		{ID: "karlac", Name: "Karlac", Avatar: adventurer("Karlac", "longFringe", "variant05")},
		{ID: "laezel", Name: "Lae`zel", Avatar: adventurer("Laezel", "short", "variant04")},
		{ID: "minsc", Name: "Minsc", Avatar: adventurer("Minsc", "shaved", "variant09")},
		{ID: "minthara", Name: "Minthara", Avatar: adventurer("Minthara", "longFringe", "variant03")},
		{ID: "shadowheart", Name: "Shadowheart", Avatar: adventurer("Shadowheart", "shortMessy", "variant02")},
		{ID: "wyll", Name: "Wyll", Avatar: adventurer("Wyll", "shortCombover", "variant06")},
		{ID: "cait", Name: "Cait", Avatar: adventurer("Cait", "shortMessy", "variant04")},
		{ID: "cogsworth", Name: "Cogsworth", Avatar: adventurer("Cogsworth", "none", "variant07")},
		{ID: "curie", Name: "Curie", Avatar: adventurer("Curie", "longStraight", "variant03")},
		{ID: "mama-murphy", Name: "Mama Murphy", Avatar: adventurer("MamaMurphy", "longCurly", "variant01")},
		{ID: "nick-valentine", Name: "Nick Valentine", Avatar: adventurer("NickValentine", "shortCombover", "variant09")},
		{ID: "paladin-danse", Name: "Paladin Danse", Avatar: adventurer("PaladinDanse", "shortMessy", "variant02")},
		{ID: "preston-garvey", Name: "Preston Garvey", Avatar: adventurer("PrestonGarvey", "shortCombover", "variant05")},
		{ID: "serana", Name: "Serana", Avatar: adventurer("Serana", "longCurly", "variant08")},
	}
}
