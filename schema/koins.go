package schema

const (
	// KoinsPerPoint is conversion rate of awarded points, 1 Koin = R$1
	KoinsPerPoint = 5

	MinAwardPoints = 1
	MaxAwardPoints = 10
)

// Criteria suggested for awarding points
var Criteria = []string{
	"Agilidade com Padrão",
	"Comunicação Premium",
	"Precisão de Execução",
	"Proatividade",
	"Proteção da Marca",
	"Colaboração Interna",
	"Padrão de Entrega Final",
}

// Patente is rank reached with MinPoints accumulated points
type Patente struct {
	Label     string `json:"label"`
	MinPoints int    `json:"min_points"`
}

// Patentes are ordered by MinPoints
var Patentes = []Patente{
	{Label: "Recruta", MinPoints: 0},
	{Label: "Soldado", MinPoints: 8},
	{Label: "Cabo", MinPoints: 20},
	{Label: "Sargento", MinPoints: 40},
	{Label: "Tenente", MinPoints: 70},
	{Label: "Capitão", MinPoints: 110},
	{Label: "Major", MinPoints: 160},
	{Label: "Coronel", MinPoints: 220},
	{Label: "General", MinPoints: 300},
}

// PatenteFor returns patente reached with points, and points needed for the next one.
// On the last patente threshold equals its own minimum.
func PatenteFor(points int) (Patente, int) {
	current := 0
	for i, p := range Patentes {
		if points >= p.MinPoints {
			current = i
		}
	}
	if current+1 < len(Patentes) {
		return Patentes[current], Patentes[current+1].MinPoints
	}
	return Patentes[current], Patentes[current].MinPoints
}
