package domain

// AnimalType — тип животного, выводимый из предсказанной породы.
type AnimalType string

const (
	AnimalTypeBuffalo AnimalType = "Buffalo"
	AnimalTypeCattle  AnimalType = "Cattle"
	AnimalTypeUnknown AnimalType = "Unknown"
)

// BuffaloBreeds — породы буйволов, известные модели.
var BuffaloBreeds = []string{
	"Bhadawari", "Jaffarbadi", "Mehsana", "Murrah", "Surti",
	"Nili-Ravi", "Pandharpuri", "Nagpuri", "Toda", "Chilika",
}

// CattleBreeds — породы крупного рогатого скота, известные модели.
var CattleBreeds = []string{
	"Gir", "Kankrej", "Ongole", "Sahiwal", "Tharparkar",
	"Red Sindhi", "Rathi", "Hariana", "Deoni", "Hallikar",
	"Amritmahal", "Khillari", "Kangayam", "Bargur", "Punganur",
	"Vechur", "Kasaragod", "Malnad Gidda", "Krishna Valley", "Dangi",
	"Gaolao", "Nimari", "Kenkatha", "Ponwar", "Bachaur",
	"Siri", "Mewati", "Nagori", "Malvi", "Kherigarh",
	"Gangatiri", "Belahi", "Lohani", "Rojhan", "Dajal",
	"Bhagnari", "Dhanni", "Cholistani", "Achai", "Lakhani",
}

// FallbackBreeds — небольшой фиксированный список пород для деградированного
// режима классификатора.
var FallbackBreeds = []string{"Murrah", "Gir", "Sahiwal", "Jaffarbadi", "Kankrej"}

var (
	buffaloSet = toSet(BuffaloBreeds)
	cattleSet  = toSet(CattleBreeds)
)

// AnimalTypeFor определяет тип животного по названию породы.
// Породы вне обоих списков помечаются как Unknown (защитная ветка на случай
// появления новых прототипов в артефакте модели).
func AnimalTypeFor(breed string) AnimalType {
	switch {
	case buffaloSet[breed]:
		return AnimalTypeBuffalo
	case cattleSet[breed]:
		return AnimalTypeCattle
	default:
		return AnimalTypeUnknown
	}
}

func toSet(breeds []string) map[string]bool {
	set := make(map[string]bool, len(breeds))
	for _, b := range breeds {
		set[b] = true
	}
	return set
}
