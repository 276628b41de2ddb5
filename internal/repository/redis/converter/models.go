package converter

// ClassificationRedisModel — представление результата классификации в кэше.
type ClassificationRedisModel struct {
	Breed      string            `json:"breed"`
	Confidence float64           `json:"confidence"`
	AnimalType string            `json:"animal_type"`
	IsVerified bool              `json:"is_verified"`
	AllScores  []BreedScoreModel `json:"all_scores"`
	Source     string            `json:"source"`
}

type BreedScoreModel struct {
	Breed string  `json:"breed"`
	Score float64 `json:"score"`
}
