package grades

// Summary aggregates a grade list the way the transcript footer does.
type Summary struct {
	Courses      int            `json:"courses"`
	TotalCredits float64        `json:"total_credits"`
	GPACredits   float64        `json:"gpa_credits"`
	WeightedGPA  float64        `json:"weighted_gpa"`
	AverageScore float64        `json:"average_score"`
	ByScheme     map[Scheme]int `json:"by_scheme"`
}

// Summarize computes a credit weighted GPA over every course that has one,
// and the plain average of percentage scores.
func Summarize(list []Grade) Summary {
	s := Summary{
		Courses:  len(list),
		ByScheme: map[Scheme]int{},
	}

	var weighted, scoreTotal float64
	var scored int
	for _, g := range list {
		s.TotalCredits += g.Credits
		s.ByScheme[g.Scheme]++

		if g.GPA != nil && (g.Scheme == SchemeLetter || g.Scheme == SchemePercentage) {
			s.GPACredits += g.Credits
			weighted += g.Credits * *g.GPA
		}
		if g.Score != nil {
			scoreTotal += *g.Score
			scored++
		}
	}

	if s.GPACredits > 0 {
		s.WeightedGPA = weighted / s.GPACredits
	}
	if scored > 0 {
		s.AverageScore = scoreTotal / float64(scored)
	}
	return s
}
