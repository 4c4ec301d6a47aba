package cli

import "coding-relay-console/internal/domain"

// sampleTeams seeds the in-memory demo roster used when no relay API is configured.
func sampleTeams() []domain.Team {
	return []domain.Team{
		{Name: "Null Pointers", Members: []string{"Ana", "Bo", "", ""}},
		{Name: "Off By One", Members: []string{"Cy", "Dee", "Eli", ""}},
	}
}

// sampleQuestions provides a minimal question bank for offline demos.
func sampleQuestions() map[domain.Difficulty][]domain.Question {
	return map[domain.Difficulty][]domain.Question{
		domain.DifficultyEasy: {
			{ID: 1, Prompt: "Print the sum of two integers.", TestCases: []domain.TestCase{
				{ID: 1, Input: "2 3", Output: "5"},
				{ID: 2, Input: "-1 1", Output: "0"},
			}},
		},
		domain.DifficultyMedium: {
			{ID: 1, Prompt: "Print the string reversed.", TestCases: []domain.TestCase{
				{ID: 1, Input: "relay", Output: "yaler"},
			}},
		},
		domain.DifficultyHard: {
			{ID: 1, Prompt: "Print the length of the longest increasing subsequence.", TestCases: []domain.TestCase{
				{ID: 1, Input: "10 9 2 5 3 7 101 18", Output: "4"},
			}},
		},
	}
}
