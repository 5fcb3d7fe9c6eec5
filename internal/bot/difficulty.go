package bot

import (
	"errors"
	"fmt"
	"strings"
)

// Difficulty selects how the engine trades search for randomness.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ErrUnknownDifficulty is returned by ParseDifficulty for names outside the three tiers.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulties lists the tiers in the order a selector presents them.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty maps a case-insensitive tier name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

func (d Difficulty) String() string {
	return string(d)
}
