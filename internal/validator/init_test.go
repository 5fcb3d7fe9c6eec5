package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type difficultyRequest struct {
	Difficulty string `json:"difficulty" validate:"required,difficulty"`
}

func TestStruct_Difficulty(t *testing.T) {
	assert.NoError(t, Struct(difficultyRequest{Difficulty: "Medium"}))

	err := Struct(difficultyRequest{Difficulty: "nightmare"})
	assert.EqualError(t, err, `difficulty failed "difficulty"`)

	err = Struct(difficultyRequest{})
	assert.EqualError(t, err, `difficulty failed "required"`)
}
