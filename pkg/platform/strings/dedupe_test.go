package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "keeps first-seen order", in: []string{"Reiteração de ofício", "Outros", "Reiteração de ofício"}, want: []string{"Reiteração de ofício", "Outros"}},
		{name: "trims before comparing", in: []string{" Outros", "Outros "}, want: []string{"Outros"}},
		{name: "drops blanks", in: []string{"", "  ", "\t"}, want: []string{}},
		{name: "case matters", in: []string{"CPF", "cpf"}, want: []string{"CPF", "cpf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("", ","))
	assert.Nil(t, SplitList(" , ,", ","))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitList("kafka-1:9092, kafka-2:9092,kafka-1:9092", ","))
}
