package auth

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// SecurityQuestion é uma pergunta do catálogo de recuperação de senha
type SecurityQuestion struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

var securityQuestions = map[int]string{
	1: "What was the name of your first pet?",
	2: "In which city were you born?",
	3: "What was your first Pokémon?",
	4: "What is your mother's maiden name?",
	5: "What was the name of your primary school?",
	6: "What is your favorite card game?",
}

// Questions retorna o catálogo ordenado pelo ID
func Questions() []SecurityQuestion {
	out := make([]SecurityQuestion, 0, len(securityQuestions))
	for id, text := range securityQuestions {
		out = append(out, SecurityQuestion{ID: id, Text: text})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Question busca uma pergunta pelo ID
func Question(id int) (SecurityQuestion, bool) {
	text, ok := securityQuestions[id]
	return SecurityQuestion{ID: id, Text: text}, ok
}

func validateQuestions(q1, q2 int) error {
	if _, ok := securityQuestions[q1]; !ok {
		return ErrInvalidQuestion
	}
	if _, ok := securityQuestions[q2]; !ok {
		return ErrInvalidQuestion
	}
	if q1 == q2 {
		return ErrInvalidQuestion
	}
	return nil
}

// NormalizeAnswer normaliza a resposta (NFKC, case fold, espaços colapsados)
func NormalizeAnswer(answer string) string {
	s := norm.NFKC.String(answer)
	s = cases.Fold().String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
