package chatbot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallback = "Não sei responder."

func testBot() *Bot {
	return New(map[string][]Entry{
		"rh": {
			{Keywords: []string{"férias"}, Answer: "Férias são solicitadas no portal do RH."},
			{Keywords: []string{"férias", "vender"}, Answer: "Você pode vender até 10 dias de férias."},
			{Keywords: []string{"holerite", "contracheque"}, Answer: "O holerite sai no dia 5."},
		},
		"ti": {
			{Keywords: []string{"senha"}, Answer: "Troque a senha em id.corp.example."},
			{Keywords: []string{"holerite"}, Answer: "Shadowed by rh."},
			{Keywords: []string{"vpn"}},
		},
	}, []string{"rh", "ti"}, fallback)
}

func TestAnswer(t *testing.T) {
	bot := testBot()

	tests := []struct {
		name    string
		message string
		answer  string
		dataset string
	}{
		{"accents and case are ignored", "Como peço FERIAS?", "Férias são solicitadas no portal do RH.", "rh"},
		{"more keywords win", "posso vender minhas férias", "Você pode vender até 10 dias de férias.", "rh"},
		{"ties go to the earlier dataset", "meu holerite", "O holerite sai no dia 5.", "rh"},
		{"other dataset", "esqueci a senha!", "Troque a senha em id.corp.example.", "ti"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := bot.Answer(tt.message)
			assert.True(t, reply.Matched)
			assert.Equal(t, tt.answer, reply.Answer)
			assert.Equal(t, tt.dataset, reply.Dataset)
		})
	}
}

func TestAnswer_Fallback(t *testing.T) {
	bot := testBot()

	reply := bot.Answer("qual o cardápio de hoje?")
	assert.False(t, reply.Matched)
	assert.Equal(t, fallback, reply.Answer)

	// Keywords match whole words only, and entries without answers are dropped.
	assert.False(t, bot.Answer("senhas").Matched)
	assert.False(t, bot.Answer("vpn").Matched)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "ferias coletivas 2025", fold("  Férias, coletivas — 2025!"))
	assert.Equal(t, "acao", fold("AÇÃO"))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_ti.json"),
		[]byte(`[{"keywords": ["wifi"], "answer": "Rede CORP"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_rh.json"),
		[]byte(`[{"keywords": ["wifi", "visitante"], "answer": "Peça na recepção"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	bot, err := LoadDir(dir, fallback, nil)
	require.NoError(t, err)

	reply := bot.Answer("senha do wifi")
	assert.Equal(t, "Peça na recepção", reply.Answer)
	assert.Equal(t, "a_rh", reply.Dataset)
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(t.TempDir(), fallback, nil)
	assert.ErrorIs(t, err, ErrNoDatasets)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o600))
	_, err = LoadDir(dir, fallback, nil)
	assert.ErrorContains(t, err, "bad.json")
}
