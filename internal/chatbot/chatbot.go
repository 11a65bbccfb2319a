// Package chatbot answers frequent employee questions from keyword datasets.
package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrNoDatasets = errors.New("no chatbot datasets found")

// Entry is one question family: any of Keywords hints at Answer.
type Entry struct {
	Keywords []string `json:"keywords"`
	Answer   string   `json:"answer"`
}

type indexedEntry struct {
	dataset  string
	keywords []string // folded
	answer   string
}

// Reply is the bot's answer to one message.
type Reply struct {
	Answer  string `json:"answer"`
	Matched bool   `json:"matched"`
	Dataset string `json:"dataset,omitempty"`
}

// Bot is immutable after construction and safe for concurrent use.
type Bot struct {
	entries  []indexedEntry
	fallback string
}

// New builds a bot from named datasets, keeping their order.
func New(datasets map[string][]Entry, order []string, fallback string) *Bot {
	b := &Bot{fallback: fallback}
	for _, name := range order {
		for _, e := range datasets[name] {
			ie := indexedEntry{dataset: name, answer: e.Answer}
			for _, kw := range e.Keywords {
				if f := fold(kw); f != "" {
					ie.keywords = append(ie.keywords, f)
				}
			}
			if len(ie.keywords) > 0 && strings.TrimSpace(e.Answer) != "" {
				b.entries = append(b.entries, ie)
			}
		}
	}
	return b
}

// LoadDir reads every *.json file in dir, in file name order.
func LoadDir(dir, fallback string, logger *zap.Logger) (*Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDatasets, dir)
	}
	sort.Strings(paths)

	datasets := make(map[string][]Entry, len(paths))
	order := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", filepath.Base(p), err)
		}
		name := strings.TrimSuffix(filepath.Base(p), ".json")
		datasets[name] = entries
		order = append(order, name)
	}

	bot := New(datasets, order, fallback)
	logger.Info("chatbot datasets loaded", zap.Strings("datasets", order), zap.Int("entries", len(bot.entries)))
	return bot, nil
}

// Answer picks the entry with the most keywords present in message.
// Ties go to the entry loaded first.
func (b *Bot) Answer(message string) Reply {
	text := " " + fold(message) + " "
	best, bestScore := -1, 0
	for i, e := range b.entries {
		score := 0
		for _, kw := range e.keywords {
			if strings.Contains(text, " "+kw+" ") {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Reply{Answer: b.fallback}
	}
	return Reply{Answer: b.entries[best].answer, Matched: true, Dataset: b.entries[best].dataset}
}

// fold lowercases s, strips accents and collapses punctuation to single
// spaces, so "Férias?" and "ferias" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	words := strings.FieldsFunc(strings.ToLower(stripped), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
