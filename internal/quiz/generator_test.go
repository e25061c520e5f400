// internal/quiz/generator_test.go
package quiz

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_5_flashcard_quiz/internal/model"
)

func newTestCard(front, sentence string) *model.Flashcard {
	return &model.Flashcard{
		FlashcardID:      uuid.New(),
		Front:            front,
		Back:             "訳-" + front,
		ExampleSentence1: sentence,
	}
}

func newTestRng() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestGenerate(t *testing.T) {
	pool := []*model.Flashcard{
		newTestCard("apple", "I ate an apple this morning."),
		newTestCard("banana", "The banana is yellow."),
		newTestCard("cherry", "A cherry fell from the tree."),
		newTestCard("grape", "She bought a bunch of grapes."),
		newTestCard("melon", "The melon was sweet."),
	}

	tests := []struct {
		name          string
		pool          []*model.Flashcard
		target        *model.Flashcard
		wantSentence  string
		wantOptionLen int
	}{
		{
			name:          "正常系: 見出し語が空欄に置換され4択になる",
			pool:          pool,
			target:        pool[0],
			wantSentence:  "I ate an ______ this morning.",
			wantOptionLen: 4,
		},
		{
			name:          "正常系: 大文字始まりの見出し語も置換される",
			pool:          pool,
			target:        pool[1], // "The banana is yellow."
			wantSentence:  "The ______ is yellow.",
			wantOptionLen: 4,
		},
		{
			name: "エッジ: 例文に見出し語が現れない場合はそのまま出題",
			pool: pool,
			target: &model.Flashcard{
				FlashcardID:      uuid.New(),
				Front:            "run",
				ExampleSentence1: "He was running fast.", // 活用形のみ
			},
			wantSentence:  "He was running fast.",
			wantOptionLen: 4,
		},
		{
			name:          "エッジ: プールが4枚未満ならダミーを減らして縮退",
			pool:          pool[:2],
			target:        pool[0],
			wantSentence:  "I ate an ______ this morning.",
			wantOptionLen: 2, // 正解 + ダミー1
		},
		{
			name:          "エッジ: プールが対象1枚のみなら選択肢は正解のみ",
			pool:          pool[:1],
			target:        pool[0],
			wantSentence:  "I ate an ______ this morning.",
			wantOptionLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Generate(tt.pool, tt.target, newTestRng())

			require.NotNil(t, q)
			assert.Equal(t, tt.target.FlashcardID, q.FlashcardID)
			assert.Equal(t, tt.wantSentence, q.Sentence)
			assert.Equal(t, tt.target.Front, q.CorrectAnswer)
			assert.Len(t, q.Options, tt.wantOptionLen)

			// 正解がちょうど1回含まれ、選択肢が重複しないこと
			seen := make(map[string]int)
			for _, o := range q.Options {
				seen[o]++
			}
			assert.Equal(t, 1, seen[q.CorrectAnswer], "正解は選択肢にちょうど1回含まれる")
			for o, n := range seen {
				assert.Equal(t, 1, n, "選択肢 %q が重複している", o)
			}
		})
	}
}

func TestGenerate_BlankRemovesAllOccurrences(t *testing.T) {
	target := newTestCard("book", "A book is a book, and I love my Book.")
	pool := []*model.Flashcard{
		target,
		newTestCard("pen", "This is a pen."),
		newTestCard("desk", "The desk is old."),
		newTestCard("chair", "Sit on the chair."),
	}

	q := Generate(pool, target, newTestRng())

	// 大文字小文字を無視したすべての出現が置換されること
	assert.NotContains(t, strings.ToLower(q.Sentence), "book")
	assert.Equal(t, "A ______ is a ______, and I love my ______.", q.Sentence)
}

func TestGenerate_WholeWordMatchOnly(t *testing.T) {
	// "cat" は "category" の部分一致では置換されない
	target := newTestCard("cat", "The cat sat near the category list.")
	pool := []*model.Flashcard{
		target,
		newTestCard("dog", "The dog barked."),
		newTestCard("bird", "A bird sang."),
		newTestCard("fish", "The fish swam."),
	}

	q := Generate(pool, target, newTestRng())

	assert.Equal(t, "The ______ sat near the category list.", q.Sentence)
}

func TestGenerate_DistractorsDrawnFromPool(t *testing.T) {
	pool := []*model.Flashcard{
		newTestCard("alpha", "alpha is first."),
		newTestCard("beta", "beta is second."),
		newTestCard("gamma", "gamma is third."),
		newTestCard("delta", "delta is fourth."),
		newTestCard("epsilon", "epsilon is fifth."),
	}
	fronts := map[string]bool{}
	for _, c := range pool {
		fronts[c.Front] = true
	}

	// 乱数シードを変えて繰り返しても性質が保たれること
	for seed := uint64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed+1))
		q := Generate(pool, pool[0], rng)

		require.Len(t, q.Options, 4)
		for _, o := range q.Options {
			assert.True(t, fronts[o], "選択肢 %q はプール由来でなければならない", o)
		}
		assert.Contains(t, q.Options, "alpha")
	}
}
