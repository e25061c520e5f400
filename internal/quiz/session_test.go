// internal/quiz/session_test.go
package quiz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_5_flashcard_quiz/internal/model"
)

func TestNewSession_EligibilityFilter(t *testing.T) {
	withExample := newTestCard("apple", "I like apple pie.")
	learnedCard := newTestCard("banana", "The banana is ripe.")
	noExample := &model.Flashcard{FlashcardID: uuid.New(), Front: "cherry"}

	cards := []*model.Flashcard{withExample, learnedCard, noExample}
	learned := map[uuid.UUID]bool{learnedCard.FlashcardID: true}

	s := NewSession(cards, learned, newTestRng())

	// 習得済みと例文なしは除外される
	assert.Equal(t, 1, s.Len())
	q := s.Current()
	require.NotNil(t, q)
	assert.Equal(t, withExample.FlashcardID, q.FlashcardID)
}

func TestSession_AdvanceToDone(t *testing.T) {
	cards := []*model.Flashcard{
		newTestCard("one", "one is a number."),
		newTestCard("two", "two is a number."),
		newTestCard("three", "three is a number."),
	}

	s := NewSession(cards, nil, newTestRng())
	require.Equal(t, 3, s.Len())

	// 3回 Advance すると完了し、Current は nil を返す
	for i := 0; i < 3; i++ {
		assert.False(t, s.Done(), "%d問目の前は未完了のはず", i+1)
		require.NotNil(t, s.Current())
		s.Advance()
	}
	assert.True(t, s.Done())
	assert.Nil(t, s.Current())

	// 完了後の Advance でカーソルが進みすぎたり巻き戻ったりしない
	s.Advance()
	assert.True(t, s.Done())
	assert.Nil(t, s.Current())
}

func TestSession_EmptyPoolIsImmediatelyDone(t *testing.T) {
	// 例文を持つカードが1枚もない場合、セッションは最初から完了状態 (エラーではない)
	cards := []*model.Flashcard{
		{FlashcardID: uuid.New(), Front: "alpha"},
		{FlashcardID: uuid.New(), Front: "beta"},
	}

	s := NewSession(cards, nil, newTestRng())

	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Done())
	assert.Nil(t, s.Current())
}

func TestSession_CurrentIsStableUntilAdvance(t *testing.T) {
	cards := []*model.Flashcard{
		newTestCard("north", "Go north at the corner."),
		newTestCard("south", "The south wind blew."),
		newTestCard("east", "The sun rises in the east."),
		newTestCard("west", "They moved west last year."),
	}

	s := NewSession(cards, nil, newTestRng())

	first := s.Current()
	again := s.Current()
	// Advance するまでは同じ問題 (選択肢の順序も含めて) が返る
	assert.Same(t, first, again)

	s.Advance()
	next := s.Current()
	require.NotNil(t, next)
	assert.NotEqual(t, first.FlashcardID, next.FlashcardID)
}

func TestSession_MembershipFixedAtStart(t *testing.T) {
	cardA := newTestCard("alpha", "alpha comes first.")
	cardB := newTestCard("beta", "beta comes second.")
	learned := map[uuid.UUID]bool{}

	s := NewSession([]*model.Flashcard{cardA, cardB}, learned, newTestRng())
	require.Equal(t, 2, s.Len())

	// セッション開始後に習得済みになっても出題対象から外れない
	learned[cardB.FlashcardID] = true
	s.Advance()
	q := s.Current()
	require.NotNil(t, q)
	assert.Equal(t, cardB.FlashcardID, q.FlashcardID)
}
