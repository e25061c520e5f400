// internal/quiz/session.go
package quiz

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"go_5_flashcard_quiz/internal/model"
)

// Session はクイズセッションを表します。出題対象はセッション開始時に確定し、
// セッション中にカードが習得済みになっても対象から外れることはありません。
type Session struct {
	cards  []*model.Flashcard
	cursor int
	rng    *rand.Rand

	current *model.QuizQuestion // カーソル位置の問題のキャッシュ
}

// NewSession は出題対象を確定してセッションを開始します。
// 例文を持たないカードと learned に含まれる (習得済みの) カードは除外します。
// 対象が0枚の場合は即座に完了状態のセッションになります。
func NewSession(cards []*model.Flashcard, learned map[uuid.UUID]bool, rng *rand.Rand) *Session {
	eligible := make([]*model.Flashcard, 0, len(cards))
	for _, c := range cards {
		if !c.HasExampleSentence() || learned[c.FlashcardID] {
			continue
		}
		eligible = append(eligible, c)
	}
	return &Session{cards: eligible, rng: rng}
}

// Len は出題数を返します
func (s *Session) Len() int {
	return len(s.cards)
}

// Done はセッションが完了しているかどうかを返します
func (s *Session) Done() bool {
	return s.cursor >= len(s.cards)
}

// Current はカーソル位置の問題を返します。完了していれば nil を返します。
// 同じカーソル位置では同じ問題を返します (Advance するまで再生成しない)。
func (s *Session) Current() *model.QuizQuestion {
	if s.Done() {
		return nil
	}
	if s.current == nil {
		s.current = Generate(s.cards, s.cards[s.cursor], s.rng)
	}
	return s.current
}

// Advance はカーソルを1つだけ進めます。末尾を超えて進むことはありません。
func (s *Session) Advance() {
	if s.Done() {
		return
	}
	s.cursor++
	s.current = nil
}
