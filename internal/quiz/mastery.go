// internal/quiz/mastery.go
package quiz

import (
	"errors"
	"time"
)

// 連続正解数の閾値 (required streak) の設定範囲
const (
	MinRequiredStreak     = 1
	MaxRequiredStreak     = 3
	DefaultRequiredStreak = 2
)

// ErrInvalidRequiredStreak は閾値が設定範囲外のときに返されます。
// 設定ミスを隠さないため、丸め込みはせずエラーとして呼び出し元に返します。
var ErrInvalidRequiredStreak = errors.New("required streak must be between 1 and 3")

// ProgressState は1枚のカードに対する習熟状態です。
// Learning (IsLearned=false) と Mastered (IsLearned=true) の2状態を取り、
// Mastered への遷移は閾値到達時の正解でのみ起こります。Mastered からの
// 逆遷移はこのエンジンでは定義しません (リセットは呼び出し側のポリシー)。
type ProgressState struct {
	CorrectStreak  int
	IsLearned      bool
	ReviewCount    int
	LastReviewedAt time.Time
}

// SubmitAnswer は1回の回答を適用した次の習熟状態を返します。
// prev が nil の場合は初回回答としてゼロ状態から計算します。
//   - 正解: streak+1。閾値に達したら IsLearned=true。
//   - 不正解: streak は 0 に戻り IsLearned=false (部分的な進捗は残らない)。
//   - ReviewCount は正誤によらず必ず +1。
// 純粋関数であり、返り値の永続化は呼び出し側の責務です。
func SubmitAnswer(prev *ProgressState, isCorrect bool, requiredStreak int, now time.Time) (ProgressState, error) {
	if requiredStreak < MinRequiredStreak || requiredStreak > MaxRequiredStreak {
		return ProgressState{}, ErrInvalidRequiredStreak
	}

	var next ProgressState
	if prev != nil {
		next = *prev
	}

	if isCorrect {
		next.CorrectStreak++
		next.IsLearned = next.CorrectStreak >= requiredStreak
	} else {
		next.CorrectStreak = 0
		next.IsLearned = false
	}
	next.ReviewCount++
	next.LastReviewedAt = now

	return next, nil
}
