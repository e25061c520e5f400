// internal/quiz/generator.go
package quiz

import (
	"math/rand/v2"
	"regexp"

	"go_5_flashcard_quiz/internal/model"
)

// BlankToken は例文中の見出し語を置き換える穴埋めトークンです
const BlankToken = "______"

// maxDistractors は1問あたりのダミー選択肢の数です (正解と合わせて4択)
const maxDistractors = 3

// Generate は target の例文から穴埋めクイズを1問生成します。
// 見出し語は大文字小文字を無視した単語単位の一致で置換します。活用形などで
// 例文中に見出し語が現れない場合、例文はそのまま提示されます (仕様上許容)。
// ダミー選択肢は pool から target を除いた中から無作為非復元抽出で選びます。
// pool が小さい場合は取れるだけのダミーで縮退し、エラーにはしません。
// 純粋関数であり、乱数源以外の副作用を持ちません。
func Generate(pool []*model.Flashcard, target *model.Flashcard, rng *rand.Rand) *model.QuizQuestion {
	sentence := blankOut(target.ExampleSentence1, target.Front)

	// target 以外の見出し語からダミー候補を集める
	others := make([]string, 0, len(pool))
	for _, c := range pool {
		if c.FlashcardID == target.FlashcardID {
			continue
		}
		others = append(others, c.Front)
	}

	n := maxDistractors
	if len(others) < n {
		n = len(others)
	}
	options := make([]string, 0, n+1)
	options = append(options, target.Front)
	for _, ix := range rng.Perm(len(others))[:n] {
		options = append(options, others[ix])
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &model.QuizQuestion{
		FlashcardID:   target.FlashcardID,
		Sentence:      sentence,
		CorrectAnswer: target.Front,
		Options:       options,
	}
}

// blankOut は sentence 中の front を単語境界つき・大文字小文字無視で
// すべて BlankToken に置換します。
func blankOut(sentence, front string) string {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(front) + `\b`)
	if err != nil {
		// QuoteMeta 済みのためコンパイルは失敗しない想定
		return sentence
	}
	return re.ReplaceAllString(sentence, BlankToken)
}
