// internal/model/wordinfo.go
package model

// WordInfoRequest は単語情報取得APIのリクエストボディ
type WordInfoRequest struct {
	Word string `json:"word" validate:"required,min=1,max=100"`
}

// WordInfo は AI から取得する単語情報のスキーマです。
// 外部APIのレスポンスは欠けたフィールドを含みうるため、全フィールドを任意とし、
// 欠けている場合はゼロ値に正規化して扱います。
type WordInfo struct {
	Phonetic            string   `json:"phonetic,omitempty"`
	ChineseDefinition   string   `json:"chineseDefinition,omitempty"`
	EnglishDefinition   string   `json:"englishDefinition,omitempty"`
	Synonyms            []string `json:"synonyms,omitempty"`
	Antonyms            []string `json:"antonyms,omitempty"`
	RelatedWords        []string `json:"relatedWords,omitempty"`
	ExampleSentence1    string   `json:"exampleSentence1,omitempty"`
	ExampleTranslation1 string   `json:"exampleTranslation1,omitempty"`
	ExampleSource1      string   `json:"exampleSource1,omitempty"`
	ExampleSentence2    string   `json:"exampleSentence2,omitempty"`
	ExampleTranslation2 string   `json:"exampleTranslation2,omitempty"`
	ExampleSource2      string   `json:"exampleSource2,omitempty"`
	ExampleSentence3    string   `json:"exampleSentence3,omitempty"`
	ExampleTranslation3 string   `json:"exampleTranslation3,omitempty"`
	ExampleSource3      string   `json:"exampleSource3,omitempty"`
}
