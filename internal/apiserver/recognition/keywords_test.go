package recognition

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected []string
	}{
		{
			"empty input",
			"",
			[]string{},
		},
		{
			"all stop words or too short",
			"this is with have will been from",
			[]string{},
		},
		{
			"truncates to first five in order",
			"excellent outstanding amazing fantastic wonderful brilliant incredible",
			[]string{"excellent", "outstanding", "amazing", "fantastic", "wonderful"},
		},
		{
			"lowercases tokens",
			"Excellent TEAMWORK",
			[]string{"excellent", "teamwork"},
		},
		{
			"drops short tokens",
			"you did such nice work team",
			[]string{"such", "nice", "work", "team"},
		},
		{
			"drops tokens with punctuation or digits entirely",
			"great, work! agile42 rollout",
			[]string{"rollout"},
		},
		{
			"keeps duplicates",
			"great great effort",
			[]string{"great", "great", "effort"},
		},
		{
			"filters stop words mid-sentence",
			"thanks for helping with deployment",
			[]string{"thanks", "helping", "deployment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.message)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.message, got, tt.expected)
			}
		})
	}
}

func TestExtractKeywordsNeverExceedsFive(t *testing.T) {
	msg := "alpha beta gamma delta epsilon zeta theta lambda sigma omega"
	got := ExtractKeywords(msg)
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}
