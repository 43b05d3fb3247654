package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioSubjects() []string {
	return []string{
		"English Home Language",
		"Afrikaans First Additional Language",
		"Mathematics",
		"Life Orientation",
		"Business Studies",
		"Physical Sciences",
		"Geography",
	}
}

func TestSecondHomeLanguageDisabled(t *testing.T) {
	t.Parallel()
	v := New(scenarioSubjects())

	require.True(t, v.IsSubjectDisabled("Afrikaans Home Language"))
	reason, ok := v.DisabledReason("Afrikaans Home Language")
	require.True(t, ok)
	assert.Contains(t, reason, "ONE home language")
	assert.Contains(t, reason, "English Home Language")
}

func TestMathematicalLiteracyDisabled(t *testing.T) {
	t.Parallel()
	v := New(scenarioSubjects())

	require.True(t, v.IsSubjectDisabled("Mathematical Literacy"))
	reason, ok := v.DisabledReason("Mathematical Literacy")
	require.True(t, ok)
	assert.Equal(t, "Cannot add Mathematical Literacy because Mathematics is already selected.", reason)
}

func TestDisabledReason(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		chosen    []string
		candidate string
		disabled  bool
		reason    string
	}{
		{
			name:      "already selected via alias",
			chosen:    []string{"Mathematics"},
			candidate: "Maths",
			disabled:  true,
			reason:    "Mathematics is already selected.",
		},
		{
			name:      "already selected wins over home language rule",
			chosen:    []string{"English Home Language"},
			candidate: "English HL",
			disabled:  true,
			reason:    "English Home Language is already selected.",
		},
		{
			name:      "second first additional language",
			chosen:    []string{"English Home Language", "Afrikaans FAL"},
			candidate: "isiZulu First Additional Language",
			disabled:  true,
			reason:    "You can only take ONE first additional language. Afrikaans FAL is already selected as your first additional language.",
		},
		{
			name:      "same language at FAL after HL",
			chosen:    []string{"English Home Language"},
			candidate: "English First Additional Language",
			disabled:  true,
			reason:    "Cannot add English First Additional Language because English Home Language is already selected.",
		},
		{
			name:      "IT and CAT",
			chosen:    []string{"CAT"},
			candidate: "Information Technology",
			disabled:  true,
			reason:    "Cannot add Information Technology because CAT is already selected.",
		},
		{
			name:      "maths after maths lit",
			chosen:    []string{"Maths Lit"},
			candidate: "Mathematics",
			disabled:  true,
			reason:    "Cannot add Mathematics because Maths Lit is already selected.",
		},
		{
			name:      "second additional language is allowed",
			chosen:    []string{"English Home Language", "Afrikaans First Additional Language"},
			candidate: "isiZulu Second Additional Language",
			disabled:  false,
		},
		{
			name:      "technical mathematics is not grouped",
			chosen:    []string{"Mathematics"},
			candidate: "Technical Mathematics",
			disabled:  false,
		},
		{
			name:      "empty candidate",
			chosen:    []string{"Mathematics"},
			candidate: "  ",
			disabled:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := New(tt.chosen)
			reason, ok := v.DisabledReason(tt.candidate)
			assert.Equal(t, tt.disabled, ok)
			assert.Equal(t, tt.disabled, v.IsSubjectDisabled(tt.candidate))
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestHasConflicts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		chosen []string
		want   bool
	}{
		{"valid selection", scenarioSubjects(), false},
		{"same language HL and FAL", []string{"English Home Language", "English First Additional Language"}, true},
		{"same language FAL and HL", []string{"English First Additional Language", "English Home Language"}, true},
		{"maths and maths lit", []string{"Mathematics", "Mathematical Literacy"}, true},
		{"IT and CAT do not invalidate", []string{"Information Technology", "CAT"}, false},
		{"different languages", []string{"English HL", "Afrikaans FAL"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := New(tt.chosen)
			assert.Equal(t, tt.want, v.HasConflicts())
			assert.Equal(t, tt.want, len(v.Conflicts()) > 0)
		})
	}
}

// Swapping which language is Home and which is First Additional must not
// change the verdict.
func TestHasConflicts_Symmetric(t *testing.T) {
	t.Parallel()
	languages := []string{"English", "Afrikaans", "isiZulu", "Sesotho", "Setswana"}
	for _, lang := range languages {
		a := New([]string{lang + " Home Language", lang + " First Additional Language"})
		b := New([]string{lang + " First Additional Language", lang + " Home Language"})
		assert.True(t, a.HasConflicts(), lang)
		assert.Equal(t, a.HasConflicts(), b.HasConflicts(), lang)
	}
}
