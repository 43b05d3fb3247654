package nsc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

func s(name string, pct float64) subject.Subject {
	return subject.Subject{Name: name, Percentage: pct}
}

func TestEvaluate_DiplomaWhenBachelorShort(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("English Home Language", 45),
		s("Afrikaans First Additional Language", 50),
		s("Life Orientation", 60),
		s("Mathematics", 55),
		s("Geography", 52),
		s("History", 48),
		s("Business Studies", 35),
	})

	assert.Equal(t, PassDiploma, got.PassLevel)
	assert.True(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonBachelorFourAt50)
	assert.NotContains(t, got.Reasons, ReasonDiplomaThreeAt40)
	assert.NotContains(t, got.Reasons, ReasonMissingHL)
}

func TestEvaluate_Bachelor(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("English HL", 65),
		s("Afrikaans FAL", 60),
		s("LO", 70),
		s("Maths", 55),
		s("Physical Sciences", 52),
		s("Geography", 50),
		s("History", 45),
	})

	assert.Equal(t, PassBachelor, got.PassLevel)
	assert.True(t, got.MeetsBasicNSC)
	assert.Empty(t, got.Reasons)
	assert.NotNil(t, got.Reasons)
}

func TestEvaluate_HigherCertificate(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("English Home Language", 45),
		s("Afrikaans First Additional Language", 42),
		s("Life Orientation", 50),
		s("Mathematical Literacy", 35),
		s("Geography", 33),
		s("History", 31),
		s("Business Studies", 30),
	})

	assert.Equal(t, PassHigherCertificate, got.PassLevel)
	assert.True(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonDiplomaThreeAt40)
	assert.Contains(t, got.Reasons, ReasonBachelorFourAt50)
	assert.NotContains(t, got.Reasons, ReasonLanguageForHC)
}

func TestEvaluate_HigherCertificateNeedsEnglishOrAfrikaans(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("isiZulu Home Language", 60),
		s("Sesotho First Additional Language", 55),
		s("Life Orientation", 60),
		s("Mathematical Literacy", 35),
		s("Geography", 33),
		s("History", 31),
		s("Business Studies", 30),
	})

	assert.Equal(t, PassNone, got.PassLevel)
	assert.True(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonLanguageForHC)
}

func TestEvaluate_HomeLanguageBelow40(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("English Home Language", 35),
		s("Afrikaans First Additional Language", 70),
		s("Life Orientation", 70),
		s("Mathematics", 70),
		s("Physical Sciences", 70),
		s("Geography", 70),
		s("History", 70),
	})

	assert.Equal(t, PassNone, got.PassLevel)
	assert.False(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonHLBelow40)
	assert.NotContains(t, got.Reasons, ReasonMissingHL)
}

func TestEvaluate_MissingRolesStillEvaluates(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("Mathematics", 80),
		s("Geography", 80),
	})

	assert.Equal(t, PassNone, got.PassLevel)
	assert.False(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonMissingHL)
	assert.Contains(t, got.Reasons, ReasonMissingFAL)
	assert.Contains(t, got.Reasons, ReasonMissingLO)
	assert.Contains(t, got.Reasons, ReasonFewerThanSixPass)
	assert.NotContains(t, got.Reasons, ReasonHLBelow40)
}

func TestEvaluate_Empty(t *testing.T) {
	t.Parallel()
	got := Evaluate(nil)
	assert.Equal(t, PassNone, got.PassLevel)
	assert.False(t, got.MeetsBasicNSC)
	assert.Contains(t, got.Reasons, ReasonMissingHL)
	assert.Contains(t, got.Reasons, ReasonLanguageForHC)
}

func TestEvaluate_InvalidMarksFail(t *testing.T) {
	t.Parallel()
	got := Evaluate([]subject.Subject{
		s("English Home Language", subject.Invalid),
		s("Afrikaans First Additional Language", 70),
		s("Life Orientation", 70),
		s("Mathematics", 70),
		s("Physical Sciences", 70),
		s("Geography", 70),
		s("History", 70),
	})
	assert.Equal(t, PassNone, got.PassLevel)
	assert.Contains(t, got.Reasons, ReasonHLBelow40)
}

func TestPassLevelOrdering(t *testing.T) {
	t.Parallel()
	assert.True(t, PassBachelor.AtLeast(PassDiploma))
	assert.True(t, PassDiploma.AtLeast(PassHigherCertificate))
	assert.True(t, PassHigherCertificate.AtLeast(PassNone))
	assert.False(t, PassNone.AtLeast(PassHigherCertificate))
	assert.True(t, PassDiploma.AtLeast(PassDiploma))
}
