package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testDimensionIDs = []string{
	"clarity", "aesthetics", "usability", "consistency",
	"accessibility", "responsiveness", "information_density",
}

// readyInput 构造一个全部谓词为真的输入
func readyInput() EligibilityInput {
	judgments := make([]DimensionJudgment, 0, len(testDimensionIDs))
	for _, id := range testDimensionIDs {
		judgments = append(judgments, DimensionJudgment{
			DimensionID: id,
			Winner:      WinnerA,
			Notes:       "variant a presents this aspect more clearly overall",
		})
	}
	return EligibilityInput{
		LinkA:                LinkVisitSnapshot{LinkID: LinkA, Visited: true, EffectiveMs: 12000},
		LinkB:                LinkVisitSnapshot{LinkID: LinkB, Visited: true, EffectiveMs: 12000},
		MinViewTimeMs:        10000,
		HasVerificationCodes: true,
		VerificationA:        VerificationEntry{CapturedCode: "X1", IsValid: true},
		VerificationB:        VerificationEntry{CapturedCode: "Y2", IsValid: true},
		DimensionIDs:         testDimensionIDs,
		Judgments:            judgments,
		OverallWinner:        WinnerA,
	}
}

func TestEligibilityAllPredicatesTrue(t *testing.T) {
	snap := EvaluateEligibility(readyInput())

	assert.True(t, snap.IsReadyForSubmission)
	assert.Empty(t, snap.Reasons)
	assert.Len(t, snap.NoteVerdicts, len(testDimensionIDs))
}

// 任意单个谓词翻转为假都必须使 isReadyForSubmission 为假
func TestEligibilityMonotonicity(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*EligibilityInput)
		reason ReasonCode
	}{
		{"link A not visited", func(in *EligibilityInput) { in.LinkA.Visited = false }, ReasonLinkNotVisited},
		{"link B not visited", func(in *EligibilityInput) { in.LinkB.Visited = false }, ReasonLinkNotVisited},
		{"link A too short", func(in *EligibilityInput) { in.LinkA.EffectiveMs = 9999 }, ReasonInsufficientTime},
		{"link B too short", func(in *EligibilityInput) { in.LinkB.EffectiveMs = 4000 }, ReasonInsufficientTime},
		{"verification A invalid", func(in *EligibilityInput) { in.VerificationA.IsValid = false }, ReasonVerificationInvalid},
		{"verification B missing", func(in *EligibilityInput) { in.VerificationB = VerificationEntry{} }, ReasonVerificationRequired},
		{"dimension unjudged", func(in *EligibilityInput) { in.Judgments[3].Winner = WinnerUnset }, ReasonDimensionUnjudged},
		{"dimension missing", func(in *EligibilityInput) { in.Judgments = in.Judgments[1:] }, ReasonDimensionUnjudged},
		{"note invalid", func(in *EligibilityInput) { in.Judgments[0].Notes = "ok" }, ReasonNoteInvalid},
		{"overall winner unset", func(in *EligibilityInput) { in.OverallWinner = WinnerUnset }, ReasonOverallWinnerMissing},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			in := readyInput()
			m.mutate(&in)
			snap := EvaluateEligibility(in)

			assert.False(t, snap.IsReadyForSubmission)
			assert.True(t, hasReason(snap.Reasons, m.reason), "expected reason %s, got %v", m.reason, snap.Reasons)
		})
	}
}

func TestEligibilityVerificationVacuouslyTrue(t *testing.T) {
	in := readyInput()
	in.HasVerificationCodes = false
	in.VerificationA = VerificationEntry{}
	in.VerificationB = VerificationEntry{}

	snap := EvaluateEligibility(in)
	assert.True(t, snap.VerificationPassed)
	assert.True(t, snap.IsReadyForSubmission)
}

func TestEligibilityInsufficientTimeIdentifiesLink(t *testing.T) {
	in := readyInput()
	in.LinkB.EffectiveMs = 4000

	snap := EvaluateEligibility(in)
	assert.False(t, snap.IsReadyForSubmission)
	assert.False(t, snap.SufficientTime)

	found := false
	for _, r := range snap.Reasons {
		if r.Code == ReasonInsufficientTime {
			assert.Equal(t, LinkB, r.LinkID, "reason must identify link B")
			found = true
		}
	}
	assert.True(t, found)
}

func TestEligibilityEmptyInputNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		snap := EvaluateEligibility(EligibilityInput{DimensionIDs: testDimensionIDs})
		assert.False(t, snap.IsReadyForSubmission)
		assert.NotEmpty(t, snap.Reasons)
	})
}

func TestEligibilityReasonsCarryNoteDetail(t *testing.T) {
	in := readyInput()
	in.Judgments[2].Notes = "test test test test test"

	snap := EvaluateEligibility(in)
	for _, r := range snap.Reasons {
		if r.Code == ReasonNoteInvalid {
			assert.Equal(t, testDimensionIDs[2], r.DimensionID)
			assert.Equal(t, NoteTooRepetitive, r.NoteReason)
			return
		}
	}
	t.Fatal("expected a note_invalid reason")
}

func hasReason(reasons []Reason, code ReasonCode) bool {
	for _, r := range reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}
