package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		AnnotatorID:     1,
		QuestionID:      10,
		QuestionnaireID: 5,
		LinkURLs: map[string]string{
			LinkA: "https://example.com/variant-a",
			LinkB: "https://example.com/variant-b",
		},
		ExpectedCodes: map[string]string{LinkA: "ALPHA7", LinkB: "BRAVO9"},
		MinViewTimeMs: 10000,
		DimensionIDs:  testDimensionIDs,
	}
}

func newTestSession(t *testing.T, resources ...*fakeResource) (*QuestionSession, *fakeClock) {
	t.Helper()
	clock := newFakeClock(0)
	return NewQuestionSession(clock, openerOf(resources...), testSessionConfig()), clock
}

func fillValidForm(t *testing.T, qs *QuestionSession) {
	t.Helper()
	for _, id := range testDimensionIDs {
		require.NoError(t, qs.SetJudgment(id, WinnerA, "variant a handles this aspect with less visual noise"))
	}
	qs.SetOverallWinner(WinnerA)
}

// 端到端场景：两个链接各注视 12s，校验码匹配，表单完整 → 可提交
func TestQuestionSessionEndToEnd(t *testing.T) {
	qs, _ := newTestSession(t,
		&fakeResource{supportsFocus: true},
		&fakeResource{supportsFocus: true},
	)

	genA, err := qs.OpenLink(LinkA, 0)
	require.NoError(t, err)
	qs.Focus(genA, 0)
	qs.Blur(genA, 12000)
	qs.CloseActive(12000)

	genB, err := qs.OpenLink(LinkB, 12000)
	require.NoError(t, err)
	qs.Focus(genB, 12000)
	qs.Blur(genB, 24000)

	okA, err := qs.SetCapturedCode(LinkA, "ALPHA7")
	require.NoError(t, err)
	assert.True(t, okA)
	okB, err := qs.SetCapturedCode(LinkB, "BRAVO9")
	require.NoError(t, err)
	assert.True(t, okB)

	fillValidForm(t, qs)

	snap := qs.Eligibility(24000)
	assert.True(t, snap.IsReadyForSubmission, "reasons: %v", snap.Reasons)
	assert.Empty(t, snap.Reasons)
}

// 同场景但链接 B 只注视 4s → 不可提交，原因指向链接 B
func TestQuestionSessionInsufficientTime(t *testing.T) {
	qs, _ := newTestSession(t,
		&fakeResource{supportsFocus: true},
		&fakeResource{supportsFocus: true},
	)

	genA, err := qs.OpenLink(LinkA, 0)
	require.NoError(t, err)
	qs.Focus(genA, 0)
	qs.Blur(genA, 12000)

	genB, err := qs.OpenLink(LinkB, 12000)
	require.NoError(t, err)
	qs.Focus(genB, 12000)
	qs.Blur(genB, 16000)

	qs.SetCapturedCode(LinkA, "ALPHA7")
	qs.SetCapturedCode(LinkB, "BRAVO9")
	fillValidForm(t, qs)

	snap := qs.Eligibility(16000)
	assert.False(t, snap.IsReadyForSubmission)
	assert.False(t, snap.SufficientTime)

	var linkIDs []string
	for _, r := range snap.Reasons {
		if r.Code == ReasonInsufficientTime {
			linkIDs = append(linkIDs, r.LinkID)
		}
	}
	assert.Equal(t, []string{LinkB}, linkIDs)
}

// 打开 B 会强制关闭 A 并结算其时长；迟到的 A 事件被忽略
func TestQuestionSessionSupersededLink(t *testing.T) {
	qs, _ := newTestSession(t,
		&fakeResource{supportsFocus: true},
		&fakeResource{supportsFocus: true},
	)

	genA, err := qs.OpenLink(LinkA, 0)
	require.NoError(t, err)
	qs.Focus(genA, 0)

	genB, err := qs.OpenLink(LinkB, 7000)
	require.NoError(t, err)

	snapA := qs.VisitSnapshot(LinkA, 7000)
	assert.Equal(t, int64(7000), snapA.EffectiveMs)
	assert.False(t, snapA.CurrentlyViewing)

	qs.Blur(genA, 9000)
	assert.Equal(t, int64(7000), qs.VisitSnapshot(LinkA, 9000).EffectiveMs)
	assert.Equal(t, int64(1), qs.StaleEventCount())

	qs.Focus(genB, 9000)
	qs.Blur(genB, 11000)
	assert.Equal(t, int64(2000), qs.VisitSnapshot(LinkB, 11000).EffectiveMs)
}

func TestQuestionSessionBlockedPopup(t *testing.T) {
	qs, _ := newTestSession(t, nil)

	_, err := qs.OpenLink(LinkA, 0)
	assert.ErrorIs(t, err, ErrResourceBlocked)

	snap := qs.VisitSnapshot(LinkA, 1000)
	assert.False(t, snap.Visited, "blocked open must not count as a visit")
}

func TestQuestionSessionVerificationMismatch(t *testing.T) {
	qs, _ := newTestSession(t, &fakeResource{supportsFocus: true})

	ok, err := qs.SetCapturedCode(LinkA, "alpha7")
	require.NoError(t, err)
	assert.False(t, ok, "comparison is case-sensitive")

	ok, err = qs.SetCapturedCode(LinkA, "ALPHA7")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = qs.SetCapturedCode("c", "X")
	assert.ErrorIs(t, err, ErrUnknownLink)
}

func TestQuestionSessionDraftRoundTrip(t *testing.T) {
	qs, _ := newTestSession(t, &fakeResource{supportsFocus: true})

	gen, err := qs.OpenLink(LinkA, 0)
	require.NoError(t, err)
	qs.Focus(gen, 0)
	qs.Blur(gen, 6000)
	qs.SetCapturedCode(LinkA, "ALPHA7")
	require.NoError(t, qs.SetJudgment("clarity", WinnerB, "labels on variant b are easier to scan quickly"))
	qs.SetOverallWinner(WinnerB)

	draft := qs.Checkpoint()
	require.NotNil(t, draft)

	restored := NewQuestionSession(newFakeClock(0), openerOf(), testSessionConfig())
	restored.RestoreDraft(draft)

	snap := restored.VisitSnapshot(LinkA, 10000)
	assert.True(t, snap.Visited)
	assert.Equal(t, int64(6000), snap.EffectiveMs)

	elig := restored.Eligibility(10000)
	assert.True(t, hasReason(elig.Reasons, ReasonLinkNotVisited), "link B still unvisited")
	assert.True(t, hasReason(elig.Reasons, ReasonDimensionUnjudged))
	assert.False(t, hasReason(elig.Reasons, ReasonOverallWinnerMissing))

	entry, ok := restored.codes.Entry(LinkA)
	require.True(t, ok)
	assert.True(t, entry.IsValid)
}

func TestQuestionSessionTeardownSettlesTime(t *testing.T) {
	qs, _ := newTestSession(t, &fakeResource{supportsFocus: true})

	gen, err := qs.OpenLink(LinkA, 0)
	require.NoError(t, err)
	qs.Focus(gen, 0)

	qs.Teardown(5000)
	assert.Equal(t, int64(5000), qs.VisitSnapshot(LinkA, 30000).EffectiveMs)

	// 重复 Teardown 与迟到事件均为 no-op
	qs.Teardown(9000)
	qs.Blur(gen, 9000)
	assert.Equal(t, int64(5000), qs.VisitSnapshot(LinkA, 30000).EffectiveMs)
}

func TestQuestionSessionUnknownDimension(t *testing.T) {
	qs, _ := newTestSession(t)
	err := qs.SetJudgment("speed", WinnerA, "this dimension does not exist in the catalog")
	assert.ErrorIs(t, err, ErrUnknownDimension)
}
