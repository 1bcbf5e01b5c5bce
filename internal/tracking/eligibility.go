package tracking

// Winner 维度/总体胜者的取值
type Winner string

const (
	WinnerA     Winner = "a"
	WinnerB     Winner = "b"
	WinnerTie   Winner = "tie"
	WinnerUnset Winner = ""
)

// Valid 是否为已选定的取值
func (w Winner) Valid() bool {
	return w == WinnerA || w == WinnerB || w == WinnerTie
}

// DimensionJudgment 单个评估维度上的判断
type DimensionJudgment struct {
	DimensionID string `json:"dimensionId"`
	Winner      Winner `json:"winner"`
	Notes       string `json:"notes"`
}

// ReasonCode 不可提交原因，按谓词/维度定位，便于测试与本地化
type ReasonCode string

const (
	ReasonLinkNotVisited       ReasonCode = "link_not_visited"
	ReasonInsufficientTime     ReasonCode = "insufficient_view_time"
	ReasonVerificationRequired ReasonCode = "verification_required"
	ReasonVerificationInvalid  ReasonCode = "verification_invalid"
	ReasonDimensionUnjudged    ReasonCode = "dimension_unjudged"
	ReasonNoteInvalid          ReasonCode = "note_invalid"
	ReasonOverallWinnerMissing ReasonCode = "overall_winner_missing"
)

// Reason 单条不可提交原因
type Reason struct {
	Code        ReasonCode `json:"code"`
	LinkID      string     `json:"linkId,omitempty"`
	DimensionID string     `json:"dimensionId,omitempty"`
	NoteReason  NoteReason `json:"noteReason,omitempty"`
}

// EligibilityInput 提交资格计算的全部输入
type EligibilityInput struct {
	LinkA LinkVisitSnapshot
	LinkB LinkVisitSnapshot

	MinViewTimeMs int64

	HasVerificationCodes bool
	VerificationA        VerificationEntry
	VerificationB        VerificationEntry

	// DimensionIDs 固定维度目录
	DimensionIDs []string
	Judgments    []DimensionJudgment

	OverallWinner Winner
}

// EligibilitySnapshot 派生的提交资格视图，每次重新计算，不落库
type EligibilitySnapshot struct {
	BothVisited         bool `json:"bothVisited"`
	SufficientTime      bool `json:"sufficientTime"`
	VerificationPassed  bool `json:"verificationPassed"`
	AllDimensionsJudged bool `json:"allDimensionsJudged"`
	AllNotesValid       bool `json:"allNotesValid"`
	HasOverallWinner    bool `json:"hasOverallWinner"`

	IsFormValid          bool `json:"isFormValid"`
	IsReadyForSubmission bool `json:"isReadyForSubmission"`

	Reasons []Reason `json:"reasons"`
	// NoteVerdicts 按维度的理由校验结果，用于行内提示
	NoteVerdicts map[string]NoteVerdict `json:"noteVerdicts"`
}

// EvaluateEligibility 纯函数：任何输入（缺失记录、残缺判断）都
// 归结为布尔与原因列表，绝不报错。UI 高频轮询调用。
func EvaluateEligibility(in EligibilityInput) EligibilitySnapshot {
	snap := EligibilitySnapshot{
		Reasons:      []Reason{},
		NoteVerdicts: make(map[string]NoteVerdict, len(in.DimensionIDs)),
	}

	snap.BothVisited = in.LinkA.Visited && in.LinkB.Visited
	if !in.LinkA.Visited {
		snap.Reasons = append(snap.Reasons, Reason{Code: ReasonLinkNotVisited, LinkID: in.LinkA.LinkID})
	}
	if !in.LinkB.Visited {
		snap.Reasons = append(snap.Reasons, Reason{Code: ReasonLinkNotVisited, LinkID: in.LinkB.LinkID})
	}

	snap.SufficientTime = in.LinkA.EffectiveMs >= in.MinViewTimeMs && in.LinkB.EffectiveMs >= in.MinViewTimeMs
	if in.LinkA.EffectiveMs < in.MinViewTimeMs {
		snap.Reasons = append(snap.Reasons, Reason{Code: ReasonInsufficientTime, LinkID: in.LinkA.LinkID})
	}
	if in.LinkB.EffectiveMs < in.MinViewTimeMs {
		snap.Reasons = append(snap.Reasons, Reason{Code: ReasonInsufficientTime, LinkID: in.LinkB.LinkID})
	}

	snap.VerificationPassed = true
	if in.HasVerificationCodes {
		snap.VerificationPassed = in.VerificationA.IsValid && in.VerificationB.IsValid
		appendVerificationReason(&snap, in.LinkA.LinkID, in.VerificationA)
		appendVerificationReason(&snap, in.LinkB.LinkID, in.VerificationB)
	}

	judged := make(map[string]DimensionJudgment, len(in.Judgments))
	for _, j := range in.Judgments {
		judged[j.DimensionID] = j
	}

	snap.AllDimensionsJudged = true
	snap.AllNotesValid = true
	for _, id := range in.DimensionIDs {
		j, ok := judged[id]
		if !ok || !j.Winner.Valid() {
			snap.AllDimensionsJudged = false
			snap.Reasons = append(snap.Reasons, Reason{Code: ReasonDimensionUnjudged, DimensionID: id})
			continue
		}
		verdict := ValidateNote(j.Notes)
		snap.NoteVerdicts[id] = verdict
		if !verdict.OK {
			snap.AllNotesValid = false
			snap.Reasons = append(snap.Reasons, Reason{Code: ReasonNoteInvalid, DimensionID: id, NoteReason: verdict.Reason})
		}
	}

	snap.HasOverallWinner = in.OverallWinner.Valid()
	if !snap.HasOverallWinner {
		snap.Reasons = append(snap.Reasons, Reason{Code: ReasonOverallWinnerMissing})
	}

	snap.IsFormValid = snap.AllDimensionsJudged && snap.AllNotesValid && snap.HasOverallWinner
	snap.IsReadyForSubmission = snap.IsFormValid && snap.BothVisited && snap.SufficientTime && snap.VerificationPassed
	return snap
}

func appendVerificationReason(snap *EligibilitySnapshot, linkID string, entry VerificationEntry) {
	if entry.IsValid {
		return
	}
	code := ReasonVerificationInvalid
	if entry.CapturedCode == "" {
		code = ReasonVerificationRequired
	}
	snap.Reasons = append(snap.Reasons, Reason{Code: code, LinkID: linkID})
}
