package tracking

import "sync"

// VerificationEntry 某链接已录入的校验码及其校验结果
type VerificationEntry struct {
	CapturedCode string `json:"capturedCode"`
	IsValid      bool   `json:"isValid"`
}

// VerificationCodeStore 按链接保存标注者录入的校验码。
// 校验为不透明的大小写敏感相等比较。
type VerificationCodeStore struct {
	mu      sync.Mutex
	entries map[string]*VerificationEntry
}

func NewVerificationCodeStore() *VerificationCodeStore {
	return &VerificationCodeStore{entries: make(map[string]*VerificationEntry)}
}

// Restore 从草稿恢复
func (st *VerificationCodeStore) Restore(entries map[string]VerificationEntry) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, e := range entries {
		copied := e
		st.entries[id] = &copied
	}
}

func (st *VerificationCodeStore) SetCaptured(linkID, code string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[linkID]
	if !ok {
		e = &VerificationEntry{}
		st.entries[linkID] = e
	}
	e.CapturedCode = code
	e.IsValid = false
}

// Validate 比较录入码与期望码并持久化结果
func (st *VerificationCodeStore) Validate(linkID, expectedCode string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[linkID]
	if !ok {
		return false
	}
	e.IsValid = e.CapturedCode == expectedCode
	return e.IsValid
}

func (st *VerificationCodeStore) Entry(linkID string) (VerificationEntry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[linkID]
	if !ok {
		return VerificationEntry{}, false
	}
	return *e, true
}

// Entries 导出全部录入，用于草稿保存
func (st *VerificationCodeStore) Entries() map[string]VerificationEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make(map[string]VerificationEntry, len(st.entries))
	for id, e := range st.entries {
		out[id] = *e
	}
	return out
}
