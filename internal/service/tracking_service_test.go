package service

import (
	"testing"
	"time"

	"pairjudge_backend/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestAnnotationSession 不经数据库构造会话，只覆盖窗口事件路径
func newTestAnnotationSession(svc *TrackingService) *annotationSession {
	as := &annotationSession{
		resources:  make(map[uint64]*reportedResource),
		lastActive: time.Now(),
	}

	opener := func(url string) tracking.ExternalResource {
		as.mu.Lock()
		defer as.mu.Unlock()
		if as.nextBlocked {
			return nil
		}
		r := &reportedResource{
			url:                url,
			supportsFocus:      as.nextSupportsFocus,
			clock:              svc.clock,
			heartbeatTimeoutMs: 60000,
			lastHeartbeatMs:    svc.clock.NowMs(),
		}
		as.lastOpened = r
		return r
	}

	as.engine = tracking.NewQuestionSession(svc.clock, opener, tracking.SessionConfig{
		AnnotatorID:     1,
		QuestionID:      1,
		QuestionnaireID: 1,
		LinkURLs: map[string]string{
			tracking.LinkA: "https://example.com/a",
			tracking.LinkB: "https://example.com/b",
		},
		ExpectedCodes: map[string]string{},
		MinViewTimeMs: 1000,
		DimensionIDs:  []string{"clarity"},
		Controller: tracking.ControllerOptions{
			ProbeInterval:       time.Second,
			HostFocusDebounceMs: 300,
		},
	})
	return as
}

func TestOpenLinkPrunesSupersededResources(t *testing.T) {
	svc := &TrackingService{clock: tracking.SystemClock()}
	as := newTestAnnotationSession(svc)
	defer as.engine.Teardown(svc.clock.NowMs())

	now := svc.clock.NowMs()

	g1, err := svc.openLink(as, &WindowEvent{Type: EventOpen, LinkID: tracking.LinkA, TimestampMs: now})
	require.NoError(t, err)
	assert.Len(t, as.resources, 1)
	assert.NotNil(t, as.resource(g1))

	// 打开另一链接会顶替当前窗口，旧代号不应留在登记表里
	g2, err := svc.openLink(as, &WindowEvent{Type: EventOpen, LinkID: tracking.LinkB, TimestampMs: now + 100})
	require.NoError(t, err)
	assert.Len(t, as.resources, 1)
	assert.Nil(t, as.resource(g1))
	assert.NotNil(t, as.resource(g2))

	g3, err := svc.openLink(as, &WindowEvent{Type: EventOpen, LinkID: tracking.LinkA, TimestampMs: now + 200})
	require.NoError(t, err)
	assert.Len(t, as.resources, 1)
	assert.Nil(t, as.resource(g2))
	assert.NotNil(t, as.resource(g3))
}

func TestClosedEventReleasesResource(t *testing.T) {
	svc := &TrackingService{clock: tracking.SystemClock()}
	as := newTestAnnotationSession(svc)
	defer as.engine.Teardown(svc.clock.NowMs())

	now := svc.clock.NowMs()
	gen, err := svc.openLink(as, &WindowEvent{Type: EventOpen, LinkID: tracking.LinkA, TimestampMs: now})
	require.NoError(t, err)
	require.NotNil(t, as.resource(gen))

	as.engine.ClosedEvent(gen, now+500)
	as.dropResource(gen)

	assert.Nil(t, as.resource(gen))
	assert.Empty(t, as.resources)

	// 关闭后迟到的心跳对已释放的代号是空操作
	if r := as.resource(gen); r != nil {
		r.heartbeat(now + 600)
	}
	assert.Empty(t, as.resources)
}
