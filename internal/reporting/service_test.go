package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"myfxreport/internal/analysis/visual"
	"myfxreport/internal/report"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, rep report.Report) (visual.ImageResult, error) {
	args := m.Called(ctx, rep)
	return args.Get(0).(visual.ImageResult), args.Error(1)
}

const oneTrade = `{"account_info": {"Initial": 1000}, "trade_data": {"h": [{"Type": "Buy", "Profit": 5, "Ctime": 1700000000}]}}`

func newTestService(t *testing.T, r Renderer, perMinute, parallel int) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Renderer:      r,
		Location:      time.UTC,
		Enabled:       true,
		MaxPerMinute:  perMinute,
		MaxConcurrent: parallel,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceNeedsRenderer(t *testing.T) {
	_, err := NewService(ServiceConfig{Enabled: true})
	assert.Error(t, err)

	_, err = NewService(ServiceConfig{Enabled: false})
	assert.NoError(t, err)
}

func TestRenderPassesReport(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.MatchedBy(func(rep report.Report) bool {
		return len(rep.Points) == 1 && rep.Stats.Profit == 5
	})).Return(visual.ImageResult{Bytes: []byte("png"), Filename: "x.png"}, nil).Once()

	img, rep, err := newTestService(t, r, 0, 1).Render(context.Background(), []byte(oneTrade))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), img.Bytes)
	assert.Equal(t, 1005.0, rep.Curve.Balance[0])
	r.AssertExpectations(t)
}

func TestRenderMalformedSkipsRenderer(t *testing.T) {
	r := &mockRenderer{}
	_, _, err := newTestService(t, r, 1, 1).Render(context.Background(), []byte(`"nope"`))
	assert.ErrorIs(t, err, report.ErrMalformedPayload)
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestRenderRateLimited(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(visual.ImageResult{}, nil)
	svc := newTestService(t, r, 1, 1)

	_, _, err := svc.Render(context.Background(), []byte(oneTrade))
	require.NoError(t, err)
	_, _, err = svc.Render(context.Background(), []byte(oneTrade))
	assert.ErrorIs(t, err, ErrRateLimited)
	r.AssertNumberOfCalls(t, "Render", 1)
}

func TestRenderDisabled(t *testing.T) {
	svc, err := NewService(ServiceConfig{Enabled: false})
	require.NoError(t, err)
	_, rep, err := svc.Render(context.Background(), []byte(oneTrade))
	assert.ErrorIs(t, err, ErrRenderDisabled)
	assert.Len(t, rep.Points, 1)
	assert.NoError(t, svc.Warmup(context.Background()))
}

func TestRenderWrapsRendererError(t *testing.T) {
	boom := errors.New("chrome crashed")
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(visual.ImageResult{}, boom)

	_, _, err := newTestService(t, r, 0, 1).Render(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, boom)
}

func TestRenderWaitsForSlot(t *testing.T) {
	r := &mockRenderer{}
	svc := newTestService(t, r, 0, 1)
	svc.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.Render(ctx, []byte(oneTrade))
	assert.ErrorIs(t, err, context.Canceled)
	r.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestRenderAppliesTimeout(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(visual.ImageResult{}, nil).Once()

	svc, err := NewService(ServiceConfig{Renderer: r, Enabled: true, Timeout: time.Minute})
	require.NoError(t, err)
	_, _, err = svc.Render(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	r.AssertExpectations(t)
}

func TestCalculateUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	svc, err := NewService(ServiceConfig{Location: tokyo})
	require.NoError(t, err)
	rep, err := svc.Calculate([]byte(oneTrade))
	require.NoError(t, err)
	assert.Equal(t, tokyo, rep.Points[0].Time.Location())
}

func TestRenderCircuitOpens(t *testing.T) {
	r := &mockRenderer{}
	r.On("Render", mock.Anything, mock.Anything).Return(visual.ImageResult{}, errors.New("no chrome"))
	svc, err := NewService(ServiceConfig{
		Renderer:         r,
		Enabled:          true,
		BreakerThreshold: 2,
		BreakerCooldown:  time.Hour,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err = svc.Render(context.Background(), []byte(`{}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRenderUnavailable)
	}
	_, _, err = svc.Render(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrRenderUnavailable)
	r.AssertNumberOfCalls(t, "Render", 2)
}
