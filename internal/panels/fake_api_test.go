package panels

import (
	"context"
	"sync"

	"github.com/seuros/vidpulse/internal/reportapi"
)

// fakeAPI is an in-memory reportapi.API. A non-nil err fails every call.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	requests []any

	err error

	platforms  []string
	countries  []reportapi.Country
	yearMonths []reportapi.YearMonth

	global    *reportapi.GlobalResponse
	hashtag   *reportapi.HashtagResponse
	trend     *reportapi.TrendResponse
	timing    *reportapi.TimingResponse
	creator   *reportapi.CreatorResponse
	region    *reportapi.RegionResponse
	dominance *reportapi.DominanceResponse

	globalFn func(ctx context.Context, req reportapi.GlobalRequest) (*reportapi.GlobalResponse, error)
}

var _ reportapi.API = (*fakeAPI)(nil)

func (f *fakeAPI) record(call string, req any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.requests = append(f.requests, req)
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) lastRequest() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func respond[T any](f *fakeAPI, resp *T) (*T, error) {
	if f.err != nil {
		return nil, f.err
	}
	if resp == nil {
		return new(T), nil
	}
	return resp, nil
}

func (f *fakeAPI) Platforms(context.Context) ([]string, error) {
	f.record("platforms", nil)
	return f.platforms, f.err
}

func (f *fakeAPI) Countries(context.Context) ([]reportapi.Country, error) {
	f.record("countries", nil)
	return f.countries, f.err
}

func (f *fakeAPI) YearMonths(context.Context) ([]reportapi.YearMonth, error) {
	f.record("year-months", nil)
	return f.yearMonths, f.err
}

func (f *fakeAPI) GlobalAnalysis(ctx context.Context, req reportapi.GlobalRequest) (*reportapi.GlobalResponse, error) {
	f.record("global", req)
	if f.globalFn != nil {
		return f.globalFn(ctx, req)
	}
	return respond(f, f.global)
}

func (f *fakeAPI) HashtagReport(_ context.Context, req reportapi.HashtagRequest) (*reportapi.HashtagResponse, error) {
	f.record("hashtag", req)
	return respond(f, f.hashtag)
}

func (f *fakeAPI) TrendReport(_ context.Context, req reportapi.TrendRequest) (*reportapi.TrendResponse, error) {
	f.record("trend", req)
	return respond(f, f.trend)
}

func (f *fakeAPI) PublishTiming(_ context.Context, req reportapi.TimingRequest) (*reportapi.TimingResponse, error) {
	f.record("timing", req)
	return respond(f, f.timing)
}

func (f *fakeAPI) CreatorPerformance(_ context.Context, req reportapi.CreatorRequest) (*reportapi.CreatorResponse, error) {
	f.record("creator", req)
	return respond(f, f.creator)
}

func (f *fakeAPI) RegionAdReco(_ context.Context, req reportapi.RegionRequest) (*reportapi.RegionResponse, error) {
	f.record("region", req)
	return respond(f, f.region)
}

func (f *fakeAPI) PlatformDominance(_ context.Context, req reportapi.DominanceRequest) (*reportapi.DominanceResponse, error) {
	f.record("dominance", req)
	return respond(f, f.dominance)
}

type published struct {
	page string
	msg  []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	frames []published
}

func (p *fakePublisher) Publish(page string, msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, published{page: page, msg: msg})
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func (p *fakePublisher) first() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames[0]
}
