package recommend

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/hyperjump/memefeed/internal/config"
	"github.com/hyperjump/memefeed/internal/feedback"
	"github.com/hyperjump/memefeed/internal/keyword"
	"github.com/hyperjump/memefeed/internal/vector"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	return NewEngine(scenarioStore(t), &config.RecommendConfig{DefaultCount: 10, MaxCount: 100}, zap.NewNop(), opts...)
}

func recIndices(e *Engine, k int) []int {
	recs := e.Recommend(k)
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Index
	}
	return out
}

func TestEngine_Scenario(t *testing.T) {
	e := newTestEngine(t)
	for _, idx := range []int{0, 2} {
		if _, err := e.RecordFeedback(feedback.ActionLike, idx); err != nil {
			t.Fatalf("like %d: %v", idx, err)
		}
	}
	pref, signal := e.Preference()
	if !signal || !reflect.DeepEqual(pref, []float32{1, 0.5}) {
		t.Errorf("Preference = %v (signal=%v), want [1 0.5]", pref, signal)
	}
	recs := e.Recommend(2)
	if got := []int{recs[0].Index, recs[1].Index}; !reflect.DeepEqual(got, []int{2, 0}) {
		t.Errorf("Recommend(2) = %v, want [2 0]", got)
	}
	if recs[0].Path != "memes/c.png" {
		t.Errorf("top path = %q", recs[0].Path)
	}
	if recs[0].Score < recs[1].Score {
		t.Errorf("scores not descending: %+v", recs)
	}
}

func TestEngine_NoFeedbackStableOrder(t *testing.T) {
	e := newTestEngine(t)
	if got := recIndices(e, 3); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("no-signal order = %v, want [0 1 2]", got)
	}
	for _, r := range e.Recommend(3) {
		if r.Score != 0 {
			t.Errorf("no-signal score = %v, want 0", r.Score)
		}
	}
	if _, signal := e.Preference(); signal {
		t.Error("Preference should report no signal without likes")
	}
}

func TestEngine_RecommendIdempotent(t *testing.T) {
	e := newTestEngine(t)
	_, _ = e.RecordFeedback(feedback.ActionLike, 1)
	first := e.Recommend(3)
	second := e.Recommend(3)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Recommend not idempotent: %v vs %v", first, second)
	}
}

func TestEngine_RecommendBounds(t *testing.T) {
	e := newTestEngine(t)
	if got := e.Recommend(0); got == nil || len(got) != 0 {
		t.Errorf("Recommend(0) = %v, want empty", got)
	}
	if got := e.Recommend(-3); len(got) != 0 {
		t.Errorf("Recommend(-3) = %v, want empty", got)
	}
	if got := e.Recommend(50); len(got) != 3 {
		t.Errorf("Recommend(50) len = %d, want 3", len(got))
	}
}

func TestEngine_LikedCountMonotonic(t *testing.T) {
	e := newTestEngine(t)
	before := e.Status().LikedCount

	res, err := e.RecordFeedback(feedback.ActionLike, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Status().LikedCount; got != before+1 {
		t.Errorf("after like: LikedCount = %d, want %d", got, before+1)
	}
	if res.AcceptedCount != 1 || res.LikedCount != 1 || res.ID == "" || res.Action != "like" {
		t.Errorf("FeedbackResult = %+v", res)
	}

	res, err = e.RecordFeedback(feedback.ActionSkip, 2)
	if err != nil {
		t.Fatal(err)
	}
	st := e.Status()
	if st.LikedCount != before+1 {
		t.Errorf("after skip: LikedCount = %d, want %d", st.LikedCount, before+1)
	}
	if st.SkippedCount != 1 || st.FeedbackCount != 2 || res.AcceptedCount != 2 {
		t.Errorf("status after skip = %+v, result = %+v", st, res)
	}
}

func TestEngine_RejectsOutOfRange(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.RecordFeedback(feedback.ActionLike, 99)
	var ie *vector.IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *vector.IndexError, got %v", err)
	}
	if st := e.Status(); st.LikedCount != 0 || st.FeedbackCount != 0 {
		t.Errorf("status changed after rejected feedback: %+v", st)
	}
}

func TestEngine_Status(t *testing.T) {
	e := newTestEngine(t)
	st := e.Status()
	if st.ItemCount != 3 || st.Dimension != 2 || st.SearchEnabled {
		t.Errorf("Status = %+v", st)
	}
}

func TestEngine_Item(t *testing.T) {
	e := newTestEngine(t)
	item, err := e.Item(1)
	if err != nil || item.Path != "memes/b.png" || item.Index != 1 {
		t.Errorf("Item(1) = %+v, %v", item, err)
	}
	if _, err := e.Item(3); err == nil {
		t.Error("Item(3) should fail")
	}
}

func TestEngine_NormalizePreference(t *testing.T) {
	e := NewEngine(scenarioStore(t), &config.RecommendConfig{NormalizePreference: true}, nil)
	_, _ = e.RecordFeedback(feedback.ActionLike, 2)
	pref, _ := e.Preference()
	if n := vector.L2Norm(pref); math.Abs(n-1) > 1e-6 {
		t.Errorf("normalized preference norm = %v, want 1", n)
	}
	if got := recIndices(e, 1); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("Recommend(1) = %v, want [2]", got)
	}
}

func TestEngine_ReplaceStore(t *testing.T) {
	e := newTestEngine(t)
	_, _ = e.RecordFeedback(feedback.ActionLike, 1)

	same, _ := vector.NewStore([][]float32{{0, 1}, {1, 0}, {1, 1}}, []string{"x", "y", "z"})
	if err := e.ReplaceStore(context.Background(), same); err != nil {
		t.Fatal(err)
	}
	if got := recIndices(e, 1); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("after reload Recommend(1) = %v, want [1]", got)
	}

	smaller, _ := vector.NewStore([][]float32{{1, 0}}, []string{"only"})
	if err := e.ReplaceStore(context.Background(), smaller); err == nil {
		t.Error("expected error for store with different size")
	}
	if e.Store() != same {
		t.Error("store should be unchanged after rejected reload")
	}
	if e.Status().LikedCount != 1 {
		t.Error("reload must keep the feedback log")
	}
}

type fakeKeywords struct {
	results []*keyword.KeywordResult
	indexed int
}

func (f *fakeKeywords) IndexStore(ctx context.Context, store *vector.Store) error {
	f.indexed++
	return nil
}

func (f *fakeKeywords) Search(ctx context.Context, query string, limit int) ([]*keyword.KeywordResult, error) {
	return f.results, nil
}

func TestEngine_Search(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Search(context.Background(), "cat", 10); !errors.Is(err, ErrSearchDisabled) {
		t.Errorf("expected ErrSearchDisabled, got %v", err)
	}

	kw := &fakeKeywords{results: []*keyword.KeywordResult{{Index: 2, Score: 1.5}, {Index: 7, Score: 0.5}}}
	e = newTestEngine(t, WithKeywordIndex(kw))
	hits, err := e.Search(context.Background(), "c", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Index != 2 || hits[0].Path != "memes/c.png" {
		t.Errorf("hits = %+v", hits)
	}
	if !e.Status().SearchEnabled {
		t.Error("SearchEnabled should be true with a keyword index")
	}

	same, _ := vector.NewStore([][]float32{{1, 0}, {0, 1}, {1, 1}}, []string{"a", "b", "c"})
	if err := e.ReplaceStore(context.Background(), same); err != nil {
		t.Fatal(err)
	}
	if kw.indexed != 1 {
		t.Errorf("keyword index should be rebuilt on reload, indexed=%d", kw.indexed)
	}
}

func TestEngine_ConcurrentFeedbackAndRecommend(t *testing.T) {
	e := newTestEngine(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := e.RecordFeedback(feedback.ActionLike, i%3); err != nil {
				t.Errorf("RecordFeedback: %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			if got := e.Recommend(2); len(got) != 2 {
				t.Errorf("Recommend(2) len = %d", len(got))
			}
		}()
	}
	wg.Wait()
	if got := e.Status().LikedCount; got != 20 {
		t.Errorf("LikedCount = %d, want 20", got)
	}
}
