package grid

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

var (
	localCol  = Column{Key: "status", FilterMode: FilterLocal}
	serverCol = Column{Key: "id", FilterMode: FilterServer}
)

func TestUpsertOrRemove(t *testing.T) {
	tests := []struct {
		name string
		list []FilterSpec
		spec FilterSpec
		want []FilterSpec
	}{
		{
			name: "append",
			spec: FilterSpec{Column: "a", Value: "x"},
			want: []FilterSpec{{Column: "a", Value: "x"}},
		},
		{
			name: "replace in place",
			list: []FilterSpec{{Column: "a", Value: "x"}, {Column: "b", Value: "y"}},
			spec: FilterSpec{Column: "a", Value: "z"},
			want: []FilterSpec{{Column: "a", Value: "z"}, {Column: "b", Value: "y"}},
		},
		{
			name: "empty removes",
			list: []FilterSpec{{Column: "a", Value: "x"}, {Column: "b", Value: "y"}},
			spec: FilterSpec{Column: "a"},
			want: []FilterSpec{{Column: "b", Value: "y"}},
		},
		{
			name: "empty on absent is no-op",
			list: []FilterSpec{{Column: "b", Value: "y"}},
			spec: FilterSpec{Column: "a"},
			want: []FilterSpec{{Column: "b", Value: "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := upsertOrRemove(tt.list, tt.spec)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestApply_LocalScenario(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	ctx := context.Background()

	if err := f.Apply(ctx, FilterSpec{Column: "status", Value: "Active"}, localCol, nil); err != nil {
		t.Fatal(err)
	}
	got := f.Filters()
	if len(got) != 1 || got[0].Column != "status" || got[0].Value != "Active" || got[0].Mode != FilterLocal {
		t.Fatalf("filters = %v, want [status=Active]", got)
	}

	if err := f.Apply(ctx, FilterSpec{Column: "status", Value: ""}, localCol, nil); err != nil {
		t.Fatal(err)
	}
	if got := f.Filters(); len(got) != 0 {
		t.Fatalf("filters = %v, want []", got)
	}
}

func TestApply_EmptyValueIdempotent(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	ctx := context.Background()
	_ = f.Apply(ctx, FilterSpec{Value: "x"}, localCol, nil)
	_ = f.Apply(ctx, FilterSpec{Value: "y"}, Column{Key: "other", FilterMode: FilterLocal}, nil)

	_ = f.Apply(ctx, FilterSpec{}, localCol, nil)
	once := f.Filters()
	_ = f.Apply(ctx, FilterSpec{}, localCol, nil)
	twice := f.Filters()

	if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
		t.Fatalf("not idempotent: %v then %v", once, twice)
	}
}

func TestApply_ServerCommitsOnlyAfterSuccess(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	release := make(chan struct{})
	var proposed []FilterSpec
	op := func(ctx context.Context, p []FilterSpec) error {
		proposed = p
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- f.Apply(context.Background(), FilterSpec{Value: "42"}, serverCol, op)
	}()

	waitFor(t, func() bool { return f.Pending("id") })
	if got := f.Filters(); len(got) != 0 {
		t.Fatalf("committed before resolution: %v", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if len(proposed) != 1 || proposed[0].Value != "42" {
		t.Fatalf("server saw %v", proposed)
	}
	got := f.Filters()
	if len(got) != 1 || got[0].Column != "id" || got[0].Mode != FilterServer {
		t.Fatalf("filters = %v, want [id=42]", got)
	}
	if f.Pending("id") {
		t.Fatal("still pending after settle")
	}
}

func TestApply_ServerFailureKeepsCommitted(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	ctx := context.Background()
	ok := func(context.Context, []FilterSpec) error { return nil }
	boom := errors.New("boom")
	fail := func(context.Context, []FilterSpec) error { return boom }

	if err := f.Apply(ctx, FilterSpec{Value: "1"}, serverCol, ok); err != nil {
		t.Fatal(err)
	}
	err := f.Apply(ctx, FilterSpec{Value: "2"}, serverCol, fail)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	got := f.Filters()
	if len(got) != 1 || got[0].Value != "1" {
		t.Fatalf("filters = %v, want [id=1]", got)
	}
}

func TestApply_ServerModeWithoutOpIsSynchronous(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	if err := f.Apply(context.Background(), FilterSpec{Value: "7"}, serverCol, nil); err != nil {
		t.Fatal(err)
	}
	if got := f.Filters(); len(got) != 1 {
		t.Fatalf("filters = %v", got)
	}
}

// overlapping runs two requests for the same column, settling the first
// issued one last, and returns their errors.
func overlapping(t *testing.T, f *FilterCoordinator) (first, second error) {
	t.Helper()
	gates := map[string]chan struct{}{"A": make(chan struct{}), "B": make(chan struct{})}
	op := func(ctx context.Context, p []FilterSpec) error {
		<-gates[p[0].Value]
		return nil
	}

	firstDone := make(chan error, 1)
	secondDone := make(chan error, 1)
	go func() { firstDone <- f.Apply(context.Background(), FilterSpec{Value: "A"}, serverCol, op) }()
	waitFor(t, func() bool { return f.Pending("id") })
	go func() { secondDone <- f.Apply(context.Background(), FilterSpec{Value: "B"}, serverCol, op) }()
	waitFor(t, func() bool { return f.PendingCount() == 2 })

	close(gates["B"])
	second = <-secondDone
	close(gates["A"])
	first = <-firstDone
	return first, second
}

func TestApply_LatestIssuedWins(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	first, second := overlapping(t, f)

	if !errors.Is(first, ErrStaleFilter) {
		t.Fatalf("first err = %v, want ErrStaleFilter", first)
	}
	if second != nil {
		t.Fatalf("second err = %v", second)
	}
	if v, _ := f.Value("id"); v != "B" {
		t.Fatalf("committed %q, want B", v)
	}
}

func TestApply_LastSettledWins(t *testing.T) {
	f := NewFilterCoordinator(LastSettledWins, nil)
	first, second := overlapping(t, f)

	if first != nil || second != nil {
		t.Fatalf("errs = %v, %v", first, second)
	}
	if v, _ := f.Value("id"); v != "A" {
		t.Fatalf("committed %q, want A (settled last)", v)
	}
}

func TestApply_ServerDoesNotClobberLocalChange(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	release := make(chan struct{})
	op := func(context.Context, []FilterSpec) error {
		<-release
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- f.Apply(context.Background(), FilterSpec{Value: "9"}, serverCol, op) }()
	waitFor(t, func() bool { return f.Pending("id") })

	_ = f.Apply(context.Background(), FilterSpec{Value: "Active"}, localCol, nil)
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if _, ok := f.Value("status"); !ok {
		t.Fatal("local filter lost when server filter settled")
	}
	if _, ok := f.Value("id"); !ok {
		t.Fatal("server filter not committed")
	}
}

func TestApply_RebasedAcrossServerColumns(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	colA := Column{Key: "a", FilterMode: FilterServer}
	colB := Column{Key: "b", FilterMode: FilterServer}

	var mu sync.Mutex
	fetched := map[string][]FilterSpec{}
	gates := map[string]chan struct{}{"x": make(chan struct{}), "y": make(chan struct{})}
	op := func(ctx context.Context, p []FilterSpec) error {
		var own string
		for _, s := range p {
			if _, ok := gates[s.Value]; ok {
				own = s.Value
			}
		}
		mu.Lock()
		fetched[own] = p
		mu.Unlock()
		<-gates[own]
		return nil
	}

	aDone := make(chan error, 1)
	bDone := make(chan error, 1)
	go func() { aDone <- f.Apply(context.Background(), FilterSpec{Value: "x"}, colA, op) }()
	waitFor(t, func() bool { return f.Pending("a") })
	go func() { bDone <- f.Apply(context.Background(), FilterSpec{Value: "y"}, colB, op) }()
	waitFor(t, func() bool { return f.Pending("b") })

	close(gates["y"])
	if err := <-bDone; err != nil {
		t.Fatalf("b err = %v, want nil", err)
	}
	close(gates["x"])
	if err := <-aDone; !errors.Is(err, ErrFilterRebased) {
		t.Fatalf("a err = %v, want ErrFilterRebased", err)
	}

	got := f.Filters()
	want := []FilterSpec{{Column: "b", Value: "y", Mode: FilterServer}, {Column: "a", Value: "x", Mode: FilterServer}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("committed = %v, want %v", got, want)
	}
	mu.Lock()
	defer mu.Unlock()
	if sameServerSpecs(fetched["x"], got) {
		t.Fatalf("request a fetched with %v, expected it to lag the committed list", fetched["x"])
	}
	if f.PendingCount() != 0 {
		t.Fatalf("pending = %d, want 0", f.PendingCount())
	}
}

func TestSameServerSpecs(t *testing.T) {
	a := FilterSpec{Column: "a", Value: "x", Mode: FilterServer}
	b := FilterSpec{Column: "b", Value: "y", Mode: FilterServer}
	loc := FilterSpec{Column: "s", Value: "z", Mode: FilterLocal}

	tests := []struct {
		name string
		x, y []FilterSpec
		want bool
	}{
		{"equal", []FilterSpec{a, b}, []FilterSpec{a, b}, true},
		{"local ignored", []FilterSpec{a}, []FilterSpec{loc, a}, true},
		{"extra server", []FilterSpec{a}, []FilterSpec{b, a}, false},
		{"order matters", []FilterSpec{a, b}, []FilterSpec{b, a}, false},
		{"both empty", nil, []FilterSpec{loc}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameServerSpecs(tt.x, tt.y); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClear_NoOpWhenAbsentAndSkipsServer(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	called := false
	op := func(context.Context, []FilterSpec) error { called = true; return nil }
	_ = f.Apply(context.Background(), FilterSpec{Value: "1"}, serverCol, op)
	called = false

	f.Clear("missing")
	f.Clear("id")
	if called {
		t.Fatal("clear invoked the server operation")
	}
	if got := f.Filters(); len(got) != 0 {
		t.Fatalf("filters = %v, want []", got)
	}
}

func TestClear_SupersedesPendingRequest(t *testing.T) {
	f := NewFilterCoordinator(LatestIssuedWins, nil)
	release := make(chan struct{})
	op := func(context.Context, []FilterSpec) error {
		<-release
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- f.Apply(context.Background(), FilterSpec{Value: "5"}, serverCol, op) }()
	waitFor(t, func() bool { return f.Pending("id") })

	f.Clear("id")
	close(release)
	if err := <-done; !errors.Is(err, ErrStaleFilter) {
		t.Fatalf("err = %v, want ErrStaleFilter", err)
	}
	if _, ok := f.Value("id"); ok {
		t.Fatal("cleared filter came back")
	}
}

func TestMatchLocal(t *testing.T) {
	row := Row{"status": "Active", "id": 7}
	filters := []FilterSpec{
		{Column: "status", Value: "act", Mode: FilterLocal},
		{Column: "id", Value: "999", Mode: FilterServer},
	}
	if !matchLocal(row, filters) {
		t.Fatal("expected match; server filters are not evaluated locally")
	}
	if matchLocal(row, []FilterSpec{{Column: "status", Value: "closed", Mode: FilterLocal}}) {
		t.Fatal("unexpected match")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}
