package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hy4ri/shopfloor/internal/model"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTaskSession(t *testing.T) (*Session[model.Task], *spyPersister[model.Task], *manualClock, *phaseLog) {
	t.Helper()
	clock := newManualClock()
	spy := &spyPersister[model.Task]{}
	log := &phaseLog{}
	s := New[model.Task](spy, Options{
		Clock:    clock,
		OnStatus: log.record,
	})
	return s, spy, clock, log
}

func seedTasks() []model.Task {
	return []model.Task{
		{Title: "Cut panels", Subtasks: []model.Subtask{}},
		{Title: "Paint", Subtasks: []model.Subtask{{Title: "primer"}}},
	}
}

func TestLoadIsNotAnEdit(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())

	st := s.Status()
	if st.Dirty || st.Phase != PhaseIdle || st.Mode != ModeLoaded || st.ParentID != "p1" {
		t.Errorf("status after load = %+v", st)
	}
	clock.Advance(10 * time.Second)
	if n := len(spy.Calls()); n != 0 {
		t.Errorf("load triggered %d saves", n)
	}
}

func TestEditBeforeLoadIsRefused(t *testing.T) {
	s, _, _, _ := newTaskSession(t)
	if s.UpdateField(0, model.FieldTitle, "x") {
		t.Error("edit accepted before Load")
	}
	if _, ok := s.Append(model.NewTask()); ok {
		t.Error("append accepted before Load")
	}
}

func TestBurstOfEditsCoalescesIntoOneSave(t *testing.T) {
	s, spy, clock, log := newTaskSession(t)
	s.Load("p1", seedTasks())

	for _, title := range []string{"C", "Cu", "Cut", "Cut s", "Cut steel"} {
		if !s.UpdateField(0, model.FieldTitle, title) {
			t.Fatalf("edit %q refused", title)
		}
		clock.Advance(500 * time.Millisecond)
	}
	if n := len(spy.Calls()); n != 0 {
		t.Fatalf("saved %d times inside the debounce window", n)
	}
	if st := s.Status(); !st.Dirty || st.Phase != PhasePendingDebounce || st.Mode != ModeEditing {
		t.Errorf("status while pending = %+v", st)
	}

	clock.Advance(500 * time.Millisecond)
	calls := spy.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d saves, want 1", len(calls))
	}
	if calls[0].parentID != "p1" || calls[0].items[0].Title != "Cut steel" {
		t.Errorf("saved %q for %s", calls[0].items[0].Title, calls[0].parentID)
	}
	if st := s.Status(); st.Dirty || st.Phase != PhaseSaved {
		t.Errorf("status after save = %+v", st)
	}

	clock.Advance(DefaultSavedHold)
	if st := s.Status(); st.Phase != PhaseIdle {
		t.Errorf("phase after hold = %v", st.Phase)
	}

	want := []Phase{PhaseIdle, PhasePendingDebounce, PhaseSaving, PhaseSaved, PhaseIdle}
	if diff := cmp.Diff(want, log.get()); diff != "" {
		t.Errorf("phase transitions (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())
	s.UpdateField(0, model.FieldTitle, "first")
	clock.Advance(time.Second)

	s.UpdateField(0, model.FieldTitle, "second")
	if got := spy.Calls()[0].items[0].Title; got != "first" {
		t.Errorf("persisted snapshot changed to %q", got)
	}
}

func TestAppendBlankRowIsLocalOnly(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())

	idx, ok := s.Append(model.NewTask())
	if !ok || idx != 2 {
		t.Fatalf("append: idx=%d ok=%v", idx, ok)
	}
	if st := s.Status(); st.Dirty || st.Phase != PhaseIdle {
		t.Errorf("blank append changed status: %+v", st)
	}
	if _, ok := s.Append(model.NewTask()); ok {
		t.Error("second blank append accepted")
	}
	clock.Advance(5 * time.Second)
	if n := len(spy.Calls()); n != 0 {
		t.Fatalf("blank append saved %d times", n)
	}

	s.UpdateField(idx, model.FieldTitle, "Deliver")
	if !s.Status().Dirty {
		t.Error("populating the new row should make the list dirty")
	}
	clock.Advance(time.Second)
	calls := spy.Calls()
	if len(calls) != 1 || len(calls[0].items) != 3 {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestRemoveBypassesDebounce(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())

	if !s.Remove(0) {
		t.Fatal("remove refused")
	}
	clock.Advance(0)

	calls := spy.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d saves right after remove, want 1", len(calls))
	}
	if len(calls[0].items) != 1 || calls[0].items[0].Title != "Paint" {
		t.Errorf("saved %+v", calls[0].items)
	}
}

func TestRemoveDuringPendingEditSavesBoth(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())

	s.UpdateField(1, model.FieldTitle, "Paint red")
	clock.Advance(200 * time.Millisecond)
	s.Remove(0)
	clock.Advance(0)

	calls := spy.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d saves, want 1", len(calls))
	}
	if got := calls[0].items; len(got) != 1 || got[0].Title != "Paint red" {
		t.Errorf("saved %+v", got)
	}
	clock.Advance(5 * time.Second)
	if n := len(spy.Calls()); n != 1 {
		t.Errorf("stale debounce produced extra saves: %d", n)
	}
}

func TestSwitchingParentCancelsPendingSave(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())
	s.UpdateField(0, model.FieldTitle, "unsaved")
	clock.Advance(500 * time.Millisecond)

	s.Load("p2", []model.Task{{Title: "Other"}})
	clock.Advance(10 * time.Second)

	if calls := spy.Calls(); len(calls) != 0 {
		t.Fatalf("persisted %d times after switch, first for %s", len(calls), calls[0].parentID)
	}
	if st := s.Status(); st.ParentID != "p2" || st.Dirty || st.Phase != PhaseIdle {
		t.Errorf("status after switch = %+v", st)
	}
}

func TestLateSaveResultDoesNotTouchNewParent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "success", err: nil},
		{name: "failure", err: errors.New("backend down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newManualClock()
			spy := &spyPersister[model.Task]{
				gate:    make(chan struct{}),
				started: make(chan struct{}, 1),
			}
			spy.SetErr(tt.err)

			var mu sync.Mutex
			var failures []string
			s := New[model.Task](spy, Options{
				Clock: clock,
				OnError: func(parentID string, err error) {
					mu.Lock()
					failures = append(failures, parentID)
					mu.Unlock()
				},
			})
			s.Load("p1", seedTasks())
			s.UpdateField(0, model.FieldTitle, "v1")

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				clock.Advance(time.Second)
			}()
			<-spy.started

			s.Load("p2", []model.Task{{Title: "Other"}})
			close(spy.gate)
			wg.Wait()
			clock.Advance(10 * time.Second)

			st := s.Status()
			if st.ParentID != "p2" || st.Dirty || st.Phase != PhaseIdle || st.LastErr != nil || !st.LastSaved.IsZero() {
				t.Errorf("status after late result = %+v", st)
			}
			if got := s.Items(); len(got) != 1 || got[0].Title != "Other" {
				t.Errorf("items after late result = %+v", got)
			}
			calls := spy.Calls()
			if len(calls) != 1 || calls[0].parentID != "p1" {
				t.Fatalf("calls = %+v, want one save for p1", calls)
			}
			mu.Lock()
			if len(failures) != 0 {
				t.Errorf("OnError called for %v", failures)
			}
			mu.Unlock()

			// The new parent still saves normally.
			spy.SetErr(nil)
			s.UpdateField(0, model.FieldTitle, "Other 2")
			clock.Advance(time.Second)
			calls = spy.Calls()
			if len(calls) != 2 || calls[1].parentID != "p2" {
				t.Errorf("calls = %+v, want a follow-up save for p2", calls)
			}
		})
	}
}

func TestRevertInsideWindowIsClean(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())

	s.UpdateField(0, model.FieldTitle, "changed")
	s.UpdateField(0, model.FieldTitle, "Cut panels")
	if st := s.Status(); st.Dirty || st.Phase != PhaseIdle {
		t.Errorf("status after revert = %+v", st)
	}
	clock.Advance(5 * time.Second)
	if n := len(spy.Calls()); n != 0 {
		t.Errorf("clean list saved %d times", n)
	}
}

func TestFailedSaveStaysDirtyWithoutRetryLoop(t *testing.T) {
	clock := newManualClock()
	spy := &spyPersister[model.Task]{err: errors.New("backend down")}
	var failures []string
	s := New[model.Task](spy, Options{
		Clock:   clock,
		OnError: func(parentID string, err error) { failures = append(failures, parentID) },
	})
	s.Load("p1", seedTasks())

	s.UpdateField(0, model.FieldTitle, "x")
	clock.Advance(time.Second)

	st := s.Status()
	if !st.Dirty || st.Phase != PhaseIdle || st.LastErr == nil {
		t.Errorf("status after failure = %+v", st)
	}
	if len(failures) != 1 || failures[0] != "p1" {
		t.Errorf("failures = %v", failures)
	}

	clock.Advance(time.Minute)
	if n := len(spy.Calls()); n != 1 {
		t.Fatalf("retried on its own: %d calls", n)
	}

	spy.SetErr(nil)
	s.UpdateField(0, model.FieldTitle, "xy")
	clock.Advance(time.Second)
	if n := len(spy.Calls()); n != 2 {
		t.Fatalf("next edit did not retry: %d calls", n)
	}
	if st := s.Status(); st.Dirty || st.LastErr != nil || st.Phase != PhaseSaved {
		t.Errorf("status after recovery = %+v", st)
	}
}

func TestRetryAfterFailure(t *testing.T) {
	clock := newManualClock()
	spy := &spyPersister[model.Task]{err: errors.New("timeout")}
	s := New[model.Task](spy, Options{Clock: clock})
	s.Load("p1", seedTasks())

	if s.Retry() {
		t.Error("retry scheduled on a clean list")
	}
	s.UpdateField(0, model.FieldTitle, "x")
	clock.Advance(time.Second)

	spy.SetErr(nil)
	if !s.Retry() {
		t.Fatal("retry refused on dirty list")
	}
	clock.Advance(0)
	if n := len(spy.Calls()); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
	if s.Status().Dirty {
		t.Error("still dirty after successful retry")
	}
}

func TestEditDuringSaveSchedulesFollowUp(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	spy.gate = make(chan struct{})
	spy.started = make(chan struct{}, 1)
	s.Load("p1", seedTasks())

	s.UpdateField(0, model.FieldTitle, "v1")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		clock.Advance(time.Second)
	}()
	<-spy.started

	s.UpdateField(0, model.FieldTitle, "v2")
	if st := s.Status(); st.Phase != PhaseSaving || !st.Dirty {
		t.Errorf("status during save = %+v", st)
	}
	close(spy.gate)
	wg.Wait()

	if st := s.Status(); !st.Dirty || st.Phase != PhasePendingDebounce {
		t.Errorf("status after first save = %+v", st)
	}

	spy.mu.Lock()
	spy.gate = nil
	spy.mu.Unlock()
	clock.Advance(time.Second)

	calls := spy.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d saves, want 2", len(calls))
	}
	if calls[0].items[0].Title != "v1" || calls[1].items[0].Title != "v2" {
		t.Errorf("saved %q then %q", calls[0].items[0].Title, calls[1].items[0].Title)
	}
	if s.Status().Dirty {
		t.Error("dirty after follow-up save")
	}
}

func TestCloseFlushesDirtyList(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	s.Load("p1", seedTasks())
	s.UpdateField(0, model.FieldTitle, "last words")

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	calls := spy.Calls()
	if len(calls) != 1 || calls[0].items[0].Title != "last words" {
		t.Fatalf("calls = %+v", calls)
	}

	if s.UpdateField(0, model.FieldTitle, "after close") {
		t.Error("edit accepted after Close")
	}
	clock.Advance(time.Minute)
	if n := len(spy.Calls()); n != 1 {
		t.Errorf("saves after close: %d", n)
	}
}

func TestCloseCleanListDoesNotSave(t *testing.T) {
	s, spy, _, _ := newTaskSession(t)
	s.Load("p1", seedTasks())
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(spy.Calls()); n != 0 {
		t.Errorf("clean close saved %d times", n)
	}
}

func TestCloseKeepsSessionOpenWhenFlushFails(t *testing.T) {
	clock := newManualClock()
	spy := &spyPersister[model.Task]{err: errors.New("offline")}
	s := New[model.Task](spy, Options{Clock: clock})
	s.Load("p1", seedTasks())
	s.UpdateField(0, model.FieldTitle, "x")

	if err := s.Close(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}
	if !s.UpdateField(0, model.FieldTitle, "still editable") {
		t.Error("session closed despite failed flush")
	}
	s.Discard()
	if s.UpdateField(0, model.FieldTitle, "gone") {
		t.Error("edit accepted after Discard")
	}
}

func TestFlushWaitsForSaveInFlight(t *testing.T) {
	s, spy, clock, _ := newTaskSession(t)
	spy.gate = make(chan struct{})
	spy.started = make(chan struct{}, 1)
	s.Load("p1", seedTasks())
	s.UpdateField(0, model.FieldTitle, "v1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		clock.Advance(time.Second)
	}()
	<-spy.started

	flushed := make(chan error, 1)
	go func() { flushed <- s.Flush(context.Background()) }()

	select {
	case err := <-flushed:
		t.Fatalf("Flush returned before the running save finished: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(spy.gate)
	wg.Wait()
	if err := <-flushed; err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := len(spy.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestRealClockSavesAfterQuietPeriod(t *testing.T) {
	spy := &spyPersister[model.LineItem]{}
	s := New[model.LineItem](spy, Options{
		Debounce:  5 * time.Millisecond,
		SavedHold: 5 * time.Millisecond,
	})
	s.Load("p1", []model.LineItem{{Item: "bolts", Price: "1", Quantity: "10"}})
	s.UpdateField(0, model.FieldQuantity, "12")

	deadline := time.Now().Add(2 * time.Second)
	for s.Status().Phase != PhaseIdle || s.Status().Dirty {
		if time.Now().After(deadline) {
			t.Fatalf("never settled: %+v", s.Status())
		}
		time.Sleep(2 * time.Millisecond)
	}
	if n := len(spy.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
