package domain

import (
	"testing"
	"time"
)

func TestLatestStateReduce(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var state LatestState
	if !state.Reduce(PresenceEvent{Status: StatusAvailable, RecordedAt: base, Sequence: 1}) {
		t.Fatal("first event should win against the zero state")
	}
	if state.Status != StatusAvailable {
		t.Fatalf("status = %s, want available", state.Status)
	}

	// Later timestamp wins regardless of sequence.
	if !state.Reduce(PresenceEvent{Status: StatusDelivery, RecordedAt: base.Add(time.Minute), Sequence: 0}) {
		t.Fatal("later event should win")
	}
	if state.Status != StatusDelivery {
		t.Fatalf("status = %s, want delivery", state.Status)
	}

	// Earlier timestamp never wins.
	if state.Reduce(PresenceEvent{Status: StatusBreak, RecordedAt: base, Sequence: 99}) {
		t.Fatal("earlier event should lose")
	}
	if state.Status != StatusDelivery {
		t.Fatalf("status = %s, want delivery", state.Status)
	}
}

func TestLatestStateReduceTiebreak(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var state LatestState
	state.Reduce(PresenceEvent{Status: StatusAvailable, RecordedAt: at, Sequence: 5})

	// Same timestamp, lower sequence: loses.
	if state.Reduce(PresenceEvent{Status: StatusBreak, RecordedAt: at, Sequence: 4}) {
		t.Fatal("lower sequence should lose the tie")
	}
	// Same timestamp, same sequence: loses (idempotent replay).
	if state.Reduce(PresenceEvent{Status: StatusBreak, RecordedAt: at, Sequence: 5}) {
		t.Fatal("equal sequence should lose the tie")
	}
	// Same timestamp, higher sequence: wins.
	if !state.Reduce(PresenceEvent{Status: StatusOffline, RecordedAt: at, Sequence: 6}) {
		t.Fatal("higher sequence should win the tie")
	}
	if state.Status != StatusOffline || state.Sequence != 6 {
		t.Fatalf("state = %+v, want offline/6", state)
	}
}

func TestLatestStateReduceOrderIndependent(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	events := []PresenceEvent{
		{Status: StatusAvailable, RecordedAt: at, Sequence: 1},
		{Status: StatusDelivery, RecordedAt: at.Add(2 * time.Minute), Sequence: 3},
		{Status: StatusBreak, RecordedAt: at.Add(time.Minute), Sequence: 2},
	}

	forward := LatestState{}
	for _, ev := range events {
		forward.Reduce(ev)
	}
	backward := LatestState{}
	for i := len(events) - 1; i >= 0; i-- {
		backward.Reduce(events[i])
	}

	if forward != backward {
		t.Fatalf("reduction is order dependent: %+v vs %+v", forward, backward)
	}
	if forward.Status != StatusDelivery {
		t.Fatalf("status = %s, want delivery", forward.Status)
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, s := range []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceOffDay} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if AttendanceStatus("late").Valid() {
		t.Error("unknown attendance status should be invalid")
	}
}
