package state

import (
	"testing"
	"time"
)

func TestAggregate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	child := func(name string, s State) Info {
		return Info{Name: name, State: s, UpdatedOn: t0}
	}

	tests := []struct {
		name       string
		own        Info
		children   []Info
		wantState  State
		wantReason string
	}{
		{
			name:      "leaf mirrors own",
			own:       Info{Name: "a", State: Degraded, Reason: "slow"},
			wantState: Degraded, wantReason: "slow",
		},
		{
			name:      "all ok",
			own:       Info{Name: "a", State: OK},
			children:  []Info{child("b", OK), child("c", OK)},
			wantState: OK,
		},
		{
			name:       "failed child degrades",
			own:        Info{Name: "a", State: OK},
			children:   []Info{child("b", Failed), child("c", OK)},
			wantState:  Degraded,
			wantReason: "subcomponents not ok: b=FAILED",
		},
		{
			name:       "worst child listed first",
			own:        Info{Name: "a", State: OK},
			children:   []Info{child("b", Degraded), child("c", Unavailable), child("d", Failed)},
			wantState:  Degraded,
			wantReason: "subcomponents not ok: d=FAILED, c=UNAVAILABLE, b=DEGRADED",
		},
		{
			name:       "own degraded keeps own reason",
			own:        Info{Name: "a", State: Degraded, Reason: "replica lag"},
			children:   []Info{child("b", OK)},
			wantState:  Degraded,
			wantReason: "replica lag",
		},
		{
			name:       "own failed dominates",
			own:        Info{Name: "a", State: Failed, Reason: "boom"},
			children:   []Info{child("b", OK)},
			wantState:  Failed,
			wantReason: "boom",
		},
		{
			name:      "own initializing mirrored",
			own:       Info{Name: "a", State: Initializing},
			children:  []Info{child("b", Failed)},
			wantState: Initializing,
		},
		{
			name:       "unknown child state",
			own:        Info{Name: "a", State: OK},
			children:   []Info{child("b", State("WARMING"))},
			wantState:  Degraded,
			wantReason: "subcomponents not ok: b=UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.own, tt.children)
			if got.State != tt.wantState {
				t.Errorf("state = %s, want %s", got.State, tt.wantState)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if len(tt.children) == 0 && got.Components != nil {
				t.Error("leaf aggregate must not carry components")
			}
			if len(got.Components) != len(tt.children) {
				t.Errorf("components = %d, want %d", len(got.Components), len(tt.children))
			}
		})
	}
}

func TestAggregateUpdatedOn(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	got := Aggregate(
		Info{Name: "a", State: OK, UpdatedOn: t0},
		[]Info{{Name: "b", State: OK, UpdatedOn: t1}},
	)
	if !got.UpdatedOn.Equal(t1) {
		t.Errorf("UpdatedOn = %v, want %v", got.UpdatedOn, t1)
	}
	if got.Components[0].State != OK {
		t.Error("child lost")
	}
}
