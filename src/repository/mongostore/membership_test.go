package mongostore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theleywin/friendlynk/src/repository"
)

// scriptedCollection answers UpdateOne and CountDocuments from queues. An
// empty queue answers 0.
type scriptedCollection struct {
	modified  []int64
	counts    []int64
	updateErr error

	ops []string
}

func (c *scriptedCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	doc := update.(bson.M)
	switch {
	case doc["$push"] != nil:
		c.ops = append(c.ops, "push")
	case doc["$pull"] != nil:
		c.ops = append(c.ops, "pull")
	}
	if c.updateErr != nil {
		return nil, c.updateErr
	}

	var n int64
	if len(c.modified) > 0 {
		n, c.modified = c.modified[0], c.modified[1:]
	}
	return &mongo.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (c *scriptedCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	c.ops = append(c.ops, "count")

	var n int64
	if len(c.counts) > 0 {
		n, c.counts = c.counts[0], c.counts[1:]
	}
	return n, nil
}

func sameOps(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestToggle(t *testing.T) {
	contended := make([]string, 0, 3*repository.ToggleRetries)
	for i := 0; i < repository.ToggleRetries; i++ {
		contended = append(contended, "pull", "push", "count")
	}
	alwaysThere := make([]int64, repository.ToggleRetries)
	for i := range alwaysThere {
		alwaysThere[i] = 1
	}

	tests := []struct {
		name    string
		coll    *scriptedCollection
		want    bool
		wantErr error
		wantOps []string
	}{
		{
			name:    "present is removed",
			coll:    &scriptedCollection{modified: []int64{1}},
			want:    false,
			wantOps: []string{"pull"},
		},
		{
			name:    "absent is added",
			coll:    &scriptedCollection{modified: []int64{0, 1}},
			want:    true,
			wantOps: []string{"pull", "push"},
		},
		{
			name:    "lost race retries the remove",
			coll:    &scriptedCollection{modified: []int64{0, 0, 1}, counts: []int64{1}},
			want:    false,
			wantOps: []string{"pull", "push", "count", "pull"},
		},
		{
			name:    "missing document",
			coll:    &scriptedCollection{},
			wantErr: repository.ErrNotFound,
			wantOps: []string{"pull", "push", "count"},
		},
		{
			name:    "gives up after bounded retries",
			coll:    &scriptedCollection{counts: alwaysThere},
			wantErr: repository.ErrToggleContention,
			wantOps: contended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toggle(context.Background(), tt.coll, primitive.NewObjectID(), "likes", primitive.NewObjectID())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("toggle() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("toggle() = %v, want %v", got, tt.want)
			}
			if !sameOps(tt.coll.ops, tt.wantOps) {
				t.Errorf("ops = %v, want %v", tt.coll.ops, tt.wantOps)
			}
		})
	}
}

func TestToggleWriteError(t *testing.T) {
	boom := errors.New("boom")
	coll := &scriptedCollection{updateErr: boom}

	if _, err := toggle(context.Background(), coll, primitive.NewObjectID(), "likes", primitive.NewObjectID()); !errors.Is(err, boom) {
		t.Errorf("toggle() error = %v, want %v", err, boom)
	}
}

func TestMirrorFollower(t *testing.T) {
	tests := []struct {
		name      string
		following bool
		counts    []int64
		wantOps   []string
	}{
		{"follow settles", true, []int64{1}, []string{"push", "count"}},
		{"unfollow settles", false, []int64{0}, []string{"pull", "count"}},
		// A concurrent unfollow lands between the push and the check.
		{"follow overtaken by unfollow", true, []int64{0, 0}, []string{"push", "count", "pull", "count"}},
		{"unfollow overtaken twice", false, []int64{1, 0, 0}, []string{"pull", "count", "push", "count", "pull", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := &scriptedCollection{counts: tt.counts}
			if err := mirrorFollower(context.Background(), coll, primitive.NewObjectID(), primitive.NewObjectID(), tt.following); err != nil {
				t.Fatalf("mirrorFollower() error = %v", err)
			}
			if !sameOps(coll.ops, tt.wantOps) {
				t.Errorf("ops = %v, want %v", coll.ops, tt.wantOps)
			}
		})
	}
}

func TestMirrorFollowerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll := &scriptedCollection{counts: []int64{0}}
	if err := mirrorFollower(ctx, coll, primitive.NewObjectID(), primitive.NewObjectID(), true); !errors.Is(err, context.Canceled) {
		t.Errorf("mirrorFollower() error = %v, want %v", err, context.Canceled)
	}
}

func TestRunnerCompensatesWithoutTransactions(t *testing.T) {
	tests := []struct {
		name string
		r    runner
	}{
		{"disabled", runner{enabled: false}},
		{"no client", runner{enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var compensated bool
			got, err := tt.r.run(context.Background(), func(ctx context.Context, compensate bool) (interface{}, error) {
				compensated = compensate
				return "done", nil
			})
			if err != nil || got != "done" {
				t.Fatalf("run() = %v, %v, want done", got, err)
			}
			if !compensated {
				t.Error("run() did not ask the callback to compensate")
			}
		})
	}
}
