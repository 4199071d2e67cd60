package candidates

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

type memoryIndex struct {
	entries map[string][]string
	failing map[string]bool
}

func (m *memoryIndex) UsersFor(_ context.Context, itemID string) ([]string, error) {
	if m.failing[itemID] {
		return nil, fmt.Errorf("fetch entry: %w", store.ErrUnavailable)
	}
	return m.entries[itemID], nil
}

func TestCollectTalliesCommonInterests(t *testing.T) {
	index := &memoryIndex{entries: map[string][]string{
		"1": {"a"},
		"2": {"a", "b"},
		"3": {"a", "b"},
		"4": {"a", "b", "c"},
	}}
	service := NewService(index, nil, Config{MatchThreshold: 3})

	tally, err := service.Collect(context.Background(), "a", []string{"1", "2", "3", "4"}, nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := map[string]int{"b": 3, "c": 1}
	if !reflect.DeepEqual(tally, want) {
		t.Fatalf("unexpected tally: got %v want %v", tally, want)
	}
}

func TestCollectResultIndependentOfBatchSize(t *testing.T) {
	entries := map[string][]string{}
	interests := make([]string, 0, 17)
	for i := 0; i < 17; i++ {
		item := fmt.Sprintf("item-%d", i)
		interests = append(interests, item)
		entries[item] = []string{"a", fmt.Sprintf("user-%d", i%5)}
	}
	var reference map[string]int

	for batchSize := 1; batchSize <= 6; batchSize++ {
		index := &memoryIndex{entries: entries}
		service := NewService(index, nil, Config{ScanBatchSize: batchSize})

		tally, err := service.Collect(context.Background(), "a", interests, nil)
		if err != nil {
			t.Fatalf("collect with batch size %d: %v", batchSize, err)
		}
		if reference == nil {
			reference = tally
			continue
		}
		if !reflect.DeepEqual(tally, reference) {
			t.Fatalf("tally differs for batch size %d: got %v want %v", batchSize, tally, reference)
		}
	}
}

func TestCollectDropsExcludedUsers(t *testing.T) {
	index := &memoryIndex{entries: map[string][]string{
		"1": {"a", "b", "c"},
		"2": {"a", "b", "c"},
		"3": {"a", "b", "c"},
	}}
	service := NewService(index, nil, Config{})

	tally, err := service.Collect(context.Background(), "a", []string{"1", "2", "3"}, map[string]struct{}{"b": {}})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, ok := tally["b"]; ok {
		t.Fatalf("excluded user must not appear in tally: %v", tally)
	}
	if tally["c"] != 3 {
		t.Fatalf("unexpected tally for c: %v", tally)
	}
}

func TestCollectSkipsUnavailableEntries(t *testing.T) {
	index := &memoryIndex{
		entries: map[string][]string{
			"1": {"a", "b"},
			"2": {"a", "b"},
		},
		failing: map[string]bool{"2": true},
	}
	service := NewService(index, nil, Config{})

	tally, err := service.Collect(context.Background(), "a", []string{"1", "2"}, nil)
	if err != nil {
		t.Fatalf("collect with one failing entry: %v", err)
	}
	if tally["b"] != 1 {
		t.Fatalf("expected partial tally 1 for b, got %v", tally)
	}
}

func TestEligibleAppliesThresholdBoundary(t *testing.T) {
	service := NewService(&memoryIndex{}, nil, Config{MatchThreshold: 3})

	got := service.Eligible(map[string]int{
		"below": 2,
		"exact": 3,
		"above": 5,
	})

	want := []Candidate{
		{UserID: "above", Strength: 5},
		{UserID: "exact", Strength: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected eligible candidates: got %v want %v", got, want)
	}
}
