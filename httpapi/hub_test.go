package httpapi

import (
	"testing"
	"time"
)

func TestHubSeedsLatestEvent(t *testing.T) {
	hub := NewHub()
	hub.Publish("s1", StreamEvent{Type: "frame"})
	hub.Publish("s1", StreamEvent{Type: "frame"})
	_, unsub, last := hub.Subscribe("s1")
	defer unsub()
	if last == nil || last.Seq != 2 {
		t.Fatalf("expected seed with seq 2, got %+v", last)
	}
}

func TestHubLatestWinsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch, unsub, _ := hub.Subscribe("s1")
	defer unsub()
	for i := 0; i < 20; i++ {
		hub.Publish("s1", StreamEvent{Type: "frame", Timestamp: time.Unix(int64(i), 0)})
	}
	var seqs []uint64
	for len(ch) > 0 {
		ev := <-ch
		seqs = append(seqs, ev.Seq)
	}
	if len(seqs) == 0 || seqs[len(seqs)-1] != 20 {
		t.Fatalf("expected newest frame to be queued, got %v", seqs)
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Fatalf("expected increasing sequence, got %v", seqs)
		}
	}
}

func TestHubDropClosesStreams(t *testing.T) {
	hub := NewHub()
	ch, unsub, _ := hub.Subscribe("s1")
	hub.Drop("s1")
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	unsub()
}
