package signal

import (
	"context"
	"testing"
	"time"
)

func TestSignalFiresOnce(t *testing.T) {
	s := New()

	if s.Fired() {
		t.Fatal("new signal reports fired")
	}
	if !s.Fire() {
		t.Fatal("first Fire returned false")
	}
	if s.Fire() {
		t.Fatal("second Fire returned true")
	}
	if !s.Fired() {
		t.Fatal("signal does not report fired")
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel not closed after Fire")
	}
}

func TestSignalWaitWakesOnFire(t *testing.T) {
	s := New()
	done := make(chan error, 1)

	go func() {
		done <- s.Wait(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	s.Fire()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake after Fire")
	}
}

func TestSignalWaitHonorsContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Wait(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOutcomeFirstVerdictWins(t *testing.T) {
	o := NewOutcome()

	if _, fired := o.Value(); fired {
		t.Fatal("new outcome reports fired")
	}
	if !o.Fire(true) {
		t.Fatal("first Fire returned false")
	}
	if o.Fire(false) {
		t.Fatal("second Fire returned true")
	}

	ready, fired := o.Value()
	if !fired {
		t.Fatal("outcome does not report fired")
	}
	if !ready {
		t.Fatal("later verdict overwrote the first")
	}
}

func TestOutcomeWait(t *testing.T) {
	o := NewOutcome()

	go func() {
		time.Sleep(10 * time.Millisecond)
		o.Fire(false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ready, err := o.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if ready {
		t.Fatal("expected ready=false")
	}
}
