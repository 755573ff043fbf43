package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewDoor_Rate(t *testing.T) {
	d := NewDoor(25)
	if d.Rate() != 25 {
		t.Errorf("expected rate 25, got %d", d.Rate())
	}
}

func TestDoor_ZeroRateAdmitsEveryStudent(t *testing.T) {
	d := NewDoor(0)

	start := time.Now()
	for student := 1; student <= 50; student++ {
		if err := d.Enter(context.Background()); err != nil {
			t.Fatalf("student %d: unexpected error: %v", student, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("zero rate should not block, took %v", elapsed)
	}
}

func TestDoor_NilAdmitsImmediately(t *testing.T) {
	var d *Door
	if err := d.Enter(context.Background()); err != nil {
		t.Errorf("nil door should admit, got %v", err)
	}
	if d.Rate() != 0 {
		t.Errorf("nil door rate should be 0, got %d", d.Rate())
	}
}

func TestDoor_BurstAdmitsAtOnce(t *testing.T) {
	d := NewDoor(5)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := d.Enter(context.Background()); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("a full burst should pass without waiting, took %v", elapsed)
	}
}

// Students share one door: the total seat attempts across all of them are
// throttled, not each student separately.
func TestDoor_ThrottlesStudentsTogether(t *testing.T) {
	d := NewDoor(10)
	const students, attemptsEach = 5, 3

	var admitted atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()
	for s := 0; s < students; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < attemptsEach; i++ {
				if err := d.Enter(context.Background()); err != nil {
					return
				}
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if admitted.Load() != students*attemptsEach {
		t.Fatalf("expected %d attempts admitted, got %d", students*attemptsEach, admitted.Load())
	}
	// 15 attempts at 10/s with a burst of 10: the last 5 wait about 500ms
	if elapsed < 400*time.Millisecond {
		t.Errorf("door did not throttle shared arrivals, elapsed: %v", elapsed)
	}
}

func TestDoor_WaitingStudentLeavesOnCancel(t *testing.T) {
	d := NewDoor(1)
	if err := d.Enter(context.Background()); err != nil {
		t.Fatalf("first arrival should use the burst: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Enter(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiting student was not released by cancel")
	}
}
