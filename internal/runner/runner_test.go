package runner

import (
	"errors"
	"testing"
	"time"
)

type recorded[T any] struct {
	result *T
	err    error
}

func runAndWait[T any](t *testing.T, work func() (*T, error)) recorded[T] {
	t.Helper()
	out := make(chan recorded[T], 1)
	Execute(Sync{}, work, Funcs[T]{
		Success: func(r *T) { out <- recorded[T]{result: r} },
		Error:   func(err error) { out <- recorded[T]{err: err} },
	})
	select {
	case rec := <-out:
		return rec
	case <-time.After(2 * time.Second):
		t.Fatal("no callback delivered")
		return recorded[T]{}
	}
}

func TestExecuteDeliversResult(t *testing.T) {
	value := 42
	rec := runAndWait(t, func() (*int, error) { return &value, nil })
	if rec.err != nil {
		t.Fatalf("unexpected err: %v", rec.err)
	}
	if rec.result == nil || *rec.result != 42 {
		t.Fatalf("expected result 42, got %v", rec.result)
	}
}

func TestExecuteDeliversError(t *testing.T) {
	boom := errors.New("boom")
	rec := runAndWait(t, func() (*int, error) { return nil, boom })
	if rec.result != nil {
		t.Fatalf("expected no result, got %v", *rec.result)
	}
	if !errors.Is(rec.err, boom) {
		t.Fatalf("expected boom, got %v", rec.err)
	}
}

func TestExecuteNilNilIsContractViolation(t *testing.T) {
	rec := runAndWait(t, func() (*int, error) { return nil, nil })
	if !errors.Is(rec.err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", rec.err)
	}
}

func TestSerialRunsInSubmissionOrder(t *testing.T) {
	s := NewSerial()
	defer s.Close()

	out := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		s.Dispatch(func() { out <- i })
	}
	for want := 0; want < 3; want++ {
		select {
		case got := <-out:
			if got != want {
				t.Fatalf("expected %d, got %d", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("dispatch loop stalled")
		}
	}
}

func TestSerialDropsAfterClose(t *testing.T) {
	s := NewSerial()
	s.Close()

	ran := make(chan struct{}, 1)
	s.Dispatch(func() { ran <- struct{}{} })
	select {
	case <-ran:
		t.Fatal("function ran after close")
	case <-time.After(50 * time.Millisecond):
	}
}
